package pofile

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseWriteRoundTripAndHeaderFields(t *testing.T) {
	input := `msgid ""
msgstr ""
"Project-Id-Version: Demo Plugin\n"
"Language: ru\n"

#. extracted comment
#: admin/page.php:12 inc/util.php:3
msgid "hello"
msgstr "privet"

#, fuzzy
#| msgid "old count"
msgctxt "noun"
msgid "count"
msgid_plural "counts"
msgstr[0] "odin"
msgstr[1] "mnogo"
`

	f, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	if got := f.HeaderField("language"); got != "ru" {
		t.Fatalf("HeaderField(language) = %q, want ru", got)
	}
	f.SetHeaderField("Language", "de")
	f.SetHeaderField("Plural-Forms", PluralFormsForLang("de"))
	if got := f.HeaderField("Language"); got != "de" {
		t.Fatalf("Language header after SetHeaderField = %q, want de", got)
	}

	if len(f.Entries) != 2 {
		t.Fatalf("entries len = %d, want 2", len(f.Entries))
	}
	hello := f.Find("", "hello")
	if hello == nil {
		t.Fatal("hello entry not found")
	}
	if !reflect.DeepEqual(hello.References, []string{"admin/page.php:12", "inc/util.php:3"}) {
		t.Fatalf("References = %v", hello.References)
	}
	plural := f.Find("noun", "count")
	if plural == nil {
		t.Fatal("count entry not found")
	}
	if !plural.HasFlag("fuzzy") {
		t.Fatal("count entry should be fuzzy")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if strings.HasPrefix(buf.String(), "\n") {
		t.Fatal("output should not start with a blank line")
	}

	round, err := Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Parse roundtrip error: %v", err)
	}
	if round.HeaderField("Language") != "de" {
		t.Fatalf("roundtrip Language = %q, want de", round.HeaderField("Language"))
	}
	if got := round.Find("", "hello"); got == nil || got.MsgStr != "privet" {
		t.Fatalf("roundtrip hello entry mismatch: %#v", got)
	}
	roundPlural := round.Find("noun", "count")
	if roundPlural == nil {
		t.Fatal("roundtrip plural entry missing")
	}
	if roundPlural.MsgIDPlural != "counts" {
		t.Fatalf("roundtrip MsgIDPlural = %q", roundPlural.MsgIDPlural)
	}
	if !reflect.DeepEqual(roundPlural.MsgStrPlural, map[int]string{0: "odin", 1: "mnogo"}) {
		t.Fatalf("roundtrip plural forms = %v", roundPlural.MsgStrPlural)
	}
}

func TestWriteEscapesAndWrapsReferences(t *testing.T) {
	f := NewFile()
	var refs []string
	for i := 0; i < 8; i++ {
		refs = append(refs, "includes/class-settings-page.php:1"+strings.Repeat("0", i))
	}
	f.Entries = []*Entry{{
		MsgID:      `Say "hi"` + "\tnow",
		MsgStr:     "line one\nline two",
		References: refs,
	}}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, `msgid "Say \"hi\"\tnow"`) {
		t.Fatalf("msgid not escaped:\n%s", out)
	}
	if !strings.Contains(out, "msgstr \"\"\n\"line one\\n\"\n\"line two\"\n") {
		t.Fatalf("multiline msgstr not split:\n%s", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "#:") && len(line) > referenceWidth {
			t.Fatalf("reference line too long (%d): %s", len(line), line)
		}
	}

	round, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if !reflect.DeepEqual(round.Entries[0].References, refs) {
		t.Fatalf("references after roundtrip = %v", round.Entries[0].References)
	}
	if round.Entries[0].MsgStr != "line one\nline two" {
		t.Fatalf("msgstr after roundtrip = %q", round.Entries[0].MsgStr)
	}
}

func TestStatsSkipsFuzzyAndObsolete(t *testing.T) {
	f := NewFile()
	f.Entries = []*Entry{
		{MsgID: "t1", MsgStr: "translated"},
		{MsgID: "f1", MsgStr: "draft", Flags: []string{"fuzzy"}},
		{MsgID: "u1", MsgStr: ""},
		{MsgID: "p1", MsgIDPlural: "p1s", MsgStrPlural: map[int]string{0: "one", 1: "many"}},
		{MsgID: "p2", MsgIDPlural: "p2s", MsgStrPlural: map[int]string{0: "only one", 1: ""}},
		{MsgID: "old", MsgStr: "x", Obsolete: true},
	}

	total, translated := f.Stats()
	if total != 5 || translated != 2 {
		t.Fatalf("Stats = total=%d translated=%d", total, translated)
	}
}

func TestInvalidPluralIndex(t *testing.T) {
	_, err := Parse(strings.NewReader("msgid \"a\"\nmsgid_plural \"b\"\nmsgstr[x] \"c\"\n"))
	if err == nil {
		t.Fatal("expected error for invalid msgstr index")
	}
}

func TestMakeHeaderAndForLanguage(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	h := MakeHeader("Demo Plugin", now)

	f := &File{Header: h}
	if got := f.HeaderField("Project-Id-Version"); got != "Demo Plugin" {
		t.Fatalf("Project-Id-Version = %q", got)
	}
	if got := f.HeaderField("POT-Creation-Date"); got != "2024-03-09 14:05+0000" {
		t.Fatalf("POT-Creation-Date = %q", got)
	}
	if got := f.HeaderField("Plural-Forms"); got != DefaultPluralForms {
		t.Fatalf("Plural-Forms = %q", got)
	}
	if !strings.HasPrefix(h.MsgStr, "Project-Id-Version: ") {
		t.Fatalf("header should start with Project-Id-Version, got %q", h.MsgStr)
	}

	later := now.Add(time.Hour)
	lh := ForLanguage(h, "pt_BR", later)
	lf := &File{Header: lh}
	if got := lf.HeaderField("Language"); got != "pt_BR" {
		t.Fatalf("Language = %q", got)
	}
	if got := lf.HeaderField("Plural-Forms"); got != "nplurals=2; plural=(n > 1);" {
		t.Fatalf("Plural-Forms = %q", got)
	}
	if got := lf.HeaderField("PO-Revision-Date"); got != "2024-03-09 15:05+0000" {
		t.Fatalf("PO-Revision-Date = %q", got)
	}
	if got := f.HeaderField("Language"); got != "" {
		t.Fatalf("template header was modified: Language = %q", got)
	}
}

func TestPluralFormsHelpers(t *testing.T) {
	pluralCases := []struct {
		lang string
		want string
		n    int
	}{
		{lang: "ru", want: "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);", n: 3},
		{lang: "pt-BR", want: "nplurals=2; plural=(n > 1);", n: 2},
		{lang: "ja", want: "nplurals=1; plural=0;", n: 1},
		{lang: "zz", want: "nplurals=2; plural=(n != 1);", n: 2},
		{lang: "ar", want: "nplurals=6; plural=(n==0 ? 0 : n==1 ? 1 : n==2 ? 2 : n%100>=3 && n%100<=10 ? 3 : n%100>=11 ? 4 : 5);", n: 6},
	}
	for _, tc := range pluralCases {
		got := PluralFormsForLang(tc.lang)
		if got != tc.want {
			t.Fatalf("PluralFormsForLang(%q) = %q, want %q", tc.lang, got, tc.want)
		}
		if n := NPlurals(got); n != tc.n {
			t.Fatalf("NPlurals(%q) = %d, want %d", got, n, tc.n)
		}
	}
	if n := NPlurals("garbage"); n != 2 {
		t.Fatalf("NPlurals(garbage) = %d, want 2", n)
	}
}

func TestLookupTellsSingularFromPlural(t *testing.T) {
	f, err := Parse(strings.NewReader(`msgid "%d file"
msgid_plural "%d files"
msgstr[0] "%d Datei"
msgstr[1] "%d Dateien"

msgid "%d file"
msgstr "eine Datei"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := f.Lookup("", "%d file", ""); got == nil || got.MsgStr != "eine Datei" {
		t.Fatalf("singular = %#v", got)
	}
	if got := f.Lookup("", "%d file", "%d files"); got == nil || got.MsgStrPlural[1] != "%d Dateien" {
		t.Fatalf("plural = %#v", got)
	}
	if got := f.Lookup("", "%d file", "%d others"); got != nil {
		t.Fatalf("unexpected match %#v", got)
	}
}
