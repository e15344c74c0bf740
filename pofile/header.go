package pofile

import (
	"strconv"
	"strings"
	"time"
)

// HeaderDateLayout is the date format of POT-Creation-Date and
// PO-Revision-Date.
const HeaderDateLayout = "2006-01-02 15:04-0700"

// DefaultPluralForms is used for templates, before a language is known.
const DefaultPluralForms = "nplurals=2; plural=(n != 1);"

// MakeHeader builds the metadata entry of a template for projectName.
func MakeHeader(projectName string, now time.Time) *Entry {
	stamp := now.Format(HeaderDateLayout)
	f := NewFile()
	for _, kv := range [][2]string{
		{"Project-Id-Version", projectName},
		{"Report-Msgid-Bugs-To", projectName},
		{"POT-Creation-Date", stamp},
		{"PO-Revision-Date", stamp},
		{"Last-Translator", ""},
		{"Language-Team", ""},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/plain; charset=UTF-8"},
		{"Content-Transfer-Encoding", "8bit"},
		{"Plural-Forms", DefaultPluralForms},
	} {
		f.SetHeaderField(kv[0], kv[1])
	}
	return f.Header
}

// ForLanguage copies the template header and sets the language-specific
// fields of a translation catalog.
func ForLanguage(tmpl *Entry, lang string, now time.Time) *Entry {
	f := &File{Header: &Entry{}}
	if tmpl != nil {
		h := *tmpl
		h.TranslatorComments = append([]string(nil), tmpl.TranslatorComments...)
		h.Flags = nil
		f.Header = &h
	}
	f.SetHeaderField("PO-Revision-Date", now.Format(HeaderDateLayout))
	f.SetHeaderField("Language", lang)
	f.SetHeaderField("Plural-Forms", PluralFormsForLang(lang))
	return f.Header
}

// PluralFormsForLang returns the standard Plural-Forms header for a language code.
func PluralFormsForLang(lang string) string {
	base := strings.ToLower(lang)
	if idx := strings.IndexAny(base, "_-"); idx > 0 {
		base = base[:idx]
	}

	switch base {
	case "ja", "ko", "zh", "vi", "th", "id", "ms":
		return "nplurals=1; plural=0;"
	case "pt":
		if strings.EqualFold(lang, "pt_BR") || strings.EqualFold(lang, "pt-BR") {
			return "nplurals=2; plural=(n > 1);"
		}
		return DefaultPluralForms
	case "fr", "tr":
		return "nplurals=2; plural=(n > 1);"
	case "ru", "uk", "be", "hr", "sr", "bs":
		return "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "pl":
		return "nplurals=3; plural=(n==1 ? 0 : n%10>=2 && n%10<=4 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "cs", "sk":
		return "nplurals=3; plural=(n==1 ? 0 : n>=2 && n<=4 ? 1 : 2);"
	case "ro":
		return "nplurals=3; plural=(n==1 ? 0 : (n==0 || (n%100 > 0 && n%100 < 20)) ? 1 : 2);"
	case "lt":
		return "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n%10>=2 && (n%100<10 || n%100>=20) ? 1 : 2);"
	case "lv":
		return "nplurals=3; plural=(n%10==1 && n%100!=11 ? 0 : n != 0 ? 1 : 2);"
	case "ar":
		return "nplurals=6; plural=(n==0 ? 0 : n==1 ? 1 : n==2 ? 2 : n%100>=3 && n%100<=10 ? 3 : n%100>=11 ? 4 : 5);"
	default:
		return DefaultPluralForms
	}
}

// NPlurals extracts the nplurals count from a Plural-Forms value,
// defaulting to 2.
func NPlurals(pluralForms string) int {
	_, rest, ok := strings.Cut(pluralForms, "nplurals=")
	if !ok {
		return 2
	}
	end := strings.IndexFunc(rest, func(r rune) bool { return r < '0' || r > '9' })
	if end >= 0 {
		rest = rest[:end]
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 2
	}
	return n
}
