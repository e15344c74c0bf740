package extract

import (
	"reflect"
	"testing"
)

func TestNextLiteral(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		span   string
		offset int
		want   string
		ok     bool
	}{
		{name: "double quoted", span: `"Hello", 'dom'`, want: "Hello", ok: true},
		{name: "single quoted", span: ` 'Hello' `, want: "Hello", ok: true},
		{name: "escaped same quote", span: `'Don\'t stop'`, want: "Don't stop", ok: true},
		{name: "other quote inside", span: `"it's fine"`, want: "it's fine", ok: true},
		{name: "escaped backslash before quote", span: `'path\\' , 'x'`, want: `path\`, ok: true},
		{name: "line breaks stripped", span: "'multi\r\nline'", want: "multiline", ok: true},
		{name: "trimmed", span: `"  padded  "`, want: "padded", ok: true},
		{name: "offset skips first", span: `'a', 'b'`, offset: 3, want: "b", ok: true},
		{name: "non-literal skipped", span: `$domain, "Text"`, want: "Text", ok: true},
		{name: "unclosed quote skipped", span: `"never closed`, ok: false},
		{name: "empty span", span: ``, ok: false},
		{name: "escaped quote cannot close", span: `'abc\'`, ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lit, ok := NextLiteral(tc.span, tc.offset)
			if ok != tc.ok {
				t.Fatalf("NextLiteral(%q) ok = %v, want %v", tc.span, ok, tc.ok)
			}
			if ok && lit.Text != tc.want {
				t.Fatalf("NextLiteral(%q) = %q, want %q", tc.span, lit.Text, tc.want)
			}
			if ok && (lit.Start < tc.offset || lit.End > len(tc.span)) {
				t.Fatalf("literal bounds [%d,%d) outside span", lit.Start, lit.End)
			}
		})
	}
}

func TestLiteralsLeftToRight(t *testing.T) {
	t.Parallel()

	span := `'%s item', "%s items", $count, 'my-domain'`
	var got []string
	for _, lit := range Literals(span) {
		got = append(got, lit.Text)
	}
	want := []string{"%s item", "%s items", "my-domain"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Literals = %v, want %v", got, want)
	}
}

func TestNormalizeLiteralKeepsOtherEscapes(t *testing.T) {
	t.Parallel()

	if got := NormalizeLiteral(`a\nb \"q\" \\ \'`); got != `a\nb "q" \ '` {
		t.Fatalf("NormalizeLiteral = %q", got)
	}
	if got := NormalizeLiteral(""); got != "" {
		t.Fatalf("NormalizeLiteral(\"\") = %q", got)
	}
}
