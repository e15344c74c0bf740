// Package langmeta resolves display metadata (English name, native name and
// emoji flag) for locale codes used in configuration and CLI output.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Code is the canonical BCP 47 form (pt-BR), or the input when unknown.
	Code   string
	Name   string
	Native string
	Flag   string
}

// Known reports whether the code was recognized.
func (m Meta) Known() bool { return m.Native != "" }

// Label renders "Name (Native)", or just Name when both are the same.
func (m Meta) Label() string {
	if m.Native == "" || strings.EqualFold(m.Native, m.Name) {
		return m.Name
	}
	return m.Name + " (" + m.Native + ")"
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Parse parses a locale code, accepting underscores (pt_BR).
func Parse(lang string) (language.Tag, error) {
	return language.Parse(canonicalize(lang))
}

// Resolve returns best-effort metadata for a locale code. Unknown codes
// come back with the input as Name and no flag.
func Resolve(lang string) Meta {
	tag, err := Parse(lang)
	if err != nil {
		return Meta{Code: lang, Name: lang}
	}
	m := Meta{
		Code:   tag.String(),
		Name:   display.English.Tags().Name(tag),
		Native: display.Self.Name(tag),
		Flag:   flag(tag),
	}
	if m.Name == "" {
		m.Name = m.Code
	}
	return m
}

// flag builds the regional-indicator pair for the tag's (possibly inferred)
// country.
func flag(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No || !region.IsCountry() {
		return ""
	}
	code := region.String()
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range code {
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String()
}
