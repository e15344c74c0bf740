package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/minios-linux/potkit/langmeta"
)

// Language is one translation target as configured.
type Language struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// Languages is an ordered target list. In YAML it is either a mapping of
// code to name (order kept) or a sequence of codes or {code, name} items.
type Languages []Language

// UnmarshalYAML keeps the mapping order, which a Go map would lose.
func (l *Languages) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}
	var out Languages
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			k, v := node.Content[i], node.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: language %q: name must be a string", v.Line, k.Value)
			}
			out = append(out, Language{Code: k.Value, Name: v.Value})
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			switch item.Kind {
			case yaml.ScalarNode:
				out = append(out, Language{Code: item.Value})
			case yaml.MappingNode:
				var lang Language
				if err := item.Decode(&lang); err != nil {
					return err
				}
				out = append(out, lang)
			default:
				return fmt.Errorf("line %d: unexpected language entry", item.Line)
			}
		}
	default:
		return fmt.Errorf("line %d: languages must be a mapping or a list", node.Line)
	}
	*l = out
	return nil
}

// Codes returns the codes in order.
func (l Languages) Codes() []string {
	codes := make([]string, len(l))
	for i, lang := range l {
		codes[i] = lang.Code
	}
	return codes
}

// WithNames returns a copy where missing display names are resolved from
// the code.
func (l Languages) WithNames() Languages {
	out := make(Languages, len(l))
	for i, lang := range l {
		if strings.TrimSpace(lang.Name) == "" {
			lang.Name = langmeta.Resolve(lang.Code).Name
		}
		out[i] = lang
	}
	return out
}

// Validate reports problems that do not stop a run: unrecognized or
// duplicate codes. Entries with no code are dropped from the result.
func (l Languages) Validate() (Languages, []string) {
	var (
		out      Languages
		warnings []string
		seen     = make(map[string]bool)
	)
	for i, lang := range l {
		code := strings.TrimSpace(lang.Code)
		if code == "" {
			warnings = append(warnings, fmt.Sprintf("language #%d has no code, ignored", i+1))
			continue
		}
		if _, err := langmeta.Parse(code); err != nil {
			warnings = append(warnings, fmt.Sprintf("unrecognized language code %q", code))
		}
		key := strings.ToLower(strings.ReplaceAll(code, "_", "-"))
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("duplicate language code %q, ignored", code))
			continue
		}
		seen[key] = true
		lang.Code = code
		out = append(out, lang)
	}
	return out, warnings
}

// ---------------------------------------------------------------------------
// Languages files
// ---------------------------------------------------------------------------

// ParseLanguages decodes a languages file. format is "json", "yaml" or
// "toml". JSON and YAML keep the file order; TOML tables are sorted by code.
func ParseLanguages(data []byte, format string) (Languages, error) {
	switch format {
	case "json":
		return parseLanguagesJSON(data)
	case "yaml", "yml":
		var l Languages
		if err := yaml.Unmarshal(data, &l); err != nil {
			return nil, err
		}
		return l, nil
	case "toml":
		var m map[string]string
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		l := make(Languages, 0, len(m))
		for _, code := range sortedKeys(m) {
			l = append(l, Language{Code: code, Name: m[code]})
		}
		return l, nil
	}
	return nil, fmt.Errorf("unsupported languages format %q", format)
}

func parseLanguagesJSON(data []byte) (Languages, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON")
	}
	var (
		l   Languages
		err error
	)
	res := gjson.ParseBytes(data)
	switch {
	case res.IsObject():
		res.ForEach(func(k, v gjson.Result) bool {
			if v.Type != gjson.String {
				err = fmt.Errorf("language %q: name must be a string", k.String())
				return false
			}
			l = append(l, Language{Code: k.String(), Name: v.String()})
			return true
		})
	case res.IsArray():
		res.ForEach(func(_, v gjson.Result) bool {
			if v.IsObject() {
				l = append(l, Language{Code: v.Get("code").String(), Name: v.Get("name").String()})
			} else {
				l = append(l, Language{Code: v.String()})
			}
			return true
		})
	default:
		return nil, errors.New("languages must be an object or an array")
	}
	return l, err
}

// LoadLanguages reads a languages file, picking the format from the
// extension.
func LoadLanguages(path string) (Languages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	l, err := ParseLanguages(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return l, nil
}

// LoadLocaleMap reads a JSON object of generic code to file locale.
func LoadLocaleMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	res := gjson.ParseBytes(data)
	if !gjson.ValidBytes(data) || !res.IsObject() {
		return nil, fmt.Errorf("parsing %s: expected a JSON object", path)
	}
	m := make(map[string]string)
	res.ForEach(func(k, v gjson.Result) bool {
		m[k.String()] = v.String()
		return true
	})
	return m, nil
}

// DetectExisting lists the file locales that already have a translated
// catalog <base>-<locale>.po in dir.
func DetectExisting(dir, base string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	prefix := base + "-"
	var locales []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".po") {
			continue
		}
		loc := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".po")
		if loc != "" {
			locales = append(locales, loc)
		}
	}
	sort.Strings(locales)
	return locales
}
