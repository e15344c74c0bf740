package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/minios-linux/potkit/provider"
	"github.com/minios-linux/potkit/settings"
	"github.com/minios-linux/potkit/translate"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// isolate keeps the process environment and credential store out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	for _, name := range []string{
		"POTKIT_SEARCH_DIR", "POTKIT_POT_FILE", "POTKIT_OUTPUT_DIR", "POTKIT_PROVIDERS",
		"POTKIT_MAX_RETRIES", "POTKIT_TIMEOUT", "POTKIT_LIBRE_URL", "POTKIT_LIBRE_API_KEY",
		"POTKIT_MYMEMORY_EMAIL", "SEARCH_DIR", "POT_FILE",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadFileDefaultsAndValidation(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		f, err := LoadFile(t.TempDir(), "")
		if err != nil {
			t.Fatalf("LoadFile error: %v", err)
		}
		if f.SearchDir != "." || f.POTFile != DefaultPOTFile || f.OutputDir != DefaultOutputDir {
			t.Fatalf("unexpected defaults: %#v", f)
		}
		if !reflect.DeepEqual(f.Providers, provider.DefaultChain) {
			t.Fatalf("Providers = %v, want %v", f.Providers, provider.DefaultChain)
		}
		if f.MaxRetries != 3 || f.Timeout != 12*time.Second {
			t.Fatalf("MaxRetries/Timeout = %d/%s", f.MaxRetries, f.Timeout)
		}
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		_, err := LoadFile(t.TempDir(), "/nonexistent/potkit.yaml")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("parses every section", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, FileName), `search_dir: src
pot_file: languages/demo.pot
providers: [libre, google]
max_retries: 5
timeout: 30s
provider_settings:
  libre:
    url: http://localhost:5000
    rate_limit: 0.5
  mymemory:
    disabled: true
locale_map:
  pt-BR: pt_BR
locale_overrides:
  google:
    he: he
languages:
  de: German
  pt-BR: Portuguese (Brazil)
  ja: ""
`)
		f, err := LoadFile(dir, "")
		if err != nil {
			t.Fatalf("LoadFile error: %v", err)
		}
		if f.SearchDir != "src" || f.OutputDir != DefaultOutputDir || f.MaxRetries != 5 || f.Timeout != 30*time.Second {
			t.Fatalf("unexpected file: %#v", f)
		}
		if got := f.ProviderSettings["libre"]; got.URL != "http://localhost:5000" || got.RateLimit == nil || *got.RateLimit != 0.5 {
			t.Fatalf("libre settings = %#v", got)
		}
		if !f.ProviderSettings["mymemory"].Disabled {
			t.Fatal("mymemory should be disabled")
		}
		want := Languages{{Code: "de", Name: "German"}, {Code: "pt-BR", Name: "Portuguese (Brazil)"}, {Code: "ja"}}
		if !reflect.DeepEqual(f.Languages, want) {
			t.Fatalf("Languages = %#v, want %#v", f.Languages, want)
		}
		if f.LocaleOverrides["google"]["he"] != "he" {
			t.Fatalf("LocaleOverrides = %#v", f.LocaleOverrides)
		}
	})

	cases := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "po_dir: po\n", "po_dir"},
		{"negative retries", "max_retries: -1\n", "max_retries"},
		{"unknown provider settings", "provider_settings:\n  deepl:\n    url: x\n", "unknown provider"},
		{"unknown override provider", "locale_overrides:\n  deepl:\n    he: iw\n", "unknown provider"},
		{"both language sources", "languages: [de]\nlanguages_file: l.json\n", "mutually exclusive"},
		{"bad language entry", "languages: 3\n", "mapping or a list"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFile([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("ParseFile(%q) error = %v, want containing %q", tc.yaml, err, tc.want)
			}
		})
	}
}

func TestLanguagesYAMLSequence(t *testing.T) {
	f, err := ParseFile([]byte("languages:\n  - de\n  - code: fr-CA\n    name: Canadian French\n"))
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	want := Languages{{Code: "de"}, {Code: "fr-CA", Name: "Canadian French"}}
	if !reflect.DeepEqual(f.Languages, want) {
		t.Fatalf("Languages = %#v, want %#v", f.Languages, want)
	}
}

func TestParseLanguagesFormats(t *testing.T) {
	cases := []struct {
		format string
		data   string
		want   Languages
	}{
		{"json", `{"zh-TW": "Chinese (Traditional)", "de": "German"}`,
			Languages{{Code: "zh-TW", Name: "Chinese (Traditional)"}, {Code: "de", Name: "German"}}},
		{"json", `["es", {"code": "pt-BR", "name": "Portuguese"}]`,
			Languages{{Code: "es"}, {Code: "pt-BR", Name: "Portuguese"}}},
		{"yaml", "ru: Russian\nar: Arabic\n",
			Languages{{Code: "ru", Name: "Russian"}, {Code: "ar", Name: "Arabic"}}},
		{"toml", "ru = \"Russian\"\nar = \"Arabic\"\n",
			Languages{{Code: "ar", Name: "Arabic"}, {Code: "ru", Name: "Russian"}}},
	}
	for _, tc := range cases {
		got, err := ParseLanguages([]byte(tc.data), tc.format)
		if err != nil {
			t.Fatalf("ParseLanguages(%s) error: %v", tc.format, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseLanguages(%s) = %#v, want %#v", tc.format, got, tc.want)
		}
	}

	for _, bad := range []struct{ format, data string }{
		{"json", `{"de": `},
		{"json", `{"de": 1}`},
		{"json", `"de"`},
		{"toml", `de = [`},
		{"ini", `de=German`},
	} {
		if _, err := ParseLanguages([]byte(bad.data), bad.format); err == nil {
			t.Fatalf("ParseLanguages(%s, %q) expected error", bad.format, bad.data)
		}
	}
}

func TestValidateAndNames(t *testing.T) {
	in := Languages{{Code: "de"}, {Code: " "}, {Code: "pt_BR", Name: "Brasil"}, {Code: "pt-br"}, {Code: "zz-ZZ"}}
	out, warnings := in.Validate()
	if !reflect.DeepEqual(out.Codes(), []string{"de", "pt_BR", "zz-ZZ"}) {
		t.Fatalf("Codes() = %v", out.Codes())
	}
	if len(warnings) != 3 {
		t.Fatalf("warnings = %v, want 3", warnings)
	}

	named := out.WithNames()
	if named[0].Name != "German" || named[1].Name != "Brasil" || named[2].Name != "zz-ZZ" {
		t.Fatalf("WithNames() = %#v", named)
	}
	if out[0].Name != "" {
		t.Fatal("WithNames must not modify the receiver")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"POT_FILE":              `"legacy.pot"`,
		"POTKIT_OUTPUT_DIR":     "out",
		"POTKIT_PROVIDERS":      "MyMemory, libre",
		"POTKIT_MAX_RETRIES":    "2",
		"POTKIT_TIMEOUT":        "5s",
		"POTKIT_LIBRE_URL":      "http://lt:5000",
		"POTKIT_LIBRE_API_KEY":  "env-key",
		"POTKIT_MYMEMORY_EMAIL": "me@example.org",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	f, _ := ParseFile([]byte("pot_file: file.pot\nprovider_settings:\n  libre:\n    url: http://file\n"))
	if err := f.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv error: %v", err)
	}
	if f.POTFile != "legacy.pot" || f.OutputDir != "out" || f.MaxRetries != 2 || f.Timeout != 5*time.Second {
		t.Fatalf("unexpected file after env: %#v", f)
	}
	if !reflect.DeepEqual(f.Providers, []string{"mymemory", "libre"}) {
		t.Fatalf("Providers = %v", f.Providers)
	}
	if ps := f.ProviderSettings["libre"]; ps.URL != "http://lt:5000" || ps.APIKey != "env-key" {
		t.Fatalf("libre settings = %#v", ps)
	}
	if f.ProviderSettings["mymemory"].Email != "me@example.org" {
		t.Fatalf("mymemory settings = %#v", f.ProviderSettings["mymemory"])
	}

	env["POTKIT_POT_FILE"] = "prefixed.pot"
	_ = f.ApplyEnv(lookup)
	if f.POTFile != "prefixed.pot" {
		t.Fatalf("prefixed variable should win over legacy, got %q", f.POTFile)
	}

	env["POTKIT_MAX_RETRIES"] = "zero"
	if err := f.ApplyEnv(lookup); err == nil {
		t.Fatal("expected error for invalid POTKIT_MAX_RETRIES")
	}
}

func TestLoadProject(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, FileName), "providers: [google, libre]\n")
	writeFile(t, filepath.Join(dir, ".env"), "POTKIT_OUTPUT_DIR=dist/lang\n")
	writeFile(t, filepath.Join(dir, "data", "languages.json"), `{"pt-BR": "Portuguese (Brazil)", "de": ""}`)
	writeFile(t, filepath.Join(dir, "data", "locale_map.json"), `{"pt-BR": "pt_BR", "de": "de_DE"}`)
	t.Cleanup(func() { os.Unsetenv("POTKIT_OUTPUT_DIR") })
	// godotenv does not override variables that are already set
	os.Unsetenv("POTKIT_OUTPUT_DIR")

	p, err := Load(dir, "")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if p.OutputDir() != filepath.Join(dir, "dist", "lang") {
		t.Fatalf("OutputDir() = %q", p.OutputDir())
	}
	if p.LanguagesSource != filepath.Join(dir, "data", "languages.json") {
		t.Fatalf("LanguagesSource = %q", p.LanguagesSource)
	}

	want := []translate.Target{
		{Code: "pt-BR", Name: "Portuguese (Brazil)", FileLocale: "pt_BR"},
		{Code: "de", Name: "German", FileLocale: "de_DE"},
	}
	if got := p.Targets(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Targets() = %#v, want %#v", got, want)
	}

	sel, err := p.Select([]string{"DE"})
	if err != nil || len(sel) != 1 || sel[0].Code != "de" {
		t.Fatalf("Select(DE) = %#v, %v", sel, err)
	}
	if _, err := p.Select([]string{"fr"}); err == nil {
		t.Fatal("Select(fr) should fail")
	}

	chain := p.Registry().Chain()
	if len(chain) != 2 || chain[0].ID != "google" || chain[1].ID != "libre" {
		t.Fatalf("chain = %#v", chain)
	}
}

func TestInlineLocaleMapWinsOverFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "locale_map.json"), `{"pt-BR": "pt_BR", "de": "de_DE"}`)
	f, _ := ParseFile([]byte("languages: {de: German}\nlocale_map:\n  de: de_CH\n"))

	p, err := Resolve(dir, f)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if p.LocaleMap["de"] != "de_CH" || p.LocaleMap["pt-BR"] != "pt_BR" {
		t.Fatalf("LocaleMap = %#v", p.LocaleMap)
	}
}

func TestProviderConfigsPrecedence(t *testing.T) {
	isolate(t)
	if err := settings.Set("libre", &settings.Info{Key: "stored-key", BaseURL: "http://stored"}); err != nil {
		t.Fatal(err)
	}
	if err := settings.Set("mymemory", &settings.Info{Email: "stored@example.org"}); err != nil {
		t.Fatal(err)
	}

	f, _ := ParseFile([]byte("provider_settings:\n  mymemory:\n    email: file@example.org\n    rate_limit: 4\n  google:\n    disabled: true\n"))
	p := &Project{Root: t.TempDir(), File: f}
	cfgs := p.ProviderConfigs()

	if cfgs["libre"].APIKey != "stored-key" || cfgs["libre"].BaseURL != "http://stored" {
		t.Fatalf("libre = %#v", cfgs["libre"])
	}
	if cfgs["mymemory"].Email != "file@example.org" || cfgs["mymemory"].RateLimit != 4 {
		t.Fatalf("mymemory = %#v", cfgs["mymemory"])
	}
	if !cfgs["google"].Disabled {
		t.Fatal("google should be disabled")
	}
	if p.Normalizer().Overrides != nil {
		t.Fatal("no overrides configured")
	}
}

func TestPOTPathResolvedAndBaseName(t *testing.T) {
	dir := t.TempDir()
	f, _ := ParseFile(nil)
	p := &Project{Root: dir, File: f}

	if got := p.POTPathResolved(); got != filepath.Join(dir, DefaultPOTFile) {
		t.Fatalf("POTPathResolved() without files = %q", got)
	}
	pot := filepath.Join(dir, DefaultOutputDir, "my-plugin.pot")
	writeFile(t, pot, "")
	if got := p.POTPathResolved(); got != pot {
		t.Fatalf("POTPathResolved() = %q, want %q", got, pot)
	}
	if got := BaseName(pot); got != "my-plugin" {
		t.Fatalf("BaseName = %q", got)
	}
}

func TestDetectExisting(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"demo-de_DE.po", "demo-de_DE.mo", "demo-fr.po", "other-ru.po", "demo-.po"} {
		writeFile(t, filepath.Join(dir, name), "")
	}
	if got := DetectExisting(dir, "demo"); !reflect.DeepEqual(got, []string{"de_DE", "fr"}) {
		t.Fatalf("DetectExisting = %v", got)
	}
	if got := DetectExisting(filepath.Join(dir, "missing"), "demo"); got != nil {
		t.Fatalf("DetectExisting(missing) = %v", got)
	}
}
