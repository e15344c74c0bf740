package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/potkit/provider"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .potkit.yaml structure.
type File struct {
	// SearchDir is the directory scanned for PHP sources (default ".").
	SearchDir string `yaml:"search_dir,omitempty"`
	// POTFile is the template written by extract and read by translate.
	POTFile string `yaml:"pot_file,omitempty"`
	// OutputDir receives the translated .po/.mo files (default "languages").
	OutputDir string `yaml:"output_dir,omitempty"`
	// Providers is the ordered provider chain.
	Providers []string `yaml:"providers,omitempty"`
	// MaxRetries is the number of attempts per provider (default 3).
	MaxRetries int `yaml:"max_retries,omitempty"`
	// Timeout bounds a single provider call (default 12s).
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// Zip packs the output into translations.zip after translate.
	Zip bool `yaml:"zip,omitempty"`
	// Incremental reuses provider translations recorded in potkit.lock.
	Incremental bool `yaml:"incremental,omitempty"`

	// ProviderSettings configures individual providers, keyed by ID.
	ProviderSettings map[string]ProviderSettings `yaml:"provider_settings,omitempty"`
	// LocaleMap maps a generic code to the locale used in output file names.
	LocaleMap map[string]string `yaml:"locale_map,omitempty"`
	// LocaleMapFile is a JSON object merged under LocaleMap.
	LocaleMapFile string `yaml:"locale_map_file,omitempty"`
	// LocaleOverrides maps provider ID to generic code to provider code.
	LocaleOverrides map[string]map[string]string `yaml:"locale_overrides,omitempty"`

	// Languages is the inline target list; takes precedence over LanguagesFile.
	Languages Languages `yaml:"languages,omitempty"`
	// LanguagesFile is a .json, .yaml or .toml map of code to name.
	LanguagesFile string `yaml:"languages_file,omitempty"`
}

// ProviderSettings is the per-provider section of .potkit.yaml.
type ProviderSettings struct {
	URL       string   `yaml:"url,omitempty"`
	APIKey    string   `yaml:"api_key,omitempty"`
	Email     string   `yaml:"email,omitempty"`
	Proxy     string   `yaml:"proxy,omitempty"`
	RateLimit *float64 `yaml:"rate_limit,omitempty"`
	Disabled  bool     `yaml:"disabled,omitempty"`
}

// Defaults
const (
	DefaultSearchDir  = "."
	DefaultPOTFile    = "translations.pot"
	DefaultOutputDir  = "languages"
	DefaultMaxRetries = 3
	DefaultTimeout    = 12 * time.Second
)

// DefaultLanguagesFiles are tried, in order, when neither languages nor
// languages_file is configured.
var DefaultLanguagesFiles = []string{"languages.json", filepath.Join("data", "languages.json")}

// DefaultLocaleMapFiles are tried, in order, when locale_map_file is unset.
var DefaultLocaleMapFiles = []string{"locale_map.json", filepath.Join("data", "locale_map.json")}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the default config file name.
const FileName = ".potkit.yaml"

// ErrNotFound is returned when an explicitly requested config file is missing.
var ErrNotFound = errors.New("config file not found")

// LoadFile loads and validates the config file. An empty path means
// <rootDir>/.potkit.yaml, whose absence yields the defaults; an explicit
// path must exist.
func LoadFile(rootDir, path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(rootDir, FileName)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			f := &File{}
			f.applyDefaults()
			return f, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// ParseFile decodes and validates .potkit.yaml content. Unknown keys are
// rejected.
func ParseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	f.applyDefaults()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) applyDefaults() {
	if f.SearchDir == "" {
		f.SearchDir = DefaultSearchDir
	}
	if f.POTFile == "" {
		f.POTFile = DefaultPOTFile
	}
	if f.OutputDir == "" {
		f.OutputDir = DefaultOutputDir
	}
	if len(f.Providers) == 0 {
		f.Providers = append([]string(nil), provider.DefaultChain...)
	}
	if f.MaxRetries == 0 {
		f.MaxRetries = DefaultMaxRetries
	}
	if f.Timeout == 0 {
		f.Timeout = DefaultTimeout
	}
}

func (f *File) validate() error {
	if f.MaxRetries < 0 {
		return fmt.Errorf("max_retries must be positive, got %d", f.MaxRetries)
	}
	if f.Timeout < 0 {
		return fmt.Errorf("timeout must be positive, got %s", f.Timeout)
	}
	known := provider.DefaultConfigs()
	for _, id := range sortedKeys(f.ProviderSettings) {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("provider_settings: unknown provider %q", id)
		}
		if rl := f.ProviderSettings[id].RateLimit; rl != nil && *rl < 0 {
			return fmt.Errorf("provider_settings.%s: rate_limit must not be negative", id)
		}
	}
	for _, id := range sortedKeys(f.LocaleOverrides) {
		if _, ok := known[id]; !ok {
			return fmt.Errorf("locale_overrides: unknown provider %q", id)
		}
	}
	if len(f.Languages) > 0 && f.LanguagesFile != "" {
		return errors.New("languages and languages_file are mutually exclusive")
	}
	return nil
}

// UpdateSettings applies fn to the settings of provider id.
func (f *File) UpdateSettings(id string, fn func(ps *ProviderSettings)) {
	if f.ProviderSettings == nil {
		f.ProviderSettings = make(map[string]ProviderSettings)
	}
	ps := f.ProviderSettings[id]
	fn(&ps)
	f.ProviderSettings[id] = ps
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
