package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/minios-linux/potkit/provider"
)

// EnvPrefix prefixes every environment variable potkit reads.
const EnvPrefix = "POTKIT_"

// legacyEnv maps a variable to an unprefixed name still honored when the
// prefixed one is unset.
var legacyEnv = map[string]string{
	EnvPrefix + "SEARCH_DIR": "SEARCH_DIR",
	EnvPrefix + "POT_FILE":   "POT_FILE",
}

// LoadDotEnv loads <rootDir>/.env into the process environment if it
// exists. Variables already set are not overwritten.
func LoadDotEnv(rootDir string) error {
	path := filepath.Join(rootDir, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides file settings from the environment. lookup is
// os.LookupEnv outside tests.
func (f *File) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			return cleanEnv(v), true
		}
		if legacy, ok := legacyEnv[name]; ok {
			if v, ok := lookup(legacy); ok && strings.TrimSpace(v) != "" {
				return cleanEnv(v), true
			}
		}
		return "", false
	}

	if v, ok := get(EnvPrefix + "SEARCH_DIR"); ok {
		f.SearchDir = v
	}
	if v, ok := get(EnvPrefix + "POT_FILE"); ok {
		f.POTFile = v
	}
	if v, ok := get(EnvPrefix + "OUTPUT_DIR"); ok {
		f.OutputDir = v
	}
	if v, ok := get(EnvPrefix + "PROVIDERS"); ok {
		f.Providers = provider.ParseChain(v)
	}
	if v, ok := get(EnvPrefix + "MAX_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("%sMAX_RETRIES: invalid value %q", EnvPrefix, v)
		}
		f.MaxRetries = n
	}
	if v, ok := get(EnvPrefix + "TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("%sTIMEOUT: invalid duration %q", EnvPrefix, v)
		}
		f.Timeout = d
	}
	if v, ok := get(EnvPrefix + "LIBRE_URL"); ok {
		f.UpdateSettings(provider.Libre, func(ps *ProviderSettings) { ps.URL = v })
	}
	if v, ok := get(EnvPrefix + "LIBRE_API_KEY"); ok {
		f.UpdateSettings(provider.Libre, func(ps *ProviderSettings) { ps.APIKey = v })
	}
	if v, ok := get(EnvPrefix + "MYMEMORY_EMAIL"); ok {
		f.UpdateSettings(provider.MyMemory, func(ps *ProviderSettings) { ps.Email = v })
	}
	return nil
}

// cleanEnv strips whitespace and surrounding quotes, as .env files often
// carry them.
func cleanEnv(v string) string {
	return strings.Trim(strings.TrimSpace(v), `"'`)
}
