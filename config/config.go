// Package config resolves the settings of a potkit run from .potkit.yaml,
// the environment (including an optional .env) and the languages and
// locale map files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/potkit/locale"
	"github.com/minios-linux/potkit/provider"
	"github.com/minios-linux/potkit/settings"
	"github.com/minios-linux/potkit/translate"
)

// Project holds the resolved configuration of one run.
type Project struct {
	// Root is the absolute project root; relative paths resolve against it.
	Root string
	File *File
	// Languages is the validated target list with display names filled in.
	Languages Languages
	// LanguagesSource is the file the languages came from, or "" if inline.
	LanguagesSource string
	// LocaleMap merges locale_map_file under the inline locale_map.
	LocaleMap map[string]string
	// Warnings collects non-fatal problems found while loading.
	Warnings []string
}

// Load resolves the configuration rooted at rootDir. configPath, if set,
// names the config file explicitly. Environment variables override the
// file; callers apply flags on top through Project.File.
func Load(rootDir, configPath string) (*Project, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	if err := LoadDotEnv(root); err != nil {
		return nil, err
	}
	f, err := LoadFile(root, configPath)
	if err != nil {
		return nil, err
	}
	if err := f.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return Resolve(root, f)
}

// Resolve loads the files f refers to and validates the language list.
func Resolve(root string, f *File) (*Project, error) {
	p := &Project{Root: root, File: f}

	langs := f.Languages
	if len(langs) == 0 {
		path := p.firstExisting(f.LanguagesFile, DefaultLanguagesFiles)
		if path != "" {
			l, err := LoadLanguages(path)
			if err != nil {
				return nil, err
			}
			langs, p.LanguagesSource = l, path
		}
	}
	langs, warnings := langs.Validate()
	p.Languages = langs.WithNames()
	p.Warnings = append(p.Warnings, warnings...)

	p.LocaleMap = make(map[string]string)
	if path := p.firstExisting(f.LocaleMapFile, DefaultLocaleMapFiles); path != "" {
		m, err := LoadLocaleMap(path)
		if err != nil {
			return nil, err
		}
		for k, v := range m {
			p.LocaleMap[k] = v
		}
	}
	for k, v := range f.LocaleMap {
		p.LocaleMap[k] = v
	}

	for _, id := range f.Providers {
		if _, ok := provider.DefaultConfigs()[id]; !ok {
			p.Warnings = append(p.Warnings, fmt.Sprintf("unknown provider %q in chain", id))
		}
	}
	return p, nil
}

// firstExisting returns the absolute configured path, which must exist
// when set, or the first of the defaults found under Root.
func (p *Project) firstExisting(configured string, defaults []string) string {
	if configured != "" {
		return p.Abs(configured)
	}
	for _, d := range defaults {
		path := p.Abs(d)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Abs resolves path against Root unless it is already absolute.
func (p *Project) Abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// SearchDir returns the absolute source directory.
func (p *Project) SearchDir() string { return p.Abs(p.File.SearchDir) }

// OutputDir returns the absolute output directory.
func (p *Project) OutputDir() string { return p.Abs(p.File.OutputDir) }

// POTPath returns the absolute template path extract writes to.
func (p *Project) POTPath() string { return p.Abs(p.File.POTFile) }

// POTPathResolved returns the template translate should read: the
// configured one when it exists, otherwise the only .pot file in the
// output or search directory.
func (p *Project) POTPathResolved() string {
	configured := p.POTPath()
	if _, err := os.Stat(configured); err == nil {
		return configured
	}
	for _, dir := range []string{p.OutputDir(), p.SearchDir()} {
		matches, _ := filepath.Glob(filepath.Join(dir, "*.pot"))
		if len(matches) == 1 {
			return matches[0]
		}
	}
	return configured
}

// BaseName is the template file name without its extension; translated
// catalogs are named <BaseName>-<locale>.po.
func BaseName(potPath string) string {
	name := filepath.Base(potPath)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ProviderConfigs merges the built-in provider definitions with the file
// settings and the credential store. Environment values are already in
// the file settings and win over the store.
func (p *Project) ProviderConfigs() map[string]provider.Config {
	cfgs := provider.DefaultConfigs()
	for id, cfg := range cfgs {
		ps := p.File.ProviderSettings[id]
		stored := settings.Get(id)

		switch {
		case ps.URL != "":
			cfg.BaseURL = ps.URL
		case stored != nil && stored.BaseURL != "":
			cfg.BaseURL = stored.BaseURL
		}
		cfg.APIKey = settings.ResolveAPIKey(id, ps.APIKey)
		cfg.Email = settings.ResolveEmail(id, ps.Email)
		if ps.Proxy != "" {
			cfg.Proxy = ps.Proxy
		}
		if ps.RateLimit != nil {
			cfg.RateLimit = *ps.RateLimit
		}
		cfg.Disabled = ps.Disabled
		cfgs[id] = cfg
	}
	return cfgs
}

// Registry resolves the configured provider chain.
func (p *Project) Registry() *provider.Registry {
	return provider.Resolve(p.File.Providers, p.ProviderConfigs())
}

// Normalizer returns the locale normalizer with the configured overrides.
func (p *Project) Normalizer() locale.Normalizer {
	return locale.Normalizer{Overrides: p.File.LocaleOverrides}
}

// Targets returns the translation targets in configured order, with file
// locales taken from the locale map.
func (p *Project) Targets() []translate.Target {
	targets := make([]translate.Target, 0, len(p.Languages))
	for _, lang := range p.Languages {
		targets = append(targets, translate.Target{
			Code:       lang.Code,
			Name:       lang.Name,
			FileLocale: p.LocaleMap[lang.Code],
		})
	}
	return targets
}

// Select narrows the targets to the given codes, keeping configured order.
// Codes that are not configured are returned as errors.
func (p *Project) Select(codes []string) ([]translate.Target, error) {
	all := p.Targets()
	if len(codes) == 0 {
		return all, nil
	}
	want := make(map[string]bool)
	for _, c := range codes {
		want[strings.ToLower(c)] = true
	}
	var out []translate.Target
	for _, t := range all {
		if want[strings.ToLower(t.Code)] {
			out = append(out, t)
			delete(want, strings.ToLower(t.Code))
		}
	}
	if len(want) > 0 {
		return nil, fmt.Errorf("languages not configured: %s", strings.Join(sortedKeys(want), ", "))
	}
	return out, nil
}
