// Package locale maps generic locale codes (pt-BR, zh_TW, he) to the form
// each translation provider accepts.
package locale

import "strings"

// Provider identifiers with a normalization table.
const (
	Google   = "google"
	MyMemory = "mymemory"
	Libre    = "libre"
)

// Split case-folds and trims code and returns its base language and region.
// Both "_" and "-" separate the region; anything after a second separator
// is dropped.
func Split(code string) (base, region string) {
	code = strings.ToLower(strings.TrimSpace(code))
	code = strings.ReplaceAll(code, "_", "-")
	base, rest, _ := strings.Cut(code, "-")
	region, _, _ = strings.Cut(rest, "-")
	return base, region
}

// Base returns the lower-case base language of code.
func Base(code string) string {
	b, _ := Split(code)
	return b
}

// HasRegion reports whether code is region-qualified.
func HasRegion(code string) bool {
	_, r := Split(code)
	return r != ""
}

var traditionalRegions = map[string]bool{"tw": true, "hk": true, "mo": true, "hant": true}

// chineseScript reports whether a Chinese region or script subtag means
// traditional characters. Everything else, including no region, is
// simplified.
func chineseScript(region string) (traditional bool) {
	return traditionalRegions[region]
}

// myMemoryDefaults is the region used for a bare base code.
var myMemoryDefaults = map[string]string{
	"es": "ES", "fr": "FR", "de": "DE", "it": "IT", "pt": "PT", "sv": "SE",
	"nl": "NL", "ru": "RU", "ar": "SA", "he": "IL", "tr": "TR", "vi": "VN",
	"ko": "KR", "ja": "JP", "pl": "PL", "ro": "RO", "cs": "CZ", "da": "DK",
	"fi": "FI", "hu": "HU", "el": "GR", "uk": "UA",
}

// myMemoryKnown are explicit base-region pairs kept as given.
var myMemoryKnown = map[string]bool{
	"es-mx": true, "es-ar": true, "es-co": true, "es-us": true,
	"pt-br": true,
	"fr-ca": true, "fr-be": true, "fr-ch": true,
	"de-at": true, "de-ch": true,
	"en-gb": true, "en-us": true, "en-au": true, "en-ca": true,
	"nl-be": true, "ar-eg": true, "sv-fi": true,
}

// Normalize returns the code provider expects for the generic code. It is
// a pure function and always returns a best-effort value.
func Normalize(code, provider string) string {
	base, region := Split(code)
	if base == "" {
		return ""
	}
	switch provider {
	case Google:
		return google(base, region)
	case MyMemory:
		return myMemory(base, region)
	case Libre:
		return libre(base, region)
	}
	if region == "" {
		return base
	}
	return base + "-" + region
}

func google(base, region string) string {
	switch base {
	case "zh":
		if chineseScript(region) {
			return "zh-tw"
		}
		return "zh-cn"
	case "he", "iw":
		return "iw"
	}
	return base
}

func myMemory(base, region string) string {
	switch base {
	case "zh":
		if chineseScript(region) {
			return "zh-TW"
		}
		return "zh-CN"
	case "iw":
		base = "he"
	}
	if region == "" {
		if def, ok := myMemoryDefaults[base]; ok {
			return base + "-" + def
		}
		return base
	}
	if myMemoryKnown[base+"-"+region] {
		return base + "-" + strings.ToUpper(region)
	}
	if def, ok := myMemoryDefaults[base]; ok {
		return base + "-" + def
	}
	return base + "-" + strings.ToUpper(region)
}

func libre(base, region string) string {
	switch base {
	case "zh":
		if chineseScript(region) {
			return "zt"
		}
		return "zh"
	case "he", "iw":
		// LibreTranslate only knows the modern code.
		return "he"
	}
	return base
}

// Normalizer applies per-provider overrides before the built-in tables.
type Normalizer struct {
	// Overrides maps provider → generic code → provider code. Generic codes
	// are matched case-insensitively with "_" and "-" treated alike.
	Overrides map[string]map[string]string
}

// Normalize returns the override for (code, provider) when one is
// configured, otherwise the table value.
func (n Normalizer) Normalize(code, provider string) string {
	if table, ok := n.Overrides[provider]; ok {
		want := canonical(code)
		for k, v := range table {
			if canonical(k) == want {
				return v
			}
		}
	}
	return Normalize(code, provider)
}

func canonical(code string) string {
	base, region := Split(code)
	if region == "" {
		return base
	}
	return base + "-" + region
}
