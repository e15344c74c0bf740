// Package lockfile implements potkit.lock, which records for every output
// locale an MD5 checksum of each translated source string and the provider
// that resolved it. Incremental runs reuse provider translations of
// unchanged strings from the existing catalogs and send only new, changed
// or mirrored strings through the chain again.
//
// The lock file is stored alongside .potkit.yaml.
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// LockFileName is the default lock file name.
const LockFileName = "potkit.lock"

// Version is the lock file format version.
const Version = 1

// Record is what the lock knows about one entry of one locale.
type Record struct {
	Hash string `yaml:"hash"`
	// By is the provider ID or resolution that produced the translation.
	By string `yaml:"by"`
}

// LockFile represents the potkit.lock file structure.
type LockFile struct {
	Version int                          `yaml:"version"`
	Locales map[string]map[string]Record `yaml:"locales"` // locale -> key -> record

	mu   sync.Mutex
	path string
}

// New returns an empty lock file that saves to dir.
func New(dir string) *LockFile {
	return &LockFile{
		Version: Version,
		Locales: make(map[string]map[string]Record),
		path:    filepath.Join(dir, LockFileName),
	}
}

// Load reads potkit.lock from dir. A missing file yields an empty lock.
func Load(dir string) (*LockFile, error) {
	lf := New(dir)
	data, err := os.ReadFile(lf.path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading lock file: %w", err)
	}
	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing lock file %s: %w", lf.path, err)
	}
	if lf.Version != Version {
		return nil, fmt.Errorf("lock file %s: unsupported version %d", lf.path, lf.Version)
	}
	if lf.Locales == nil {
		lf.Locales = make(map[string]map[string]Record)
	}
	return lf, nil
}

// Path returns the file the lock saves to.
func (lf *LockFile) Path() string { return lf.path }

// Save writes the lock file.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}
	header := "# potkit.lock - generated by potkit, do not edit\n"
	if err := os.WriteFile(lf.path, append([]byte(header), data...), 0o644); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	return nil
}

// Hash returns the MD5 hex digest of s.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// EntryKey is the lock key of a catalog entry. Like the catalog key it
// covers context, msgid and plural: the context is separated from the
// msgid by EOT, as in MO files, and the plural follows a NUL.
func EntryKey(msgctxt, msgid, plural string) string {
	key := msgid
	if msgctxt != "" {
		key = msgctxt + "\x04" + key
	}
	if plural != "" {
		key += "\x00" + plural
	}
	return key
}

// EntryContent is the hashed content of an entry: msgid and plural joined
// with NUL.
func EntryContent(msgid, plural string) string {
	if plural == "" {
		return msgid
	}
	return msgid + "\x00" + plural
}

// Get returns the record of key in loc.
func (lf *LockFile) Get(loc, key string) (Record, bool) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	r, ok := lf.Locales[loc][key]
	return r, ok
}

// IsChanged reports whether content differs from what was recorded for key.
// Entries never recorded are changed.
func (lf *LockFile) IsChanged(loc, key, content string) bool {
	r, ok := lf.Get(loc, key)
	return !ok || r.Hash != Hash(content)
}

// Update records content and the resolution for key in loc.
func (lf *LockFile) Update(loc, key, content, by string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	if lf.Locales[loc] == nil {
		lf.Locales[loc] = make(map[string]Record)
	}
	lf.Locales[loc][key] = Record{Hash: Hash(content), By: by}
}

// Clean drops the keys of loc that are not in current.
func (lf *LockFile) Clean(loc string, current []string) int {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	records, ok := lf.Locales[loc]
	if !ok {
		return 0
	}
	keep := make(map[string]bool, len(current))
	for _, k := range current {
		keep[k] = true
	}
	removed := 0
	for k := range records {
		if !keep[k] {
			delete(records, k)
			removed++
		}
	}
	return removed
}

// RemoveLocale drops everything recorded for loc.
func (lf *LockFile) RemoveLocale(loc string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Locales, loc)
}

// Retain drops every recorded locale not in keep and returns the removed
// locales, sorted.
func (lf *LockFile) Retain(keep []string) []string {
	wanted := make(map[string]bool, len(keep))
	for _, loc := range keep {
		wanted[loc] = true
	}
	var removed []string
	for _, loc := range lf.LocaleNames() {
		if !wanted[loc] {
			lf.RemoveLocale(loc)
			removed = append(removed, loc)
		}
	}
	return removed
}

// LocaleNames returns the recorded locales, sorted.
func (lf *LockFile) LocaleNames() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	names := make([]string, 0, len(lf.Locales))
	for loc := range lf.Locales {
		names = append(names, loc)
	}
	sort.Strings(names)
	return names
}

// Stats returns the number of locales and the total number of keys.
func (lf *LockFile) Stats() (locales, keys int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	for _, records := range lf.Locales {
		keys += len(records)
	}
	return len(lf.Locales), keys
}

// Counts returns how many keys of loc each resolution produced.
func (lf *LockFile) Counts(loc string) map[string]int {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	out := make(map[string]int)
	for _, r := range lf.Locales[loc] {
		out[r.By]++
	}
	return out
}

// Summary returns a one-line description of the lock file.
func (lf *LockFile) Summary() string {
	locales, keys := lf.Stats()
	if locales == 0 {
		return "empty"
	}
	return fmt.Sprintf("%d locale(s), %d key(s): %s", locales, keys, strings.Join(lf.LocaleNames(), ", "))
}
