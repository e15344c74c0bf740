// Package settings provides storage for potkit user settings, currently the
// provider credentials.
//
// Settings are stored in the XDG data directory:
//
//	$XDG_DATA_HOME/potkit/  (default: ~/.local/share/potkit/)
//
// auth.json is a JSON object keyed by provider ID:
//
//	{
//	  "libre":    {"key": "…", "baseUrl": "https://translate.example.org"},
//	  "mymemory": {"email": "me@example.org"}
//	}
//
// File permissions are 0600 (owner read/write only).
//
// Lookup order for credentials:
//  1. command-line flag (highest priority)
//  2. POTKIT_LIBRE_API_KEY / POTKIT_MYMEMORY_EMAIL environment variables
//  3. This credential store
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	dataDirName = "potkit"
	fileName    = "auth.json"
)

// ---------------------------------------------------------------------------
// Auth entries
// ---------------------------------------------------------------------------

// Info is the credential record stored per provider in auth.json.
type Info struct {
	// Key is the API key (LibreTranslate instances that require one).
	Key string `json:"key,omitempty"`
	// Email raises the MyMemory anonymous daily quota.
	Email string `json:"email,omitempty"`
	// BaseURL points a provider at a self-hosted instance.
	BaseURL string `json:"baseUrl,omitempty"`
}

// Empty reports whether the record carries nothing.
func (i *Info) Empty() bool {
	return i == nil || (i.Key == "" && i.Email == "" && i.BaseURL == "")
}

// Store holds all provider credentials, keyed by provider ID.
type Store map[string]*Info

// IDs returns the provider IDs in the store, sorted.
func (s Store) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ---------------------------------------------------------------------------
// File path
// ---------------------------------------------------------------------------

// dataDir returns the XDG data directory for potkit.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func dataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

func filePath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// FilePath returns the auth.json file path for display purposes.
func FilePath() string {
	p, err := filePath()
	if err != nil {
		return ""
	}
	return p
}

// DataDir returns the potkit data directory path.
func DataDir() (string, error) {
	return dataDir()
}

// ---------------------------------------------------------------------------
// Load / Save
// ---------------------------------------------------------------------------

// Load reads the credential store from disk.
// Returns an empty store if the file doesn't exist or is invalid.
func Load() Store {
	path, err := filePath()
	if err != nil {
		return make(Store)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return make(Store)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return make(Store)
	}

	if store == nil {
		return make(Store)
	}

	return store
}

// Save writes the credential store to disk with 0600 permissions.
func Save(store Store) error {
	path, err := filePath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing auth file: %w", err)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Get / Set / Remove
// ---------------------------------------------------------------------------

// Get returns the auth entry for a provider, or nil if not found.
func Get(providerID string) *Info {
	return Load()[providerID]
}

// Set stores an auth entry for a provider (upsert).
func Set(providerID string, info *Info) error {
	store := Load()
	store[providerID] = info
	return Save(store)
}

// Update merges the non-empty fields of info into the provider's entry.
func Update(providerID string, info Info) error {
	store := Load()
	cur := store[providerID]
	if cur == nil {
		cur = &Info{}
	}
	if info.Key != "" {
		cur.Key = info.Key
	}
	if info.Email != "" {
		cur.Email = info.Email
	}
	if info.BaseURL != "" {
		cur.BaseURL = info.BaseURL
	}
	store[providerID] = cur
	return Save(store)
}

// Remove deletes credentials for a provider.
func Remove(providerID string) error {
	store := Load()
	if _, ok := store[providerID]; !ok {
		return nil
	}
	delete(store, providerID)
	return Save(store)
}

// RemoveAll removes all stored credentials.
func RemoveAll() error {
	path, err := filePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing auth file: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolution
// ---------------------------------------------------------------------------

// EnvVarForProvider returns the environment variable holding a provider's
// API key, or "" when the provider takes none.
func EnvVarForProvider(providerID string) string {
	switch providerID {
	case "libre":
		return "POTKIT_LIBRE_API_KEY"
	}
	return ""
}

// EmailEnvVarForProvider returns the environment variable holding a
// provider's account email, or "".
func EmailEnvVarForProvider(providerID string) string {
	switch providerID {
	case "mymemory":
		return "POTKIT_MYMEMORY_EMAIL"
	}
	return ""
}

// ResolveAPIKey returns the API key for a provider: flag, then
// environment, then store.
func ResolveAPIKey(providerID, flagValue string) string {
	return resolve(flagValue, EnvVarForProvider(providerID), func(i *Info) string { return i.Key }, providerID)
}

// ResolveEmail returns the account email for a provider: flag, then
// environment, then store.
func ResolveEmail(providerID, flagValue string) string {
	return resolve(flagValue, EmailEnvVarForProvider(providerID), func(i *Info) string { return i.Email }, providerID)
}

func resolve(flagValue, envVar string, field func(*Info) string, providerID string) string {
	if flagValue != "" {
		return flagValue
	}
	if envVar != "" {
		if v := os.Getenv(envVar); v != "" {
			return v
		}
	}
	if info := Get(providerID); info != nil {
		return field(info)
	}
	return ""
}

// MaskKey returns a masked version of a key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
