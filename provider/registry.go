package provider

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProvider is returned when none of the requested providers can run.
var ErrNoProvider = errors.New("no translation provider available")

// Capability is one slot of the provider chain. Client is nil when the
// provider cannot be used; Reason then says why.
type Capability struct {
	ID     string
	Client Client
	Reason string
}

// Available reports whether the slot has a usable client.
func (c Capability) Available() bool { return c.Client != nil }

// Registry is the provider chain resolved once at startup.
type Registry struct {
	caps []Capability
}

// NewRegistry builds a registry from already constructed capabilities.
func NewRegistry(caps ...Capability) *Registry {
	return &Registry{caps: caps}
}

// Resolve builds the chain for names, in order, from cfgs (falling back to
// DefaultConfigs for providers cfgs does not mention). Unknown, disabled
// and unconfigured providers stay in the chain as unavailable slots.
func Resolve(names []string, cfgs map[string]Config) *Registry {
	defaults := DefaultConfigs()
	r := &Registry{}
	seen := make(map[string]bool)
	for _, name := range names {
		id := strings.ToLower(strings.TrimSpace(name))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		cfg, ok := cfgs[id]
		if !ok {
			cfg, ok = defaults[id]
		}
		if !ok {
			r.caps = append(r.caps, Capability{ID: id, Reason: "unknown provider"})
			continue
		}
		r.caps = append(r.caps, resolveOne(id, cfg))
	}
	return r
}

func resolveOne(id string, cfg Config) Capability {
	if cfg.Disabled {
		return Capability{ID: id, Reason: "disabled in configuration"}
	}
	var c Client
	switch id {
	case Google:
		c = NewGoogle()
	case MyMemory:
		if cfg.BaseURL == "" {
			return Capability{ID: id, Reason: "no endpoint configured"}
		}
		c = NewMyMemory(cfg)
	case Libre:
		if cfg.BaseURL == "" {
			return Capability{ID: id, Reason: "no endpoint configured"}
		}
		c = NewLibre(cfg)
	}
	return Capability{ID: id, Client: WithRateLimit(c, cfg.RateLimit)}
}

// Chain returns every slot in order, available or not.
func (r *Registry) Chain() []Capability {
	return append([]Capability(nil), r.caps...)
}

// Available returns the IDs of usable providers in chain order.
func (r *Registry) Available() []string {
	var ids []string
	for _, c := range r.caps {
		if c.Available() {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Check fails with ErrNoProvider when no slot is usable.
func (r *Registry) Check() error {
	if len(r.Available()) > 0 {
		return nil
	}
	var reasons []string
	for _, c := range r.caps {
		reasons = append(reasons, c.ID+": "+c.Reason)
	}
	if len(reasons) == 0 {
		return fmt.Errorf("%w: empty provider chain", ErrNoProvider)
	}
	return fmt.Errorf("%w (%s)", ErrNoProvider, strings.Join(reasons, "; "))
}

// ParseChain splits a comma-separated provider list.
func ParseChain(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
