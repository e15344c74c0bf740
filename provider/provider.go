// Package provider implements clients for the machine-translation services
// potkit can call, and the registry that decides at startup which of them
// are usable.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/minios-linux/potkit/locale"
)

// Provider identifiers.
const (
	Google   = locale.Google
	MyMemory = locale.MyMemory
	Libre    = locale.Libre
)

// DefaultChain is the provider order used when none is configured.
var DefaultChain = []string{Google, MyMemory, Libre}

// AutoSource asks the service to detect the source language.
const AutoSource = "auto"

// Request is one translation call.
type Request struct {
	Text   string
	Source string
	// Target is already normalized for the provider.
	Target string
}

// Client translates text with one backing service.
type Client interface {
	ID() string
	Translate(ctx context.Context, req Request) (string, error)
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

var (
	// ErrRejectedLocale means the service does not support the target code.
	ErrRejectedLocale = errors.New("target locale rejected")
	// ErrEmptyTranslation means the call succeeded but returned no text.
	ErrEmptyTranslation = errors.New("empty translation received")
	// ErrUnavailable means the provider cannot be used in this run.
	ErrUnavailable = errors.New("provider unavailable")
)

// TransportError is a network, timeout or non-success status failure.
type TransportError struct {
	Provider string
	// Status is the HTTP status, 0 when no response was received.
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: HTTP %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

// Config holds the connection settings of one provider.
type Config struct {
	// ID is the provider identifier (google, mymemory, libre).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API endpoint; empty disables HTTP providers.
	BaseURL string
	// APIKey is the authentication key, if the service takes one.
	APIKey string
	// Email raises the MyMemory anonymous quota.
	Email string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// RateLimit is the maximum requests per second (0 = unlimited).
	RateLimit float64
	// Disabled removes the provider from the chain.
	Disabled bool
}

// DefaultConfigs returns the pre-configured provider definitions.
func DefaultConfigs() map[string]Config {
	return map[string]Config{
		Google: {
			ID:        Google,
			Name:      "Google Translate",
			RateLimit: 5,
		},
		MyMemory: {
			ID:        MyMemory,
			Name:      "MyMemory",
			BaseURL:   "https://api.mymemory.translated.net",
			RateLimit: 2,
		},
		Libre: {
			ID:        Libre,
			Name:      "LibreTranslate",
			BaseURL:   "https://libretranslate.com",
			RateLimit: 1,
		},
	}
}

// makeHTTPClient builds a client honoring an explicit proxy or the
// HTTP_PROXY/HTTPS_PROXY environment. Timeouts come from the caller's
// context.
func makeHTTPClient(proxyURL string) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}
	return &http.Client{Transport: transport}
}

// ---------------------------------------------------------------------------
// Rate limiting
// ---------------------------------------------------------------------------

// limited paces calls to a client.
type limited struct {
	Client
	lim *rate.Limiter
}

// WithRateLimit wraps c so that it issues at most perSecond requests per
// second. A non-positive rate returns c unchanged.
func WithRateLimit(c Client, perSecond float64) Client {
	if perSecond <= 0 {
		return c
	}
	return &limited{Client: c, lim: rate.NewLimiter(rate.Limit(perSecond), 1)}
}

func (l *limited) Translate(ctx context.Context, req Request) (string, error) {
	if err := l.lim.Wait(ctx); err != nil {
		return "", &TransportError{Provider: l.ID(), Err: err}
	}
	return l.Client.Translate(ctx, req)
}

// truncate shortens s for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
