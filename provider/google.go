package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/bregydoc/gtranslate"
	"golang.org/x/text/language"
)

// googleClient calls the public Google Translate web endpoint through
// gtranslate.
type googleClient struct {
	// translate performs the blocking call; replaced in tests.
	translate func(text, from, to string) (string, error)
}

// NewGoogle returns the Google Translate client.
func NewGoogle() Client {
	return &googleClient{translate: gtranslateCall}
}

func gtranslateCall(text, from, to string) (string, error) {
	return gtranslate.TranslateWithParams(text, gtranslate.TranslationParams{
		From: from,
		To:   to,
	})
}

func (g *googleClient) ID() string { return Google }

func (g *googleClient) Translate(ctx context.Context, req Request) (string, error) {
	if _, err := language.Parse(req.Target); err != nil {
		return "", fmt.Errorf("%s: %q: %w", Google, req.Target, ErrRejectedLocale)
	}

	type result struct {
		text string
		err  error
	}
	// gtranslate takes no context. On timeout the goroutine keeps running
	// until the HTTP call returns on its own; the buffered channel lets it
	// exit without a reader.
	done := make(chan result, 1)
	go func() {
		text, err := g.translate(req.Text, req.Source, req.Target)
		done <- result{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", &TransportError{Provider: Google, Err: ctx.Err()}
	case r := <-done:
		if r.err != nil {
			// gtranslate returns plain errors with no type to match, so the
			// unsupported-language case is recognized by its text here and
			// leaves this adapter only as ErrRejectedLocale.
			if strings.Contains(strings.ToLower(r.err.Error()), "language") {
				return "", fmt.Errorf("%s: %v: %w", Google, r.err, ErrRejectedLocale)
			}
			return "", &TransportError{Provider: Google, Err: r.err}
		}
		text := strings.TrimSpace(r.text)
		if text == "" {
			return "", fmt.Errorf("%s: %w", Google, ErrEmptyTranslation)
		}
		return text, nil
	}
}
