// Package translate drives the provider chain for every catalog entry and
// target locale and assembles one translated catalog per locale.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/minios-linux/potkit/locale"
	"github.com/minios-linux/potkit/provider"
)

// Resolution values that are not provider IDs.
const (
	ResolvedMirror = "mirror"
	ResolvedSkip   = "skip"
	// ResolvedCached marks a translation reused from an earlier run.
	ResolvedCached = "cached"
)

// Defaults for a Chain with zero-valued settings.
const (
	DefaultMaxRetries = 3
	DefaultTimeout    = 12 * time.Second
)

// DefaultBackoff is the wait after the 1st, 2nd and every later failed
// attempt.
var DefaultBackoff = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

// Attempt records one provider call.
type Attempt struct {
	Provider string
	// Code is the provider-specific locale sent.
	Code string
	// Number is the 1-based attempt against Provider; a recovery attempt
	// carries the number of the attempt it followed.
	Number   int
	Recovery bool
	// Err is nil for the successful attempt.
	Err error
}

// Resolution is the outcome of translating one text into one locale.
type Resolution struct {
	Text       string
	ResolvedBy string
	Attempts   []Attempt
}

// Failed returns the attempts against id that failed, recovery included.
func (r Resolution) Failed(id string) []Attempt {
	var out []Attempt
	for _, a := range r.Attempts {
		if a.Provider == id && a.Err != nil {
			out = append(out, a)
		}
	}
	return out
}

// Liveness starts a cosmetic indicator beside a blocking call. The returned
// stop function must block until the indicator has fully exited.
type Liveness func(title string) (stop func())

// Chain tries providers in order with bounded retries and falls back to a
// mirrored literal when all of them fail.
type Chain struct {
	// Providers is the chain resolved at startup.
	Providers []provider.Capability
	// Normalizer maps generic codes to provider codes.
	Normalizer locale.Normalizer
	// MaxRetries is the number of attempts per provider. Default: 3.
	MaxRetries int
	// Backoff lists the waits between attempts; the last one repeats.
	Backoff []time.Duration
	// Timeout bounds each attempt. Default: 12s.
	Timeout time.Duration
	// Logger receives attempt failures and provider switches.
	Logger zerolog.Logger
	// Liveness, if set, runs beside every provider call.
	Liveness Liveness
	// Sleep waits between attempts; replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (c *Chain) effectiveMaxRetries() int {
	if c.MaxRetries > 0 {
		return c.MaxRetries
	}
	return DefaultMaxRetries
}

func (c *Chain) effectiveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

func (c *Chain) backoff(attempt int) time.Duration {
	b := c.Backoff
	if len(b) == 0 {
		b = DefaultBackoff
	}
	return b[min(attempt-1, len(b)-1)]
}

func (c *Chain) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Available reports whether at least one provider of the chain can run.
func (c *Chain) Available() bool {
	for _, p := range c.Providers {
		if p.Available() {
			return true
		}
	}
	return false
}

// Translate resolves text for the generic locale code. Empty text resolves
// to ("", "skip") without any call. The error is non-nil only when ctx is
// done; the resolution gathered so far is returned with it.
func (c *Chain) Translate(ctx context.Context, text, code string) (Resolution, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Resolution{ResolvedBy: ResolvedSkip}, nil
	}

	var res Resolution
	maxRetries := c.effectiveMaxRetries()
	regional := locale.HasRegion(code)

	for _, p := range c.Providers {
		if !p.Available() {
			c.Logger.Debug().Str("provider", p.ID).Str("reason", p.Reason).Msg("provider unavailable, skipping")
			continue
		}
		target := c.Normalizer.Normalize(code, p.ID)
		recovered := false

		for attempt := 1; attempt <= maxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			title := fmt.Sprintf("Trying %s (attempt %d/%d) -> %s", p.ID, attempt, maxRetries, code)
			out, err := c.call(ctx, p.Client, title, text, target)
			res.Attempts = append(res.Attempts, Attempt{Provider: p.ID, Code: target, Number: attempt, Err: err})
			if err == nil {
				c.Logger.Debug().Str("provider", p.ID).Str("locale", code).Msg("translated")
				res.Text, res.ResolvedBy = out, p.ID
				return res, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			c.Logger.Warn().Err(err).Str("provider", p.ID).Str("code", target).
				Int("attempt", attempt).Int("of", maxRetries).Msg("translation attempt failed")

			if !recovered && regional && recoverable(err) {
				recovered = true
				if out, ok := c.recoverBase(ctx, p, code, target, attempt, text, &res); ok {
					res.Text, res.ResolvedBy = out, p.ID
					return res, nil
				}
			}

			if attempt < maxRetries {
				wait := c.backoff(attempt)
				c.Logger.Debug().Dur("wait", wait).Msg("retrying")
				if err := c.sleep(ctx, wait); err != nil {
					return res, err
				}
			}
		}
		c.Logger.Warn().Str("provider", p.ID).Str("locale", code).Msg("provider exhausted, switching")
	}

	res.Text = text + " (" + code + ")"
	res.ResolvedBy = ResolvedMirror
	return res, nil
}

// recoverable reports whether a failure may be fixed by dropping the region.
func recoverable(err error) bool {
	return errors.Is(err, provider.ErrRejectedLocale) || errors.Is(err, provider.ErrEmptyTranslation)
}

// recoverBase makes the single base-code attempt for a region-qualified
// locale. It is skipped when the base code normalizes to the code that
// just failed.
func (c *Chain) recoverBase(ctx context.Context, p provider.Capability, code, failed string, attempt int, text string, res *Resolution) (string, bool) {
	base := c.Normalizer.Normalize(locale.Base(code), p.ID)
	if base == failed {
		return "", false
	}
	title := fmt.Sprintf("Retrying %s with base code %s", p.ID, base)
	out, err := c.call(ctx, p.Client, title, text, base)
	res.Attempts = append(res.Attempts, Attempt{Provider: p.ID, Code: base, Number: attempt, Recovery: true, Err: err})
	if err != nil {
		c.Logger.Warn().Err(err).Str("provider", p.ID).Str("code", base).Msg("base code recovery failed")
		return "", false
	}
	c.Logger.Info().Str("provider", p.ID).Str("code", base).Msg("recovered with base code")
	return out, true
}

// call runs one attempt under its own timeout with the liveness indicator
// stopped and joined before the outcome is returned.
func (c *Chain) call(ctx context.Context, client provider.Client, title, text, target string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.effectiveTimeout())
	defer cancel()

	stop := func() {}
	if c.Liveness != nil {
		stop = c.Liveness(title)
	}
	out, err := client.Translate(attemptCtx, provider.Request{Text: text, Source: provider.AutoSource, Target: target})
	stop()

	if err == nil && strings.TrimSpace(out) == "" {
		err = fmt.Errorf("%s: %w", client.ID(), provider.ErrEmptyTranslation)
	}
	return out, err
}
