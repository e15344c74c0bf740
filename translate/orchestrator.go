package translate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/minios-linux/potkit/catalog"
	"github.com/minios-linux/potkit/pofile"
	"github.com/minios-linux/potkit/provider"
)

var (
	// ErrEmptyCatalog is returned when there is nothing to translate.
	ErrEmptyCatalog = errors.New("source catalog is empty")
	// ErrNoLocales is returned when no target locale is selected.
	ErrNoLocales = errors.New("no target locales selected")
)

// Target is a locale to translate into.
type Target struct {
	// Code is the generic locale code (pt-BR, de).
	Code string
	// Name is the display name.
	Name string
	// FileLocale names the output files; defaults to Code.
	FileLocale string
}

// OutputLocale is the locale used in file names and the PO header.
func (t Target) OutputLocale() string {
	if t.FileLocale != "" {
		return t.FileLocale
	}
	return t.Code
}

// Result is the translation of one catalog entry into one locale.
type Result struct {
	Entry  *catalog.Entry
	Locale Target
	Text   string
	// PluralText is the translated plural form, empty for singular entries.
	PluralText string
	ResolvedBy string
}

// Tally counts results by ResolvedBy.
type Tally map[string]int

// Total is the number of results counted.
func (t Tally) Total() int {
	n := 0
	for _, v := range t {
		n += v
	}
	return n
}

// Memory supplies earlier translations of entries whose source did not
// change, and learns from every written locale.
type Memory interface {
	Recall(t Target, e *catalog.Entry) (Result, bool)
	Commit(r *LocaleReport)
}

// LocaleReport is everything produced for one locale.
type LocaleReport struct {
	Locale  Target
	Results []Result
	Tally   Tally
	// POPath and MOPath are empty when the orchestrator has no OutputDir.
	POPath string
	MOPath string
}

// Orchestrator translates a catalog into a set of locales, one locale at a
// time and one entry at a time.
type Orchestrator struct {
	Chain *Chain
	// Header is the template header copied into every translated catalog.
	Header *pofile.Entry
	// OutputDir receives <BaseName>-<locale>.po and .mo; empty writes nothing.
	OutputDir string
	BaseName  string
	Logger    zerolog.Logger
	// Now stamps PO-Revision-Date; defaults to time.Now.
	Now func() time.Time
	// OnProgress is called after each entry.
	OnProgress func(t Target, done, total int)
	// OnLocale is called as soon as a locale has been written.
	OnLocale func(r *LocaleReport)
	// Memory, if set, is consulted before the chain for every entry.
	Memory Memory
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// Check validates the fatal preconditions before any provider is called.
func (o *Orchestrator) Check(cat *catalog.Catalog, targets []Target) error {
	if cat == nil || cat.Len() == 0 {
		return ErrEmptyCatalog
	}
	if len(targets) == 0 {
		return ErrNoLocales
	}
	if o.Chain == nil || !o.Chain.Available() {
		return provider.ErrNoProvider
	}
	return nil
}

// Run translates cat into every target in order. Each locale's files are
// written when the locale completes, so an interrupted run keeps the
// locales finished before it.
func (o *Orchestrator) Run(ctx context.Context, cat *catalog.Catalog, targets []Target) ([]*LocaleReport, error) {
	if err := o.Check(cat, targets); err != nil {
		return nil, err
	}
	var reports []*LocaleReport
	for _, t := range targets {
		select {
		case <-ctx.Done():
			return reports, ctx.Err()
		default:
		}
		r, err := o.TranslateLocale(ctx, cat, t)
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
		if o.OnLocale != nil {
			o.OnLocale(r)
		}
	}
	return reports, nil
}

// TranslateLocale resolves every entry of cat, in sorted order, for t and
// writes the locale's catalogs.
func (o *Orchestrator) TranslateLocale(ctx context.Context, cat *catalog.Catalog, t Target) (*LocaleReport, error) {
	entries := cat.Sorted()
	report := &LocaleReport{Locale: t, Tally: Tally{}}
	log := o.Logger.With().Str("locale", t.Code).Logger()
	log.Info().Int("entries", len(entries)).Msg("translating")

	for i, e := range entries {
		r, err := o.resolve(ctx, t, e)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, r)
		report.Tally[r.ResolvedBy]++
		if o.OnProgress != nil {
			o.OnProgress(t, i+1, len(entries))
		}
	}

	if o.OutputDir != "" {
		if err := o.write(report); err != nil {
			return nil, err
		}
	}
	if o.Memory != nil {
		o.Memory.Commit(report)
	}
	return report, nil
}

func (o *Orchestrator) resolve(ctx context.Context, t Target, e *catalog.Entry) (Result, error) {
	if o.Memory != nil {
		if r, ok := o.Memory.Recall(t, e); ok {
			return r, nil
		}
	}
	res, err := o.Chain.Translate(ctx, e.MsgID, t.Code)
	if err != nil {
		return Result{}, fmt.Errorf("translating %s: %w", t.Code, err)
	}
	r := Result{Entry: e, Locale: t, Text: res.Text, ResolvedBy: res.ResolvedBy}
	if e.Plural != "" && res.ResolvedBy != ResolvedSkip {
		pres, err := o.Chain.Translate(ctx, e.Plural, t.Code)
		if err != nil {
			return Result{}, fmt.Errorf("translating %s: %w", t.Code, err)
		}
		r.PluralText = pres.Text
	}
	return r, nil
}

// BuildPO assembles the translated catalog of one locale. Plural entries
// get msgstr[0] from the singular translation and every other form from the
// plural translation. Skipped entries stay untranslated.
func BuildPO(header *pofile.Entry, t Target, results []Result, now time.Time) *pofile.File {
	f := &pofile.File{Header: pofile.ForLanguage(header, t.OutputLocale(), now)}
	nplurals := pofile.NPlurals(f.HeaderField("Plural-Forms"))

	for _, r := range results {
		pe := &pofile.Entry{
			MsgCtxt:     r.Entry.Context,
			MsgID:       r.Entry.MsgID,
			MsgIDPlural: r.Entry.Plural,
		}
		for _, occ := range r.Entry.Occurrences {
			pe.References = append(pe.References, occ.String())
		}
		if r.ResolvedBy != ResolvedSkip {
			if pe.MsgIDPlural == "" {
				pe.MsgStr = r.Text
			} else {
				plural := r.PluralText
				if plural == "" {
					plural = r.Text
				}
				pe.MsgStrPlural = map[int]string{0: r.Text}
				for n := 1; n < nplurals; n++ {
					pe.MsgStrPlural[n] = plural
				}
			}
		}
		f.Entries = append(f.Entries, pe)
	}
	return f
}

// OutputPaths returns the PO and MO paths for a locale.
func OutputPaths(dir, base string, t Target) (po, mo string) {
	name := base + "-" + t.OutputLocale()
	return filepath.Join(dir, name+".po"), filepath.Join(dir, name+".mo")
}

func (o *Orchestrator) write(r *LocaleReport) error {
	f := BuildPO(o.Header, r.Locale, r.Results, o.now())
	poPath, moPath := OutputPaths(o.OutputDir, o.BaseName, r.Locale)

	if err := f.WriteFile(poPath); err != nil {
		return fmt.Errorf("writing %s: %w", poPath, err)
	}
	if err := f.WriteMOFile(moPath); err != nil {
		return fmt.Errorf("writing %s: %w", moPath, err)
	}
	data, err := os.ReadFile(moPath)
	if err != nil {
		return err
	}
	if err := f.VerifyMO(data); err != nil {
		return fmt.Errorf("verifying %s: %w", moPath, err)
	}
	r.POPath, r.MOPath = poPath, moPath
	o.Logger.Info().Str("po", poPath).Str("mo", moPath).Msg("wrote catalogs")
	return nil
}

// FormatTally renders a tally as "google=3, mirror=1" in the given order
// followed by any other keys alphabetically.
func FormatTally(t Tally, order []string) string {
	seen := make(map[string]bool)
	var parts []string
	for _, k := range order {
		seen[k] = true
		parts = append(parts, fmt.Sprintf("%s=%d", k, t[k]))
	}
	var rest []string
	for k := range t {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		parts = append(parts, fmt.Sprintf("%s=%d", k, t[k]))
	}
	return strings.Join(parts, ", ")
}
