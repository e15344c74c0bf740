package translate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leonelquinteros/gotext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/potkit/catalog"
	"github.com/minios-linux/potkit/pofile"
	"github.com/minios-linux/potkit/provider"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func sampleCatalog() *catalog.Catalog {
	c := catalog.New()
	c.Add(catalog.Key{MsgID: "Save"}, catalog.Occurrence{Locator: "inc/a.php", Line: 3})
	c.Add(catalog.Key{MsgID: "apply"}, catalog.Occurrence{Locator: "inc/a.php", Line: 9})
	c.Add(catalog.Key{MsgID: "Save"}, catalog.Occurrence{Locator: "inc/b.php", Line: 1})
	c.Add(catalog.Key{MsgID: "Post", Context: "verb"}, catalog.Occurrence{Locator: "inc/b.php", Line: 7})
	c.Add(catalog.Key{MsgID: "%d file", Plural: "%d files"}, catalog.Occurrence{Locator: "inc/c.php", Line: 2})
	return c
}

// upperDE translates into German "by" upper-casing, and fails for "Post".
func upperDE() *fakeClient {
	return &fakeClient{id: "fake", fn: func(req provider.Request) (string, error) {
		if req.Text == "Post" {
			return "", provider.ErrEmptyTranslation
		}
		return "DE:" + req.Text, nil
	}}
}

func TestCheckFatalConditions(t *testing.T) {
	o := &Orchestrator{Chain: &Chain{Providers: capsOf(upperDE())}}

	assert.ErrorIs(t, o.Check(catalog.New(), []Target{{Code: "de"}}), ErrEmptyCatalog)
	assert.ErrorIs(t, o.Check(sampleCatalog(), nil), ErrNoLocales)

	o.Chain = &Chain{Providers: []provider.Capability{{ID: "x", Reason: "off"}}}
	_, err := o.Run(context.Background(), sampleCatalog(), []Target{{Code: "de"}})
	assert.ErrorIs(t, err, provider.ErrNoProvider)
}

func TestRunTalliesAndWritesEachLocale(t *testing.T) {
	dir := t.TempDir()
	client := upperDE()
	var written []string
	o := &Orchestrator{
		Chain:     &Chain{Providers: capsOf(client), Sleep: (&recordSleep{}).sleep},
		Header:    pofile.MakeHeader("Demo", fixedNow),
		OutputDir: dir,
		BaseName:  "demo",
		Now:       func() time.Time { return fixedNow },
		OnLocale:  func(r *LocaleReport) { written = append(written, r.Locale.Code) },
	}

	targets := []Target{{Code: "de", Name: "German"}, {Code: "pt-BR", Name: "Portuguese", FileLocale: "pt_BR"}}
	reports, err := o.Run(context.Background(), sampleCatalog(), targets)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, []string{"de", "pt-BR"}, written)

	de := reports[0]
	// the two Save calls share one entry; Post falls back to the mirror
	assert.Equal(t, Tally{"fake": 3, ResolvedMirror: 1}, de.Tally)
	assert.Equal(t, 4, de.Tally.Total())

	// sorted order: %d file, apply, Post, Save
	var ids []string
	for _, r := range de.Results {
		ids = append(ids, r.Entry.MsgID)
	}
	assert.Equal(t, []string{"%d file", "apply", "Post", "Save"}, ids)
	assert.Equal(t, "DE:%d files", de.Results[0].PluralText)
	assert.Equal(t, "Post (de)", de.Results[2].Text)

	assert.Equal(t, filepath.Join(dir, "demo-de.po"), de.POPath)
	assert.FileExists(t, de.MOPath)
	assert.FileExists(t, filepath.Join(dir, "demo-pt_BR.po"))
	assert.FileExists(t, filepath.Join(dir, "demo-pt_BR.mo"))

	data, err := os.ReadFile(de.MOPath)
	require.NoError(t, err)
	mo := gotext.NewMo()
	mo.Parse(data)
	assert.Equal(t, "DE:Save", mo.Get("Save"))
	assert.Equal(t, "Post (de)", mo.GetC("Post", "verb"))
	assert.Equal(t, "DE:%d files", mo.GetN("%d file", "%d files", 3))
}

func TestTranslatedCatalogRoundTrip(t *testing.T) {
	dir := t.TempDir()
	o := &Orchestrator{
		Chain:     &Chain{Providers: capsOf(upperDE()), Sleep: (&recordSleep{}).sleep},
		Header:    pofile.MakeHeader("Demo", fixedNow),
		OutputDir: dir,
		BaseName:  "demo",
		Now:       func() time.Time { return fixedNow },
	}
	cat := sampleCatalog()
	report, err := o.TranslateLocale(context.Background(), cat, Target{Code: "ru"})
	require.NoError(t, err)

	parsed, err := pofile.ParseFile(report.POPath)
	require.NoError(t, err)
	assert.Equal(t, "ru", parsed.HeaderField("Language"))
	assert.Equal(t, pofile.PluralFormsForLang("ru"), parsed.HeaderField("Plural-Forms"))

	back, err := catalog.FromPO(parsed)
	require.NoError(t, err)
	require.Equal(t, len(report.Results), back.Len())

	for _, r := range report.Results {
		e := back.Lookup(r.Entry.Key)
		require.NotNil(t, e, "missing %v", r.Entry.Key)
		assert.Equal(t, r.Entry.Occurrences, e.Occurrences)

		pe := parsed.Find(r.Entry.Context, r.Entry.MsgID)
		require.NotNil(t, pe)
		if r.Entry.Plural == "" {
			assert.Equal(t, r.Text, pe.MsgStr)
			continue
		}
		// ru has three forms
		assert.Equal(t, map[int]string{0: r.Text, 1: r.PluralText, 2: r.PluralText}, pe.MsgStrPlural)
	}
}

func TestBuildPOSkipLeavesEntryUntranslated(t *testing.T) {
	e := &catalog.Entry{Key: catalog.Key{MsgID: " "}, Occurrences: []catalog.Occurrence{{Locator: "a.php", Line: 1}}}
	f := BuildPO(pofile.MakeHeader("Demo", fixedNow), Target{Code: "de"}, []Result{{Entry: e, ResolvedBy: ResolvedSkip}}, fixedNow)
	require.Len(t, f.Entries, 1)
	assert.Equal(t, "", f.Entries[0].MsgStr)
	assert.Equal(t, []string{"a.php:1"}, f.Entries[0].References)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	o := &Orchestrator{Chain: &Chain{Providers: capsOf(upperDE())}}
	reports, err := o.Run(ctx, sampleCatalog(), []Target{{Code: "de"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
}

func TestFormatTally(t *testing.T) {
	got := FormatTally(Tally{"google": 3, "mirror": 1, "zzz": 2, "aaa": 1}, []string{"google", "libre", "mirror"})
	assert.Equal(t, "google=3, libre=0, mirror=1, aaa=1, zzz=2", got)
}

// fixedMemory recalls every singular entry and records commits.
type fixedMemory struct {
	committed []*LocaleReport
}

func (m *fixedMemory) Recall(t Target, e *catalog.Entry) (Result, bool) {
	if e.Plural != "" {
		return Result{}, false
	}
	return Result{Entry: e, Locale: t, Text: "mem:" + e.MsgID, ResolvedBy: ResolvedCached}, true
}

func (m *fixedMemory) Commit(r *LocaleReport) { m.committed = append(m.committed, r) }

func TestMemoryRecalledBeforeChain(t *testing.T) {
	client := upperDE()
	mem := &fixedMemory{}
	o := &Orchestrator{
		Chain:  &Chain{Providers: capsOf(client), Sleep: (&recordSleep{}).sleep},
		Memory: mem,
	}
	report, err := o.TranslateLocale(context.Background(), sampleCatalog(), Target{Code: "de"})
	require.NoError(t, err)

	assert.Equal(t, Tally{ResolvedCached: 3, "fake": 1}, report.Tally)
	// only the plural entry reached the provider, once per form
	require.Len(t, client.calls, 2)
	assert.Equal(t, "%d file", client.calls[0].Text)
	assert.Equal(t, "mem:Post", report.Results[2].Text)
	require.Len(t, mem.committed, 1)
	assert.Same(t, report, mem.committed[0])
}
