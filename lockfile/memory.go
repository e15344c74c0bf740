package lockfile

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/minios-linux/potkit/catalog"
	"github.com/minios-linux/potkit/pofile"
	"github.com/minios-linux/potkit/translate"
)

// Memory reuses translations from the catalogs of an earlier run. An entry
// is recalled only when its source hash is unchanged and a real provider
// resolved it; mirrored and skipped entries go through the chain again.
type Memory struct {
	Lock      *LockFile
	OutputDir string
	BaseName  string
	Logger    zerolog.Logger

	existing map[string]*pofile.File
}

// NewMemory returns a Memory backed by lf and the catalogs in dir.
func NewMemory(lf *LockFile, dir, base string, log zerolog.Logger) *Memory {
	return &Memory{Lock: lf, OutputDir: dir, BaseName: base, Logger: log}
}

// previous loads the locale's catalog once, before it is overwritten.
func (m *Memory) previous(t translate.Target) *pofile.File {
	loc := t.OutputLocale()
	if f, ok := m.existing[loc]; ok {
		return f
	}
	if m.existing == nil {
		m.existing = make(map[string]*pofile.File)
	}
	poPath, _ := translate.OutputPaths(m.OutputDir, m.BaseName, t)
	f, err := pofile.ParseFile(poPath)
	if err != nil {
		if !os.IsNotExist(err) {
			m.Logger.Warn().Err(err).Str("po", poPath).Msg("ignoring unreadable catalog")
		}
		f = nil
	}
	m.existing[loc] = f
	return f
}

// Recall implements translate.Memory.
func (m *Memory) Recall(t translate.Target, e *catalog.Entry) (translate.Result, bool) {
	loc, key := t.OutputLocale(), EntryKey(e.Context, e.MsgID, e.Plural)
	if m.Lock.IsChanged(loc, key, EntryContent(e.MsgID, e.Plural)) {
		return translate.Result{}, false
	}
	if rec, _ := m.Lock.Get(loc, key); !reusable(rec.By) {
		return translate.Result{}, false
	}
	f := m.previous(t)
	if f == nil {
		return translate.Result{}, false
	}
	pe := f.Lookup(e.Context, e.MsgID, e.Plural)
	if pe == nil || !pe.IsTranslated() {
		return translate.Result{}, false
	}

	r := translate.Result{Entry: e, Locale: t, ResolvedBy: translate.ResolvedCached}
	if e.Plural == "" {
		r.Text = pe.MsgStr
	} else {
		r.Text = pe.MsgStrPlural[0]
		r.PluralText = pe.MsgStrPlural[1]
	}
	return r, true
}

// Commit implements translate.Memory. Recalled entries keep the provider
// recorded when they were first translated.
func (m *Memory) Commit(r *translate.LocaleReport) {
	loc := r.Locale.OutputLocale()
	keys := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		key := EntryKey(res.Entry.Context, res.Entry.MsgID, res.Entry.Plural)
		keys = append(keys, key)
		if res.ResolvedBy == translate.ResolvedCached {
			continue
		}
		m.Lock.Update(loc, key, EntryContent(res.Entry.MsgID, res.Entry.Plural), res.ResolvedBy)
	}
	n := m.Lock.Clean(loc, keys)
	m.Logger.Debug().Str("locale", loc).Int("stale", n).
		Interface("resolved_by", m.Lock.Counts(loc)).Msg("lock updated")
}

func reusable(by string) bool {
	switch by {
	case "", translate.ResolvedMirror, translate.ResolvedSkip, translate.ResolvedCached:
		return false
	}
	return true
}
