// Package catalog holds the deduplicated set of translatable messages found
// in a project, with every source location each one was seen at.
package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/minios-linux/potkit/pofile"
)

// Key identifies a message. Two call sites with the same key are one entry.
type Key struct {
	Context string
	MsgID   string
	Plural  string
}

// Occurrence is a source location of a message.
type Occurrence struct {
	Locator string
	Line    int
}

func (o Occurrence) String() string {
	return o.Locator + ":" + strconv.Itoa(o.Line)
}

// Entry is a catalog message and its occurrences in first-seen order.
type Entry struct {
	Key
	Occurrences []Occurrence
}

// Catalog is an insertion-ordered map of entries.
type Catalog struct {
	index   map[Key]*Entry
	entries []*Entry
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{index: make(map[Key]*Entry)}
}

// Add records an occurrence of key. A new key appends an entry; a known key
// gets the occurrence appended to its list. Keys with an empty MsgID are
// rejected and Add reports false.
func (c *Catalog) Add(key Key, occ Occurrence) bool {
	if key.MsgID == "" {
		return false
	}
	if e, ok := c.index[key]; ok {
		e.Occurrences = append(e.Occurrences, occ)
		return true
	}
	e := &Entry{Key: key, Occurrences: []Occurrence{occ}}
	c.index[key] = e
	c.entries = append(c.entries, e)
	return true
}

// Len is the number of unique entries.
func (c *Catalog) Len() int { return len(c.entries) }

// Lookup returns the entry for key, or nil.
func (c *Catalog) Lookup(key Key) *Entry { return c.index[key] }

// Entries returns the entries in insertion order.
func (c *Catalog) Entries() []*Entry {
	return append([]*Entry(nil), c.entries...)
}

// Sorted returns the entries ordered by MsgID, case-insensitively. Ties keep
// insertion order.
func (c *Catalog) Sorted() []*Entry {
	out := c.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].MsgID) < strings.ToLower(out[j].MsgID)
	})
	return out
}

// OccurrenceCount is the total number of call sites across all entries.
func (c *Catalog) OccurrenceCount() int {
	n := 0
	for _, e := range c.entries {
		n += len(e.Occurrences)
	}
	return n
}

// Duplicate is a msgid that appears under more than one key, that is with
// different contexts or plurals. Count is the number of keys.
type Duplicate struct {
	MsgID string
	Count int
}

// Duplicates reports every msgid carried by more than one entry, most keys
// first, then alphabetically. Repeated calls under one key merge into a
// single entry and do not count.
func (c *Catalog) Duplicates() []Duplicate {
	counts := make(map[string]int)
	for _, e := range c.entries {
		counts[e.MsgID]++
	}
	var out []Duplicate
	for id, n := range counts {
		if n > 1 {
			out = append(out, Duplicate{MsgID: id, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].MsgID < out[j].MsgID
	})
	return out
}

// ToPOT renders the catalog as a template in sorted order under header.
func (c *Catalog) ToPOT(header *pofile.Entry) *pofile.File {
	f := &pofile.File{Header: header}
	for _, e := range c.Sorted() {
		pe := &pofile.Entry{
			MsgCtxt:     e.Context,
			MsgID:       e.MsgID,
			MsgIDPlural: e.Plural,
		}
		for _, o := range e.Occurrences {
			pe.References = append(pe.References, o.String())
		}
		f.Entries = append(f.Entries, pe)
	}
	return f
}

// FromPO rebuilds a catalog from the live entries of a PO or POT file.
func FromPO(f *pofile.File) (*Catalog, error) {
	c := New()
	for _, pe := range f.Entries {
		if pe.Obsolete || pe.MsgID == "" {
			continue
		}
		key := Key{Context: pe.MsgCtxt, MsgID: pe.MsgID, Plural: pe.MsgIDPlural}
		if len(pe.References) == 0 {
			if _, ok := c.index[key]; !ok {
				e := &Entry{Key: key}
				c.index[key] = e
				c.entries = append(c.entries, e)
			}
			continue
		}
		for _, ref := range pe.References {
			occ, err := ParseOccurrence(ref)
			if err != nil {
				return nil, fmt.Errorf("entry %q: %w", pe.MsgID, err)
			}
			c.Add(key, occ)
		}
	}
	return c, nil
}

// ParseOccurrence splits a "locator:line" reference at its last colon. A
// reference without a line number gets line 0.
func ParseOccurrence(ref string) (Occurrence, error) {
	i := strings.LastIndexByte(ref, ':')
	if i < 0 {
		return Occurrence{Locator: ref}, nil
	}
	line, err := strconv.Atoi(ref[i+1:])
	if err != nil {
		return Occurrence{}, fmt.Errorf("invalid reference %q: %w", ref, err)
	}
	return Occurrence{Locator: ref[:i], Line: line}, nil
}
