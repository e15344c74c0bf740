// Package pofile reads and writes gettext catalogs: PO and POT files in the
// GNU text format and compiled MO files.
package pofile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Entry is a single message of a catalog.
type Entry struct {
	// TranslatorComments are "# " lines.
	TranslatorComments []string
	// ExtractedComments are "#." lines.
	ExtractedComments []string
	// References are the "#:" source locations, one "path:line" per item.
	References []string
	// Flags are the "#," flags such as fuzzy or php-format.
	Flags []string

	MsgCtxt     string
	MsgID       string
	MsgIDPlural string
	MsgStr      string
	// MsgStrPlural holds msgstr[N] forms by index.
	MsgStrPlural map[int]string

	// Obsolete marks "#~" entries.
	Obsolete bool
}

// IsTranslated reports whether every form of the entry has a translation.
func (e *Entry) IsTranslated() bool {
	if e.MsgID == "" || e.HasFlag("fuzzy") {
		return false
	}
	if e.MsgIDPlural == "" {
		return e.MsgStr != ""
	}
	if len(e.MsgStrPlural) == 0 {
		return false
	}
	for _, s := range e.MsgStrPlural {
		if s == "" {
			return false
		}
	}
	return true
}

// HasFlag checks if a specific flag is present.
func (e *Entry) HasFlag(flag string) bool {
	for _, f := range e.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// File is a parsed PO or POT file.
type File struct {
	// Header is the metadata entry (msgid "").
	Header *Entry
	// Entries are the messages in file order.
	Entries []*Entry
}

// NewFile creates an empty catalog with a blank header.
func NewFile() *File {
	return &File{Header: &Entry{}}
}

// HeaderField returns a header field value by name (case-insensitive).
func (f *File) HeaderField(name string) string {
	if f.Header == nil {
		return ""
	}
	for _, line := range strings.Split(f.Header.MsgStr, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// SetHeaderField replaces a header field or appends it when missing.
func (f *File) SetHeaderField(name, value string) {
	if f.Header == nil {
		f.Header = &Entry{}
	}
	lines := strings.Split(strings.TrimSuffix(f.Header.MsgStr, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		lines = nil
	}
	replaced := false
	for i, line := range lines {
		key, _, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), name) {
			lines[i] = name + ": " + value
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, name+": "+value)
	}
	f.Header.MsgStr = strings.Join(lines, "\n") + "\n"
}

// Find returns the live entry with the given context and msgid, or nil.
func (f *File) Find(msgctxt, msgid string) *Entry {
	for _, e := range f.Entries {
		if !e.Obsolete && e.MsgCtxt == msgctxt && e.MsgID == msgid {
			return e
		}
	}
	return nil
}

// Lookup is Find restricted to entries with the given msgid_plural, so a
// singular and a plural entry sharing a msgid are told apart.
func (f *File) Lookup(msgctxt, msgid, plural string) *Entry {
	for _, e := range f.Entries {
		if !e.Obsolete && e.MsgCtxt == msgctxt && e.MsgID == msgid && e.MsgIDPlural == plural {
			return e
		}
	}
	return nil
}

// Stats counts live entries and how many of them are translated.
func (f *File) Stats() (total, translated int) {
	for _, e := range f.Entries {
		if e.MsgID == "" || e.Obsolete {
			continue
		}
		total++
		if e.IsTranslated() {
			translated++
		}
	}
	return total, translated
}

// field identifies the keyword a continuation line belongs to.
type field int

const (
	fieldNone field = iota
	fieldCtxt
	fieldID
	fieldIDPlural
	fieldStr
	fieldStrN
)

// parser accumulates entries line by line.
type parser struct {
	file    *File
	cur     *Entry
	last    field
	pluralN int
}

func (p *parser) entry() *Entry {
	if p.cur == nil {
		p.cur = &Entry{}
	}
	return p.cur
}

func (p *parser) flush() {
	if p.cur == nil {
		return
	}
	if p.cur.MsgID == "" && p.cur.MsgCtxt == "" && !p.cur.Obsolete {
		p.file.Header = p.cur
	} else {
		p.file.Entries = append(p.file.Entries, p.cur)
	}
	p.cur = nil
	p.last = fieldNone
}

func (p *parser) comment(line string) {
	e := p.entry()
	switch {
	case strings.HasPrefix(line, "#:"):
		e.References = append(e.References, strings.Fields(line[2:])...)
	case strings.HasPrefix(line, "#,"):
		for _, flag := range strings.Split(line[2:], ",") {
			if flag = strings.TrimSpace(flag); flag != "" {
				e.Flags = append(e.Flags, flag)
			}
		}
	case strings.HasPrefix(line, "#."):
		e.ExtractedComments = append(e.ExtractedComments, strings.TrimSpace(line[2:]))
	case strings.HasPrefix(line, "#|"):
		// Previous-msgid lines are not kept.
	default:
		e.TranslatorComments = append(e.TranslatorComments, strings.TrimPrefix(line[1:], " "))
	}
}

func (p *parser) keyword(line string, lineNum int) error {
	e := p.entry()
	kw, rest, _ := strings.Cut(line, " ")
	value := unquote(rest)

	switch {
	case kw == "msgctxt":
		e.MsgCtxt, p.last = value, fieldCtxt
	case kw == "msgid":
		e.MsgID, p.last = value, fieldID
	case kw == "msgid_plural":
		e.MsgIDPlural, p.last = value, fieldIDPlural
	case kw == "msgstr":
		e.MsgStr, p.last = value, fieldStr
	case strings.HasPrefix(kw, "msgstr[") && strings.HasSuffix(kw, "]"):
		n, err := strconv.Atoi(kw[len("msgstr[") : len(kw)-1])
		if err != nil || n < 0 {
			return fmt.Errorf("line %d: invalid msgstr index: %s", lineNum, line)
		}
		if e.MsgStrPlural == nil {
			e.MsgStrPlural = make(map[int]string)
		}
		e.MsgStrPlural[n] = value
		p.last, p.pluralN = fieldStrN, n
	default:
		return fmt.Errorf("line %d: unknown keyword %q", lineNum, kw)
	}
	return nil
}

func (p *parser) continuation(line string) {
	if p.cur == nil {
		return
	}
	value := unquote(line)
	switch p.last {
	case fieldCtxt:
		p.cur.MsgCtxt += value
	case fieldID:
		p.cur.MsgID += value
	case fieldIDPlural:
		p.cur.MsgIDPlural += value
	case fieldStr:
		p.cur.MsgStr += value
	case fieldStrN:
		p.cur.MsgStrPlural[p.pluralN] += value
	}
}

// Parse reads a PO/POT file from a reader.
func Parse(r io.Reader) (*File, error) {
	p := &parser{file: NewFile()}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			p.flush()
			continue
		}
		if strings.HasPrefix(line, "#~") {
			p.entry().Obsolete = true
			line = strings.TrimSpace(line[2:])
			if line == "" {
				continue
			}
		}

		var err error
		switch {
		case strings.HasPrefix(line, "#"):
			p.comment(line)
		case strings.HasPrefix(line, `"`):
			p.continuation(line)
		default:
			err = p.keyword(line, lineNum)
		}
		if err != nil {
			return nil, err
		}
	}
	p.flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PO file: %w", err)
	}
	return p.file, nil
}

// ParseFile reads a PO/POT file from disk.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// referenceWidth is where "#:" lines wrap, matching msgcat's default.
const referenceWidth = 79

// Write writes the catalog in PO text format.
func (f *File) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	entries := f.Entries
	if f.Header != nil {
		entries = append([]*Entry{f.Header}, entries...)
	}
	for i, e := range entries {
		if i > 0 {
			bw.WriteString("\n")
		}
		writeEntry(bw, e)
	}
	return bw.Flush()
}

// WriteFile writes the catalog to path, creating parent directories.
func (f *File) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func writeEntry(w *bufio.Writer, e *Entry) {
	prefix := ""
	if e.Obsolete {
		prefix = "#~ "
	}
	for _, c := range e.TranslatorComments {
		if c == "" {
			w.WriteString("#\n")
		} else {
			fmt.Fprintf(w, "# %s\n", c)
		}
	}
	for _, c := range e.ExtractedComments {
		fmt.Fprintf(w, "#. %s\n", c)
	}
	writeReferences(w, e.References)
	if len(e.Flags) > 0 {
		fmt.Fprintf(w, "#, %s\n", strings.Join(e.Flags, ", "))
	}

	if e.MsgCtxt != "" {
		writeField(w, prefix+"msgctxt", e.MsgCtxt)
	}
	writeField(w, prefix+"msgid", e.MsgID)
	if e.MsgIDPlural == "" {
		writeField(w, prefix+"msgstr", e.MsgStr)
		return
	}
	writeField(w, prefix+"msgid_plural", e.MsgIDPlural)
	if len(e.MsgStrPlural) == 0 {
		writeField(w, prefix+"msgstr[0]", "")
		writeField(w, prefix+"msgstr[1]", "")
		return
	}
	indices := make([]int, 0, len(e.MsgStrPlural))
	for n := range e.MsgStrPlural {
		indices = append(indices, n)
	}
	sort.Ints(indices)
	for _, n := range indices {
		writeField(w, fmt.Sprintf("%smsgstr[%d]", prefix, n), e.MsgStrPlural[n])
	}
}

// writeReferences packs references onto "#:" lines no wider than
// referenceWidth; a single long reference still gets its own line.
func writeReferences(w *bufio.Writer, refs []string) {
	line := ""
	for _, ref := range refs {
		if line != "" && len(line)+1+len(ref) > referenceWidth {
			w.WriteString(line + "\n")
			line = ""
		}
		if line == "" {
			line = "#: " + ref
		} else {
			line += " " + ref
		}
	}
	if line != "" {
		w.WriteString(line + "\n")
	}
}

// writeField writes a keyword and its quoted value, splitting values that
// contain newlines into one continuation line per source line.
func writeField(w *bufio.Writer, keyword, value string) {
	if !strings.Contains(value, "\n") || value == "\n" {
		fmt.Fprintf(w, "%s %s\n", keyword, quote(value))
		return
	}
	fmt.Fprintf(w, "%s \"\"\n", keyword)
	for _, part := range strings.SplitAfter(value, "\n") {
		if part != "" {
			fmt.Fprintf(w, "%s\n", quote(part))
		}
	}
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\r", `\r`,
)

// quote produces a PO-style quoted string.
func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

// unquote removes PO-style quoting from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"':
			b.WriteByte(s[i])
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
