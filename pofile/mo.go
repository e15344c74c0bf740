package pofile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leonelquinteros/gotext"
)

const moMagic = 0x950412de

type moMessage struct {
	key   string
	value string
}

// moMessages returns the header and every translated live entry keyed the
// way gettext looks them up, sorted by key.
func (f *File) moMessages() []moMessage {
	var msgs []moMessage
	if f.Header != nil && f.Header.MsgStr != "" {
		msgs = append(msgs, moMessage{key: "", value: f.Header.MsgStr})
	}
	for _, e := range f.Entries {
		if e.Obsolete || !e.IsTranslated() {
			continue
		}
		key := e.MsgID
		if e.MsgCtxt != "" {
			key = e.MsgCtxt + gotext.EotSeparator + e.MsgID
		}
		value := e.MsgStr
		if e.MsgIDPlural != "" {
			key += "\x00" + e.MsgIDPlural
			forms := make([]int, 0, len(e.MsgStrPlural))
			for n := range e.MsgStrPlural {
				forms = append(forms, n)
			}
			sort.Ints(forms)
			parts := make([]string, len(forms))
			for i, n := range forms {
				parts[i] = e.MsgStrPlural[n]
			}
			value = strings.Join(parts, "\x00")
		}
		msgs = append(msgs, moMessage{key: key, value: value})
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].key < msgs[j].key })
	return msgs
}

// WriteMO compiles the catalog into the GNU MO binary format
// (little-endian, no hash table). Untranslated and fuzzy entries are left
// out, as msgfmt does.
func (f *File) WriteMO(w io.Writer) error {
	msgs := f.moMessages()
	n := uint32(len(msgs))

	const headerSize = 7 * 4
	origTable := uint32(headerSize)
	transTable := origTable + 8*n
	data := transTable + 8*n

	var buf bytes.Buffer
	le := binary.LittleEndian
	for _, v := range []uint32{moMagic, 0, n, origTable, transTable, 0, data} {
		binary.Write(&buf, le, v)
	}

	offset := data
	var strs bytes.Buffer
	table := func(s string) {
		binary.Write(&buf, le, uint32(len(s)))
		binary.Write(&buf, le, offset)
		strs.WriteString(s)
		strs.WriteByte(0)
		offset += uint32(len(s)) + 1
	}
	for _, m := range msgs {
		table(m.key)
	}
	for _, m := range msgs {
		table(m.value)
	}
	buf.Write(strs.Bytes())

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteMOFile compiles the catalog to path.
func (f *File) WriteMOFile(path string) error {
	var buf bytes.Buffer
	if err := f.WriteMO(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// VerifyMO loads compiled data with the gettext runtime and checks that
// the first translated singular entry of f resolves to its translation.
func (f *File) VerifyMO(data []byte) error {
	mo := gotext.NewMo()
	mo.Parse(data)

	for _, e := range f.Entries {
		if e.Obsolete || e.MsgIDPlural != "" || !e.IsTranslated() {
			continue
		}
		var got string
		if e.MsgCtxt != "" {
			got = mo.GetC(e.MsgID, e.MsgCtxt)
		} else {
			got = mo.Get(e.MsgID)
		}
		if got != e.MsgStr {
			return fmt.Errorf("compiled catalog returns %q for %q, want %q", got, e.MsgID, e.MsgStr)
		}
		return nil
	}
	return nil
}
