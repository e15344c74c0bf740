package pofile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leonelquinteros/gotext"
)

func sampleTranslated() *File {
	f := &File{Header: ForLanguage(MakeHeader("Demo", time.Unix(0, 0).UTC()), "de", time.Unix(0, 0).UTC())}
	f.Entries = []*Entry{
		{MsgID: "Save", MsgStr: "Speichern", References: []string{"a.php:1"}},
		{MsgCtxt: "verb", MsgID: "Post", MsgStr: "Veröffentlichen"},
		{MsgID: "%d item", MsgIDPlural: "%d items", MsgStrPlural: map[int]string{0: "%d Eintrag", 1: "%d Einträge"}},
		{MsgID: "Draft", MsgStr: "Entwurf", Flags: []string{"fuzzy"}},
		{MsgID: "Untranslated"},
	}
	return f
}

func TestWriteMOReadBackWithGettext(t *testing.T) {
	f := sampleTranslated()

	var buf bytes.Buffer
	if err := f.WriteMO(&buf); err != nil {
		t.Fatalf("WriteMO error: %v", err)
	}
	data := buf.Bytes()

	if got := binary.LittleEndian.Uint32(data[0:4]); got != moMagic {
		t.Fatalf("magic = %#x", got)
	}
	// header + Save + Post + plural; fuzzy and untranslated are left out
	if got := binary.LittleEndian.Uint32(data[8:12]); got != 4 {
		t.Fatalf("message count = %d, want 4", got)
	}

	mo := gotext.NewMo()
	mo.Parse(data)
	if got := mo.Get("Save"); got != "Speichern" {
		t.Fatalf("Get(Save) = %q", got)
	}
	if got := mo.GetC("Post", "verb"); got != "Veröffentlichen" {
		t.Fatalf("GetC(Post, verb) = %q", got)
	}
	if got := mo.GetN("%d item", "%d items", 5); got != "%d Einträge" {
		t.Fatalf("GetN(5) = %q", got)
	}
	if got := mo.Get("Draft"); got != "Draft" {
		t.Fatalf("fuzzy entry should not be compiled, got %q", got)
	}

	if err := f.VerifyMO(data); err != nil {
		t.Fatalf("VerifyMO error: %v", err)
	}
}

func TestVerifyMODetectsMismatch(t *testing.T) {
	f := sampleTranslated()
	var buf bytes.Buffer
	if err := f.WriteMO(&buf); err != nil {
		t.Fatalf("WriteMO error: %v", err)
	}

	f.Entries[0].MsgStr = "Sichern"
	if err := f.VerifyMO(buf.Bytes()); err == nil {
		t.Fatal("expected VerifyMO to report a mismatch")
	}
}

func TestWriteMOFileCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "languages", "demo-de.mo")

	f := sampleTranslated()
	if err := f.WriteMOFile(path); err != nil {
		t.Fatalf("WriteMOFile error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if err := f.VerifyMO(data); err != nil {
		t.Fatalf("VerifyMO error: %v", err)
	}
}
