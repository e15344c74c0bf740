// Package bundle packs the translated catalogs of an output directory into
// a single archive for distribution.
package bundle

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// Format is an archive format.
type Format string

const (
	Zip    Format = "zip"
	TarZst Format = "tar.zst"
)

// Archive names written into the output directory.
const (
	ZipName    = "translations.zip"
	TarZstName = "translations.tar.zst"
)

// ErrNothingToBundle is returned when the directory has no catalogs.
var ErrNothingToBundle = errors.New("no .po or .mo files to bundle")

// ParseFormat accepts "zip" and "tar.zst" (also "zst").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "zip":
		return Zip, nil
	case "tar.zst", "zst", "zstd":
		return TarZst, nil
	}
	return "", fmt.Errorf("unknown bundle format %q (valid: zip, tar.zst)", s)
}

// Name is the archive file name for the format.
func (f Format) Name() string {
	if f == TarZst {
		return TarZstName
	}
	return ZipName
}

// Files lists the .po and .mo files directly inside dir, sorted.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".po", ".mo":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Write packs every catalog of dir into dir/<format name> and returns the
// archive path and the number of files packed. Entries are stored flat,
// under their base names.
func Write(dir string, format Format) (string, int, error) {
	names, err := Files(dir)
	if err != nil {
		return "", 0, err
	}
	if len(names) == 0 {
		return "", 0, ErrNothingToBundle
	}

	path := filepath.Join(dir, format.Name())
	out, err := os.Create(path)
	if err != nil {
		return "", 0, err
	}
	switch format {
	case TarZst:
		err = writeTarZst(out, dir, names)
	default:
		err = writeZip(out, dir, names)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return path, len(names), nil
}

func writeZip(w io.Writer, dir string, names []string) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = zip.Deflate
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if err := copyFile(fw, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeTarZst(w io.Writer, dir string, names []string) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return err
	}
	tw := tar.NewWriter(zw)
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = name
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if err := copyFile(tw, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return zw.Close()
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
