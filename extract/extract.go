// Package extract finds translatable strings in PHP sources. It recognizes
// the WordPress gettext marker functions (__, _e, _x, _n, esc_html__ and
// friends), isolates their argument lists with a balanced-parenthesis scan,
// and assembles the results into a catalog.
package extract

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/minios-linux/potkit/catalog"
)

// SourceExtensions lists the file extensions scanned, lower case.
var SourceExtensions = map[string]bool{
	".php": true,
}

// skipDirs contains directory names to skip during source file scanning.
var skipDirs = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	"__pycache__":  true,
	"build":        true,
	"dist":         true,
}

// DefaultProjectName is used when no source carries a "Plugin Name:" header.
const DefaultProjectName = "Unknown Plugin"

// projectHeaderLimit bounds how much of each file is searched for the
// plugin header.
const projectHeaderLimit = 20000

// pluginNamePattern matches a "Plugin Name:" header line in any case and
// spacing behind comment decoration. The value must be on the same line.
var pluginNamePattern = regexp.MustCompile(`(?im)^[\s*/#@-]*Plugin\s+Name[ \t]*:[ \t]*(.+?)\s*$`)

// Result holds the outcome of an extraction run.
type Result struct {
	// SourceFiles are the locators of the files scanned, sorted.
	SourceFiles []string
	// Skipped are the locators of files that could not be read.
	Skipped []string
	// Catalog is the deduplicated message set.
	Catalog *catalog.Catalog
	// ProjectName comes from the first plugin header found.
	ProjectName string
	// Unbalanced counts marker calls whose parentheses never close.
	Unbalanced int
	// Dropped counts marker calls without a usable msgid.
	Dropped int
}

// FindSources recursively finds PHP sources under dir and returns their
// slash-separated paths relative to dir, sorted. Common non-source
// directories (vendor, node_modules, .git, ...) are skipped.
func FindSources(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			if path != dir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !SourceExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// DetectProjectName returns the value of a "Plugin Name:" header in the
// first part of content, or "".
func DetectProjectName(content string) string {
	if len(content) > projectHeaderLimit {
		content = content[:projectHeaderLimit]
	}
	m := pluginNamePattern.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// SourceStats reports what AddSource saw in one file.
type SourceStats struct {
	Added      int
	Dropped    int
	Unbalanced int
}

// AddSource extracts every marker call in content into cat, recording
// locator and the 1-based line of each call.
func AddSource(cat *catalog.Catalog, locator, content string) SourceStats {
	var st SourceStats
	line, counted := 1, 0
	for c := range Scan(content) {
		line += strings.Count(content[counted:c.Offset], "\n")
		counted = c.Offset
		if c.Unbalanced {
			st.Unbalanced++
		}
		key := catalog.Key{Context: c.Context, MsgID: c.MsgID, Plural: c.Plural}
		if cat.Add(key, catalog.Occurrence{Locator: locator, Line: line}) {
			st.Added++
		} else {
			st.Dropped++
		}
	}
	return st
}

// Run scans every source under dir into a fresh catalog. A file that
// cannot be read is logged and skipped.
func Run(dir string, logger zerolog.Logger) (*Result, error) {
	files, err := FindSources(dir)
	if err != nil {
		return nil, err
	}

	res := &Result{
		SourceFiles: files,
		Catalog:     catalog.New(),
	}
	for _, rel := range files {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			logger.Warn().Err(err).Str("file", rel).Msg("skipping unreadable source")
			res.Skipped = append(res.Skipped, rel)
			continue
		}
		content := string(data)
		if res.ProjectName == "" {
			res.ProjectName = DetectProjectName(content)
		}

		st := AddSource(res.Catalog, rel, content)
		res.Unbalanced += st.Unbalanced
		res.Dropped += st.Dropped
		if st.Unbalanced > 0 {
			logger.Debug().Str("file", rel).Int("calls", st.Unbalanced).Msg("unbalanced marker call runs to end of file")
		}
		logger.Debug().Str("file", rel).Int("strings", st.Added).Msg("scanned")
	}
	if res.ProjectName == "" {
		res.ProjectName = DefaultProjectName
	}
	return res, nil
}
