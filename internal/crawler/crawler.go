// Package crawler finds model files on disk: it resolves import statements
// against search directories and scans trees for files to convert.
package crawler

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"antimony/internal/diag"

	"github.com/bmatcuk/doublestar/v4"
)

// ModelPattern matches the file extensions the codecs read.
const ModelPattern = "**/*.{ant,antimony,cellml,sb,sbml,txt,xml}"

// Crawler keeps an ordered list of search directories.
type Crawler struct {
	dirs    []string
	ignored []string
}

// NewCrawler creates a new crawler instance.
func NewCrawler(dirs ...string) *Crawler {
	c := &Crawler{
		ignored: []string{".git", "vendor", "node_modules"},
	}
	for _, d := range dirs {
		c.AddDirectory(d)
	}
	return c
}

// AddDirectory appends dir to the search path. Duplicates are ignored.
func (c *Crawler) AddDirectory(dir string) {
	if dir == "" {
		return
	}
	dir = filepath.Clean(dir)
	if !slices.Contains(c.dirs, dir) {
		c.dirs = append(c.dirs, dir)
	}
}

func (c *Crawler) ClearDirectories() { c.dirs = nil }

func (c *Crawler) Directories() []string { return append([]string(nil), c.dirs...) }

// Resolve finds the file an import statement names. ref is tried as given
// when absolute, then relative to the importing file's directory, then
// relative to each search directory, and finally by base name anywhere
// below the search directories.
func (c *Crawler) Resolve(ref, from string) (string, error) {
	if filepath.IsAbs(ref) {
		if isFile(ref) {
			return ref, nil
		}
		return "", diag.NotFoundf("imported file %q does not exist", ref)
	}
	var candidates []string
	if from != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(from), ref))
	} else {
		candidates = append(candidates, ref)
	}
	for _, d := range c.dirs {
		candidates = append(candidates, filepath.Join(d, ref))
	}
	for _, p := range candidates {
		if isFile(p) {
			return p, nil
		}
	}
	base := filepath.Base(ref)
	for _, d := range c.dirs {
		matches, err := c.glob(d, "**/"+base)
		if err != nil {
			return "", err
		}
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	return "", diag.NotFoundf("unable to find imported file %q", ref)
}

// Import reads the file ref names. It has the shape of codec.ImportFunc.
func (c *Crawler) Import(ref, from string) ([]byte, string, error) {
	file, err := c.Resolve(ref, from)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, "", diag.Loadf("cannot read imported file %q: %v", file, err)
	}
	return data, file, nil
}

// ScanProject calls onFile for every model file below root, in lexical
// order. A file argument is passed through as is.
func (c *Crawler) ScanProject(root string, onFile func(path string) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return onFile(root)
	}
	matches, err := c.glob(root, ModelPattern)
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := onFile(m); err != nil {
			return err
		}
	}
	return nil
}

// glob matches pattern below dir and returns sorted file paths joined to
// dir, leaving out ignored directories.
func (c *Crawler) glob(dir, pattern string) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}
	slices.Sort(matches)
	var out []string
	for _, m := range matches {
		if c.skipped(m) {
			continue
		}
		out = append(out, filepath.Join(dir, filepath.FromSlash(m)))
	}
	return out, nil
}

// skipped reports whether the slash-separated rel runs through an ignored
// or hidden directory.
func (c *Crawler) skipped(rel string) bool {
	for _, p := range strings.Split(path.Dir(rel), "/") {
		if p == "." || p == "" {
			continue
		}
		if strings.HasPrefix(p, ".") || slices.Contains(c.ignored, p) {
			return true
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
