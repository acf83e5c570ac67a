// Package rules implements the exclusion-resolution engine: the pattern
// matcher and auto-exclusion set built from configuration, and the resolver
// combining them with manual per-path overrides.
package rules

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// TreeEntry is one walked filesystem entry, relative to the workspace root.
type TreeEntry struct {
	Rel   string // forward-slash relative path, no trailing separator
	IsDir bool
}

// WalkTree lists every entry below root. Unreadable subtrees contribute
// nothing; a failed walk never aborts a rebuild.
func WalkTree(root string) []TreeEntry {
	var entries []TreeEntry
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil || rel == "." {
			return nil
		}
		entries = append(entries, TreeEntry{Rel: filepath.ToSlash(rel), IsDir: d.IsDir()})
		return nil
	})
	return entries
}

// MatchPattern resolves one configured pattern against a tree entry. A
// pattern is tried as a root-relative glob and, unless anchored with a
// leading "/", at any depth in the tree. A pattern naming a directory also
// covers everything beneath it. A trailing "/" restricts the pattern itself
// to directories but still covers their descendants. Invalid glob syntax
// matches nothing.
func MatchPattern(pattern string, entry TreeEntry) bool {
	pattern = strings.TrimSpace(filepath.ToSlash(pattern))
	dirOnly := strings.HasSuffix(pattern, "/")
	anchored := strings.HasPrefix(pattern, "/")
	p := strings.Trim(pattern, "/")
	if p == "" {
		return false
	}

	try := func(glob string) bool {
		ok, err := doublestar.Match(glob, entry.Rel)
		return err == nil && ok
	}

	if !dirOnly || entry.IsDir {
		if try(p) {
			return true
		}
		if !anchored && try("**/"+p) {
			return true
		}
	}
	if try(p + "/**") {
		return true
	}
	return !anchored && try("**/"+p+"/**")
}
