package rules

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Vasysik/repotxt/internal/config"
)

// AutoSet is the set of paths excluded automatically by configured
// patterns, ignore-file entries, and binary extensions. It is rebuilt
// wholesale on every configuration or filesystem change, never merged
// incrementally.
type AutoSet struct {
	paths map[string]struct{}
}

// NewAutoSet returns an empty set.
func NewAutoSet() *AutoSet {
	return &AutoSet{paths: map[string]struct{}{}}
}

// Contains reports whether the canonical path p was auto-excluded.
func (a *AutoSet) Contains(p string) bool {
	_, ok := a.paths[p]
	return ok
}

// Len returns the number of auto-excluded paths.
func (a *AutoSet) Len() int {
	return len(a.paths)
}

// Rebuild recomputes the set for the workspace rooted at root (canonical
// directory form). Pattern resolution covers the whole tree, so a bare name
// or "*.ext" glob excludes matches at any depth.
func (a *AutoSet) Rebuild(root string, cfg *config.Config) {
	a.paths = map[string]struct{}{}
	if root == "" {
		return
	}

	var patterns []string
	if cfg.AutoExclude {
		patterns = append(patterns, cfg.ExcludePatterns...)
	}
	if cfg.RespectIgnoreFiles {
		for _, name := range cfg.IgnoreFiles {
			patterns = append(patterns, readIgnoreFile(filepath.Join(root, name))...)
		}
	}
	if len(patterns) == 0 && !cfg.ExcludeBinary {
		return
	}

	entries := WalkTree(root)
	for _, entry := range entries {
		for _, pattern := range patterns {
			if MatchPattern(pattern, entry) {
				a.add(root, entry)
				break
			}
		}
	}

	if cfg.ExcludeBinary {
		for _, entry := range entries {
			if entry.IsDir {
				continue
			}
			for _, ext := range cfg.BinaryExtensions {
				if ok, err := doublestar.Match("**/*"+ext, strings.ToLower(entry.Rel)); err == nil && ok {
					a.add(root, entry)
					break
				}
			}
		}
	}
}

func (a *AutoSet) add(root string, entry TreeEntry) {
	p := root + entry.Rel
	if entry.IsDir {
		p += "/"
	}
	a.paths[p] = struct{}{}
}

// readIgnoreFile parses one ignore file into flat patterns: lines are
// trimmed, blanks and "#" comments skipped, everything else taken verbatim.
// A missing or unreadable file contributes nothing.
func readIgnoreFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}
