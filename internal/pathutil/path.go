// Package pathutil defines the canonical path form shared by the rule,
// stats, and report packages: absolute, forward-slash separated, with
// directories carrying a trailing "/" so a directory never collides with a
// same-named file and descendant checks reduce to prefix tests.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Canonical returns the canonical form of path. The trailing separator is
// decided by a stat call; a path with no filesystem entry is treated as a
// plain file.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p := filepath.ToSlash(filepath.Clean(abs))
	info, err := os.Stat(abs)
	if err == nil && info.IsDir() {
		return asDir(p)
	}
	return p
}

// CanonicalDir returns the canonical directory form of path regardless of
// what the filesystem currently holds.
func CanonicalDir(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return asDir(filepath.ToSlash(filepath.Clean(abs)))
}

func asDir(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// IsDir reports whether p is in directory form.
func IsDir(p string) bool {
	return strings.HasSuffix(p, "/")
}

// Parent returns the canonical directory containing p, or "" when p is the
// filesystem root.
func Parent(p string) string {
	trimmed := strings.TrimSuffix(p, "/")
	if trimmed == "" {
		return ""
	}
	i := strings.LastIndexByte(trimmed, '/')
	if i < 0 {
		return ""
	}
	return trimmed[:i+1]
}

// Ancestors returns p followed by every containing directory, nearest
// first, ending at the filesystem root. The path itself is included so a
// rule on the path wins over any rule on an ancestor.
func Ancestors(p string) []string {
	if p == "" {
		return nil
	}
	out := []string{p}
	for cur := Parent(p); cur != ""; cur = Parent(cur) {
		out = append(out, cur)
		if cur == "/" {
			break
		}
	}
	return out
}

// Within reports whether p is a strict descendant of the directory dir.
func Within(p, dir string) bool {
	return p != dir && strings.HasPrefix(p, dir)
}

// Rel returns p relative to the workspace root, preserving p's trailing
// separator. The root itself maps to "".
func Rel(root, p string) string {
	if p == root {
		return ""
	}
	return strings.TrimPrefix(p, root)
}
