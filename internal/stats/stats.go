// Package stats computes line, character, and file counts over the
// non-excluded part of the workspace, honoring partial line selections.
package stats

import (
	"os"
	"sort"
	"strings"

	"github.com/Vasysik/repotxt/internal/pathutil"
	"github.com/Vasysik/repotxt/internal/rules"
)

// Stats aggregates counts for one path. Files is zero for plain files.
type Stats struct {
	Lines int `json:"lines"`
	Chars int `json:"chars"`
	Files int `json:"files,omitempty"`
}

func (s Stats) add(o Stats) Stats {
	return Stats{Lines: s.Lines + o.Lines, Chars: s.Chars + o.Chars, Files: s.Files + o.Files}
}

// Aggregator memoizes per-path counts. Caches are wiped on any mutation or
// filesystem change; they are never persisted.
type Aggregator struct {
	res       *rules.Resolver
	fileCache map[string]Stats
	dirCache  map[string]Stats
}

// New creates an aggregator over the resolver's current rule state.
func New(res *rules.Resolver) *Aggregator {
	a := &Aggregator{res: res}
	a.Invalidate()
	return a
}

// Invalidate clears all memoized counts.
func (a *Aggregator) Invalidate() {
	a.fileCache = map[string]Stats{}
	a.dirCache = map[string]Stats{}
}

// Path returns the stats of a canonical path: a file's line/char counts
// (restricted to its partial selection when present) or a directory's
// recursive aggregate over visually non-excluded children.
func (a *Aggregator) Path(p string) Stats {
	if pathutil.IsDir(p) {
		return a.dir(p)
	}
	return a.file(p)
}

func (a *Aggregator) file(p string) Stats {
	if sel := a.res.Partial(p); len(sel) > 0 {
		lines, ok := readLines(p)
		if !ok {
			return Stats{}
		}
		var st Stats
		for _, r := range sel {
			for i := r.Start; i <= r.End && i <= len(lines); i++ {
				st.Lines++
				st.Chars += len(lines[i-1]) + 1
			}
		}
		return st
	}

	if st, ok := a.fileCache[p]; ok {
		return st
	}
	var st Stats
	if lines, ok := readLines(p); ok {
		for _, line := range lines {
			st.Lines++
			st.Chars += len(line) + 1
		}
	}
	a.fileCache[p] = st
	return st
}

func (a *Aggregator) dir(p string) Stats {
	if st, ok := a.dirCache[p]; ok {
		return st
	}
	var st Stats
	entries, err := os.ReadDir(strings.TrimSuffix(p, "/"))
	if err != nil {
		a.dirCache[p] = st
		return st
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		child := p + entry.Name()
		if entry.IsDir() {
			child += "/"
		}
		if a.res.VisuallyExcluded(child) {
			continue
		}
		if entry.IsDir() {
			st = st.add(a.dir(child))
			continue
		}
		st = st.add(a.file(child))
		st.Files++
	}
	a.dirCache[p] = st
	return st
}

// readLines reads the file at canonical path p split into lines. A read
// failure yields ok=false and counts of zero at the caller.
func readLines(p string) ([]string, bool) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return SplitLines(string(data)), true
}

// SplitLines splits content on "\n", treating a trailing newline as a line
// terminator rather than the start of a phantom empty line.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// LineCount returns the number of lines in the file at canonical path p,
// zero when unreadable.
func LineCount(p string) int {
	lines, ok := readLines(p)
	if !ok {
		return 0
	}
	return len(lines)
}
