package rules

import (
	"sort"

	"github.com/Vasysik/repotxt/internal/pathutil"
	"github.com/Vasysik/repotxt/internal/ranges"
	"github.com/Vasysik/repotxt/internal/session"
)

// Resolver decides, for any path, whether it is included, excluded, or
// partially included. Manual decisions override automatic ones; among
// manual rules the nearest ancestor wins, with the path's own rule checked
// before any ancestor's. All paths are canonical (pathutil form).
//
// Resolver itself is not safe for concurrent use; the engine serializes
// access.
type Resolver struct {
	auto *AutoSet

	manualInc map[string]struct{}
	manualExc map[string]struct{}
	partial   map[string][]ranges.Range

	// descOverride caches, per directory, whether a manual include or a
	// non-empty partial selection exists beneath it.
	descOverride map[string]bool
}

// NewResolver creates a resolver over the given auto-exclusion set.
func NewResolver(auto *AutoSet) *Resolver {
	return &Resolver{
		auto:         auto,
		manualInc:    map[string]struct{}{},
		manualExc:    map[string]struct{}{},
		partial:      map[string][]ranges.Range{},
		descOverride: map[string]bool{},
	}
}

// LoadState replaces all manual decisions with a persisted snapshot.
// Includes win over excludes when a corrupt snapshot lists a path in both.
func (r *Resolver) LoadState(st *session.State) {
	r.manualInc = map[string]struct{}{}
	r.manualExc = map[string]struct{}{}
	r.partial = map[string][]ranges.Range{}
	for _, p := range st.Excludes {
		r.manualExc[p] = struct{}{}
	}
	for _, p := range st.Includes {
		r.manualInc[p] = struct{}{}
		delete(r.manualExc, p)
	}
	for p, rs := range st.PartialIncludes {
		if merged := ranges.Merge(rs); len(merged) > 0 {
			r.partial[p] = merged
		}
	}
	r.InvalidateCaches()
}

// Snapshot exports the manual state in deterministic order for persistence.
func (r *Resolver) Snapshot() *session.State {
	st := session.Empty()
	for p := range r.manualInc {
		st.Includes = append(st.Includes, p)
	}
	for p := range r.manualExc {
		st.Excludes = append(st.Excludes, p)
	}
	sort.Strings(st.Includes)
	sort.Strings(st.Excludes)
	for p, rs := range r.partial {
		st.PartialIncludes[p] = append([]ranges.Range{}, rs...)
	}
	return st
}

// InvalidateCaches clears memoized descendant lookups. Called by the engine
// after any mutation or filesystem change.
func (r *Resolver) InvalidateCaches() {
	r.descOverride = map[string]bool{}
}

// EffectivelyExcluded returns the data-level exclusion verdict for p: the
// nearest manual rule on p or an ancestor decides; absent any manual rule,
// the nearest auto-excluded ancestor excludes; otherwise p is included.
func (r *Resolver) EffectivelyExcluded(p string) bool {
	ancestors := pathutil.Ancestors(p)
	for _, cand := range ancestors {
		if _, ok := r.manualInc[cand]; ok {
			return false
		}
		if _, ok := r.manualExc[cand]; ok {
			return true
		}
	}
	for _, cand := range ancestors {
		if r.auto.Contains(cand) {
			return true
		}
	}
	return false
}

// VisuallyExcluded returns the UI-level verdict: a file with a partial
// selection is always visible, and an excluded directory stays visible when
// an override beneath it must remain reachable.
func (r *Resolver) VisuallyExcluded(p string) bool {
	if !pathutil.IsDir(p) && len(r.partial[p]) > 0 {
		return false
	}
	if !r.EffectivelyExcluded(p) {
		return false
	}
	if pathutil.IsDir(p) && r.HasOverrideDescendant(p) {
		return false
	}
	return true
}

// HasOverrideDescendant reports whether the directory dir has a manual
// include or a non-empty partial selection strictly beneath it.
func (r *Resolver) HasOverrideDescendant(dir string) bool {
	if v, ok := r.descOverride[dir]; ok {
		return v
	}
	found := false
	for p := range r.manualInc {
		if pathutil.Within(p, dir) {
			found = true
			break
		}
	}
	if !found {
		for p, rs := range r.partial {
			if len(rs) > 0 && pathutil.Within(p, dir) {
				found = true
				break
			}
		}
	}
	r.descOverride[dir] = found
	return found
}

// Toggle flips the manual state of p: an effectively excluded path becomes
// manually included and vice versa. Toggling a directory purges conflicting
// manual rules from its descendants so the fresh decision is never
// immediately contradicted below it.
func (r *Resolver) Toggle(p string) {
	wasExcluded := r.EffectivelyExcluded(p)
	delete(r.manualInc, p)
	delete(r.manualExc, p)

	if wasExcluded {
		r.manualInc[p] = struct{}{}
		if pathutil.IsDir(p) {
			purgeWithin(r.manualExc, p)
		}
	} else {
		r.manualExc[p] = struct{}{}
		if pathutil.IsDir(p) {
			purgeWithin(r.manualInc, p)
		}
	}
	r.InvalidateCaches()
}

// ToggleMultiple applies Toggle to each path independently.
func (r *Resolver) ToggleMultiple(paths []string) {
	for _, p := range paths {
		r.Toggle(p)
	}
}

// Reset drops every manual decision and partial selection.
func (r *Resolver) Reset() {
	r.manualInc = map[string]struct{}{}
	r.manualExc = map[string]struct{}{}
	r.partial = map[string][]ranges.Range{}
	r.InvalidateCaches()
}

func purgeWithin(set map[string]struct{}, dir string) {
	for p := range set {
		if pathutil.Within(p, dir) {
			delete(set, p)
		}
	}
}

// Partial returns the normalized selection ranges of the file p, nil when
// the file is fully included or excluded.
func (r *Resolver) Partial(p string) []ranges.Range {
	return r.partial[p]
}

// PartialFiles lists every file with a non-empty selection, sorted.
func (r *Resolver) PartialFiles() []string {
	out := make([]string, 0, len(r.partial))
	for p := range r.partial {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// AddPartial merges sel into the stored selection of p.
func (r *Resolver) AddPartial(p string, sel []ranges.Range) {
	merged := ranges.Merge(append(append([]ranges.Range{}, r.partial[p]...), sel...))
	if len(merged) == 0 {
		delete(r.partial, p)
	} else {
		r.partial[p] = merged
	}
	r.InvalidateCaches()
}

// RemovePartial subtracts sel from the stored selection of p, dropping the
// entry when nothing remains.
func (r *Resolver) RemovePartial(p string, sel []ranges.Range) {
	remaining := ranges.SubtractAll(r.partial[p], sel)
	if len(remaining) == 0 {
		delete(r.partial, p)
	} else {
		r.partial[p] = remaining
	}
	r.InvalidateCaches()
}

// ClearPartial removes the whole selection of p.
func (r *Resolver) ClearPartial(p string) {
	delete(r.partial, p)
	r.InvalidateCaches()
}

// ClearAllPartial removes every selection.
func (r *Resolver) ClearAllPartial() {
	r.partial = map[string][]ranges.Range{}
	r.InvalidateCaches()
}

// SetPartial replaces the selection of p with an already-normalized list.
// Used by range revalidation after external edits.
func (r *Resolver) SetPartial(p string, rs []ranges.Range) {
	if len(rs) == 0 {
		delete(r.partial, p)
	} else {
		r.partial[p] = rs
	}
	r.InvalidateCaches()
}
