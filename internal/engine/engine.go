// Package engine owns the shared rule state and funnels every mutation
// through one place so the invariants (disjoint manual sets, normalized
// selections, cache freshness) are enforced once. All exported methods are
// safe for concurrent use.
package engine

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vasysik/repotxt/internal/config"
	"github.com/Vasysik/repotxt/internal/pathutil"
	"github.com/Vasysik/repotxt/internal/ranges"
	"github.com/Vasysik/repotxt/internal/report"
	"github.com/Vasysik/repotxt/internal/rules"
	"github.com/Vasysik/repotxt/internal/session"
	"github.com/Vasysik/repotxt/internal/stats"
)

// DefaultDebounce coalesces filesystem change notifications before a
// rebuild, so bulk operations (checkout, build) trigger one recomputation.
const DefaultDebounce = 300 * time.Millisecond

// Engine is the resolution context handed to all readers. A nil session
// store disables persistence.
type Engine struct {
	mu sync.Mutex

	root string // canonical workspace directory, "" when none is open
	name string
	cfg  *config.Config

	auto  *rules.AutoSet
	res   *rules.Resolver
	agg   *stats.Aggregator
	store *session.Store
	log   zerolog.Logger

	debounce      *time.Timer
	debounceDelay time.Duration
	subs          []func()
}

// New opens the workspace at root (may be "" for no workspace), loads any
// persisted session state, and builds the auto-exclusion set.
func New(root string, cfg *config.Config, store *session.Store, log zerolog.Logger) (*Engine, error) {
	e := &Engine{
		cfg:           cfg,
		store:         store,
		log:           log,
		debounceDelay: DefaultDebounce,
	}
	if root != "" {
		e.root = pathutil.CanonicalDir(root)
		e.name = filepath.Base(strings.TrimSuffix(e.root, "/"))
	}

	e.auto = rules.NewAutoSet()
	e.auto.Rebuild(e.root, e.cfg)
	e.res = rules.NewResolver(e.auto)

	if store != nil && e.root != "" {
		st, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load session state: %w", err)
		}
		e.res.LoadState(st)
	}
	e.validateRanges()
	e.agg = stats.New(e.res)

	log.Debug().Str("workspace", e.root).Int("autoExcluded", e.auto.Len()).Msg("engine initialized")
	return e, nil
}

// Root returns the canonical workspace directory, "" when none is open.
func (e *Engine) Root() string {
	return e.root
}

// WorkspaceName returns the display name of the workspace.
func (e *Engine) WorkspaceName() string {
	return e.name
}

// Subscribe registers a callback invoked after every mutation or rebuild.
// Callbacks run with the engine unlocked.
func (e *Engine) Subscribe(fn func()) {
	e.mu.Lock()
	e.subs = append(e.subs, fn)
	e.mu.Unlock()
}

// Close stops any pending debounced rebuild.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.debounce != nil {
		e.debounce.Stop()
		e.debounce = nil
	}
	e.mu.Unlock()
}

// Canonicalize resolves path to its canonical form, interpreting relative
// paths against the workspace root.
func (e *Engine) Canonicalize(path string) string {
	if e.root != "" && !filepath.IsAbs(path) {
		path = filepath.Join(strings.TrimSuffix(e.root, "/"), path)
	}
	return pathutil.Canonical(path)
}

// EffectivelyExcluded returns the data-level exclusion verdict for path.
func (e *Engine) EffectivelyExcluded(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.res.EffectivelyExcluded(e.Canonicalize(path))
}

// VisuallyExcluded returns the UI-level exclusion verdict for path.
func (e *Engine) VisuallyExcluded(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.res.VisuallyExcluded(e.Canonicalize(path))
}

// ToggleExclude flips the manual inclusion state of path.
func (e *Engine) ToggleExclude(path string) error {
	e.mu.Lock()
	if e.root == "" {
		e.mu.Unlock()
		return nil
	}
	e.res.Toggle(e.Canonicalize(path))
	return e.finishLocked()
}

// ToggleExcludeMultiple applies the toggle to each path independently,
// persisting and notifying once.
func (e *Engine) ToggleExcludeMultiple(paths []string) error {
	e.mu.Lock()
	if e.root == "" {
		e.mu.Unlock()
		return nil
	}
	for _, p := range paths {
		e.res.Toggle(e.Canonicalize(p))
	}
	return e.finishLocked()
}

// ResetExclusions drops every manual decision and partial selection.
func (e *Engine) ResetExclusions() error {
	e.mu.Lock()
	e.res.Reset()
	return e.finishLocked()
}

// AddRanges merges sel into the partial selection of the file at path.
func (e *Engine) AddRanges(path string, sel []ranges.Range) error {
	e.mu.Lock()
	if e.root == "" {
		e.mu.Unlock()
		return nil
	}
	p := e.Canonicalize(path)
	if pathutil.IsDir(p) {
		e.mu.Unlock()
		return fmt.Errorf("cannot select lines of a directory: %s", path)
	}
	e.res.AddPartial(p, sel)
	return e.finishLocked()
}

// RemoveRanges subtracts sel from the partial selection of path.
func (e *Engine) RemoveRanges(path string, sel []ranges.Range) error {
	e.mu.Lock()
	if e.root == "" {
		e.mu.Unlock()
		return nil
	}
	e.res.RemovePartial(e.Canonicalize(path), sel)
	return e.finishLocked()
}

// ClearRanges drops the partial selection of path.
func (e *Engine) ClearRanges(path string) error {
	e.mu.Lock()
	if e.root == "" {
		e.mu.Unlock()
		return nil
	}
	e.res.ClearPartial(e.Canonicalize(path))
	return e.finishLocked()
}

// ClearAllRanges drops every partial selection.
func (e *Engine) ClearAllRanges() error {
	e.mu.Lock()
	if e.root == "" {
		e.mu.Unlock()
		return nil
	}
	e.res.ClearAllPartial()
	return e.finishLocked()
}

// Ranges returns the normalized partial selection of path.
func (e *Engine) Ranges(path string) []ranges.Range {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.res.Partial(e.Canonicalize(path))
}

// GenerateReport produces the flattened report for the workspace.
func (e *Engine) GenerateReport() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return report.New(e.res, e.cfg, e.root, e.name).Generate()
}

// Stats returns the aggregate counts for one path.
func (e *Engine) Stats(path string) stats.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.root == "" {
		return stats.Stats{}
	}
	return e.agg.Path(e.Canonicalize(path))
}

// WorkspaceStats returns the whole-workspace aggregate. Line and character
// totals are derived from the actual generated report, so they include the
// structure listing, wrapper lines, and the AI prompt when enabled.
func (e *Engine) WorkspaceStats() stats.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.root == "" {
		return stats.Stats{}
	}
	files := e.agg.Path(e.root).Files
	rep := report.New(e.res, e.cfg, e.root, e.name).Generate()
	return stats.Stats{
		Lines: len(stats.SplitLines(rep)),
		Chars: len(rep),
		Files: files,
	}
}

// NotifyChange records a filesystem change. Rebuilds are debounced: a new
// notification supersedes a pending timer.
func (e *Engine) NotifyChange(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.root == "" {
		return
	}
	e.log.Debug().Str("path", path).Msg("filesystem change")
	if e.debounce != nil {
		e.debounce.Stop()
	}
	e.debounce = time.AfterFunc(e.debounceDelay, e.Rebuild)
}

// SetDebounce adjusts the coalescing delay.
func (e *Engine) SetDebounce(d time.Duration) {
	e.mu.Lock()
	e.debounceDelay = d
	e.mu.Unlock()
}

// ReloadConfig applies a new configuration and rebuilds synchronously.
func (e *Engine) ReloadConfig(cfg *config.Config) {
	e.mu.Lock()
	e.cfg = cfg
	e.mu.Unlock()
	e.Rebuild()
}

// Rebuild recomputes the auto-exclusion set, revalidates partial ranges
// against current file lengths, and clears all caches.
func (e *Engine) Rebuild() {
	e.mu.Lock()
	e.auto.Rebuild(e.root, e.cfg)
	e.validateRanges()
	e.res.InvalidateCaches()
	e.agg.Invalidate()
	e.persistLocked()
	subs := append([]func(){}, e.subs...)
	e.mu.Unlock()

	e.log.Debug().Int("autoExcluded", e.auto.Len()).Msg("rebuilt auto-exclusion set")
	for _, fn := range subs {
		fn()
	}
}

// finishLocked persists, invalidates, and notifies after a mutation. It
// releases the mutex.
func (e *Engine) finishLocked() error {
	e.persistLocked()
	if e.agg != nil {
		e.agg.Invalidate()
	}
	subs := append([]func(){}, e.subs...)
	e.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
	return nil
}

// persistLocked saves the session state best-effort; failures are logged,
// never surfaced.
func (e *Engine) persistLocked() {
	if e.store == nil || e.root == "" {
		return
	}
	if err := e.store.Save(e.res.Snapshot()); err != nil {
		e.log.Warn().Err(err).Msg("failed to persist session state")
	}
}

// validateRanges clamps stored selections to current file lengths: ranges
// starting past the end are dropped, ranges ending past it truncated.
func (e *Engine) validateRanges() {
	for _, p := range e.res.PartialFiles() {
		n := stats.LineCount(p)
		e.res.SetPartial(p, ranges.Clamp(e.res.Partial(p), n))
	}
}
