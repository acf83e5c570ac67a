// Package session persists the manual curation state of one workspace: the
// manual include/exclude sets and per-file partial line selections. The
// store is best-effort; callers treat save failures as lost caching, not
// lost data.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Vasysik/repotxt/internal/ranges"
)

// State is the serializable snapshot of all manual decisions for one
// workspace.
type State struct {
	Includes        []string                  `json:"includes"`
	Excludes        []string                  `json:"excludes"`
	PartialIncludes map[string][]ranges.Range `json:"partialIncludes"`
}

// Empty returns a fresh state, created on first open of a workspace.
func Empty() *State {
	return &State{
		Includes:        []string{},
		Excludes:        []string{},
		PartialIncludes: map[string][]ranges.Range{},
	}
}

// Store reads and writes the state file of one workspace.
type Store struct {
	path string
}

// DefaultDir returns the per-user directory holding session files.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "repotxt", "sessions"), nil
}

// NewStore creates a store for the workspace rooted at root, keyed by a
// hash of the root path so unrelated workspaces never share state.
func NewStore(dir string, root string) *Store {
	sum := sha256.Sum256([]byte(root))
	name := hex.EncodeToString(sum[:8]) + ".json"
	return &Store{path: filepath.Join(dir, name)}
}

// NewStoreAt creates a store backed by an explicit file path.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted state. A missing file yields an empty state.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return nil, err
	}
	st := Empty()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", s.path, err)
	}
	if st.Includes == nil {
		st.Includes = []string{}
	}
	if st.Excludes == nil {
		st.Excludes = []string{}
	}
	if st.PartialIncludes == nil {
		st.PartialIncludes = map[string][]ranges.Range{}
	}
	return st, nil
}

// Save writes the state, creating the session directory as needed.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, append(data, '\n'), 0o644)
}
