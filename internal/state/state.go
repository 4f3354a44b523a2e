// Package state persists the viewer's application state: the last theme,
// the last opened file and the list of recently opened files.
//
// The state file is YAML. Writes take a cross-process lock (gofrs/flock)
// and replace the file atomically, so several mdview processes can share
// one state file.
package state

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/mdview/internal/output"
)

// MaxRecentFiles caps the recent file list.
const MaxRecentFiles = 20

// SchemaVersion is written into every saved state file.
const SchemaVersion = "1.0.0"

// compatibleSchemas is the range of schema versions Load accepts.
const compatibleSchemas = "^1.0.0"

// State is the persisted application state.
type State struct {
	SchemaVersion string   `yaml:"schemaVersion"`
	LastTheme     string   `yaml:"lastTheme,omitempty"`
	LastFile      string   `yaml:"lastFile,omitempty"`
	RecentFiles   []string `yaml:"recentFiles"`
}

// Default returns an empty state at the current schema version.
func Default() *State {
	return &State{
		SchemaVersion: SchemaVersion,
		RecentFiles:   []string{},
	}
}

// PushRecent moves path to the front of recent, dropping duplicates and
// trimming the list to MaxRecentFiles.
func PushRecent(recent []string, path string) []string {
	out := make([]string, 0, min(len(recent)+1, MaxRecentFiles))
	out = append(out, path)

	for _, p := range recent {
		if len(out) == MaxRecentFiles {
			break
		}

		if p != path {
			out = append(out, p)
		}
	}

	return out
}

// DefaultPath returns <user config dir>/mdview/state.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}

	return filepath.Join(dir, "mdview", "state.yaml"), nil
}

// Store loads and saves State at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger

	// mu serializes goroutines of this process; lock serializes processes.
	mu   sync.Mutex
	lock *flock.Flock
}

// NewStore creates a store for the state file at path. The lock file lives
// next to it as <path>.lock.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. It never fails: a missing, malformed or
// incompatible file yields Default().
func (s *Store) Load() *State {
	st, err := s.read()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("ignoring state file", slog.String("path", s.path), slog.String("error", err.Error()))
		}

		return Default()
	}

	return st
}

// Save writes st under the file lock.
func (s *Store) Save(st *State) error {
	return s.withLock(func() error {
		return s.write(st)
	})
}

// Update runs fn on the current state and saves the result, all under the
// file lock.
func (s *Store) Update(fn func(*State)) (*State, error) {
	var st *State

	err := s.withLock(func() error {
		st = s.Load()
		fn(st)

		return s.write(st)
	})
	if err != nil {
		return nil, err
	}

	return st, nil
}

func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("locking state file: %w", err)
	}

	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("unlocking state file", slog.String("error", err.Error()))
		}
	}()

	return fn()
}

func (s *Store) read() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing state file: %w", err)
	}

	if err := checkSchema(st.SchemaVersion); err != nil {
		return nil, err
	}

	if st.SchemaVersion == "" {
		st.SchemaVersion = SchemaVersion
	}

	if st.RecentFiles == nil {
		st.RecentFiles = []string{}
	}

	return &st, nil
}

func (s *Store) write(st *State) error {
	st.SchemaVersion = SchemaVersion

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	w := output.NewFileWriter(s.path, output.WithPermissions(0o600), output.WithLogger(s.logger))
	if err := w.Write(data); err != nil {
		return fmt.Errorf("saving state: %w", err)
	}

	return nil
}

// checkSchema accepts files written by any compatible schema version.
// A file without a version predates versioning and is accepted.
func checkSchema(version string) error {
	if version == "" {
		return nil
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid schema version %q: %w", version, err)
	}

	c, err := semver.NewConstraint(compatibleSchemas)
	if err != nil {
		return fmt.Errorf("parsing schema constraint: %w", err)
	}

	if !c.Check(v) {
		return fmt.Errorf("unsupported schema version %s (want %s)", version, compatibleSchemas)
	}

	return nil
}
