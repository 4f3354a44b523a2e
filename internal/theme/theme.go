// Package theme lists and loads viewer themes.
//
// A theme is a JSON document stored as <dir>/<name>.json. YAML themes
// (<name>.yaml or <name>.yml) are accepted too and converted to JSON, so
// callers always receive JSON. The theme schema belongs to the UI and is
// not interpreted here.
package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"
)

var (
	// ErrInvalidName is returned for names that are not plain identifiers.
	ErrInvalidName = errors.New("invalid theme name")

	// ErrNotFound is returned when no file exists for a theme.
	ErrNotFound = errors.New("theme not found")
)

var builtin = []string{
	"sakura",
	"himawari",
	"ajisai",
	"momiji",
	"ume",
	"tsubaki",
	"tanpopo",
	"fuji",
	"nadeshiko",
	"asagao",
}

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// extensions are tried in order by Load.
var extensions = []string{".json", ".yaml", ".yml"}

// Builtin returns the names of the themes shipped with mdview.
func Builtin() []string {
	out := make([]string, len(builtin))
	copy(out, builtin)

	return out
}

// Store reads themes from a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the theme directory.
func (s *Store) Dir() string {
	return s.dir
}

// List returns the built-in theme names followed by any additional themes
// found in the directory, sorted. A missing directory is not an error.
func (s *Store) List() ([]string, error) {
	names := Builtin()

	if s.dir == "" {
		return names, nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return names, nil
		}

		return nil, fmt.Errorf("listing themes in %s: %w", s.dir, err)
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}

	var extra []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		ext := filepath.Ext(e.Name())
		if !isThemeExt(ext) {
			continue
		}

		name := strings.TrimSuffix(e.Name(), ext)
		if !validName.MatchString(name) || seen[name] {
			continue
		}

		seen[name] = true
		extra = append(extra, name)
	}

	sort.Strings(extra)

	return append(names, extra...), nil
}

// Load returns the named theme as a JSON string.
func (s *Store) Load(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	for _, ext := range extensions {
		path := filepath.Join(s.dir, name+ext)

		data, err := os.ReadFile(path) //nolint:gosec // name is validated
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return "", fmt.Errorf("loading theme %q: %w", name, err)
		}

		return toJSON(name, ext, data)
	}

	return "", fmt.Errorf("%w: %q in %s", ErrNotFound, name, s.dir)
}

func toJSON(name, ext string, data []byte) (string, error) {
	if ext == ".json" {
		if !json.Valid(data) {
			return "", fmt.Errorf("loading theme %q: invalid JSON", name)
		}

		return string(data), nil
	}

	out, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return "", fmt.Errorf("loading theme %q: %w", name, err)
	}

	return string(out), nil
}

func isThemeExt(ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}

	return false
}
