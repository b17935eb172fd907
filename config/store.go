// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Store owns the merged, resolved configuration tree of one configuration
// directory. A process constructs exactly one Store per logical
// configuration root and shares it by handle; every reader observes the same
// tree without further wiring.
//
// A Store is safe for concurrent use: reads share an RWMutex, while
// [Store.Reload] and [Store.Set] take it exclusively and swap or mutate the
// tree under the lock.
type Store struct {
	mu             sync.RWMutex
	dir            string
	autoCreateDirs bool
	tree           map[string]any
	files          []string
}

// Option configures a [Store] during construction.
type Option func(*Store)

// WithAutoCreateDirs controls whether every directory named in the reserved
// "paths" subtree is created after a successful load. Enabled by default.
func WithAutoCreateDirs(enabled bool) Option {
	return func(s *Store) {
		s.autoCreateDirs = enabled
	}
}

// New constructs a Store pointed at dir. The directory is not read until
// [Store.Load] or [Store.Reload] is called.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:            dir,
		autoCreateDirs: true,
		tree:           map[string]any{},
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Dir returns the configuration directory the store currently points at.
func (s *Store) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Load points the store at dir and reads it, replacing the held tree. It is
// equivalent to SetDir followed by Reload.
func (s *Store) Load(dir string) {
	s.SetDir(dir)
	s.Reload()
}

// SetDir re-points the store at a different configuration directory. The
// tree is untouched until the next Reload.
func (s *Store) SetDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dir = dir
}

// Reload discards the held tree and rebuilds it from the configured
// directory: recognized files are parsed, merged in deterministic order,
// and placeholders are resolved against the process environment. The new
// tree replaces the old one atomically.
//
// Reload never fails. A missing directory yields an empty tree; a malformed
// file is skipped with a warning and the remaining files are still merged.
func (s *Store) Reload() {
	s.mu.Lock()
	tree, files := loadDirectory(s.dir)
	s.tree = tree
	s.files = files
	auto := s.autoCreateDirs
	s.mu.Unlock()

	if auto {
		s.createDirectories()
	}
}

// loadDirectory performs one full load pass over dir and returns the
// resolved tree together with the contributing file names in merge order.
func loadDirectory(dir string) (map[string]any, []string) {
	tree := map[string]any{}
	var files []string

	for _, src := range discover(dir) {
		fragment, err := loadFile(src.path, src.format)
		if err != nil {
			log.Warn().Err(err).Str("file", src.path).Msg("skipping config file")
			continue
		}

		mergeTree(tree, fragment)
		files = append(files, filepath.Base(src.path))
	}

	resolved, ok := Resolve(tree, tree, os.LookupEnv).(map[string]any)
	if !ok {
		resolved = map[string]any{}
	}

	return resolved, files
}

// Get returns the value at the dot-separated path, or def when any segment
// is absent, the value is an explicit null, or the traversal reaches a
// non-mapping before the path is exhausted.
func (s *Store) Get(path string, def any) any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := any(s.tree)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return def
		}
		next, ok := m[part]
		if !ok {
			return def
		}
		current = next
	}

	if current == nil {
		return def
	}
	return current
}

// GetString returns the string at path, or def when the key is absent or
// holds a non-string value.
func (s *Store) GetString(path string, def string) string {
	if v, ok := s.Get(path, nil).(string); ok {
		return v
	}
	return def
}

// GetInt returns the integer at path. Numeric leaves arrive as different
// concrete types depending on the source format, so all of them are
// accepted; anything else yields def.
func (s *Store) GetInt(path string, def int) int {
	switch v := s.Get(path, nil).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// GetBool returns the boolean at path, or def when the key is absent or
// holds a non-boolean value.
func (s *Store) GetBool(path string, def bool) bool {
	if v, ok := s.Get(path, nil).(bool); ok {
		return v
	}
	return def
}

// GetPath returns the string at path converted to an absolute filesystem
// path. An absent key yields def (also absolutized when non-empty).
func (s *Store) GetPath(path string, def string) string {
	value := s.GetString(path, def)
	if value == "" {
		return ""
	}

	abs, err := filepath.Abs(value)
	if err != nil {
		return value
	}
	return abs
}

// Has reports whether a value exists at the dot-separated path, using the
// same traversal rule as [Store.Get].
func (s *Store) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	current := any(s.tree)
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		next, ok := m[part]
		if !ok {
			return false
		}
		current = next
	}

	return true
}

// Set writes value at the dot-separated path, creating intermediate
// mappings as needed. Existing non-mapping intermediates are replaced. The
// change lives in memory only and is lost on the next Reload.
func (s *Store) Set(path string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(path, ".")
	current := s.tree
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = value
}

// All returns a deep copy of the held tree.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied, _ := copyTree(s.tree).(map[string]any)
	return copied
}

// ListLoadedFiles returns the file names that contributed to the current
// tree, in the order they were merged.
func (s *Store) ListLoadedFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]string, len(s.files))
	copy(files, s.files)
	return files
}

// createDirectories scans the reserved "paths" subtree and creates every
// directory it declares, parents included. A string value counts as a
// directory when its key name contains "dir" or "path" (case-insensitive);
// string elements of sequences always count. Creation failures are
// swallowed.
func (s *Store) createDirectories() {
	createDirs(s.Get("paths", nil))
}

func createDirs(value any) {
	switch typed := value.(type) {
	case map[string]any:
		for key, item := range typed {
			if dir, ok := item.(string); ok && isPathKey(key) {
				_ = os.MkdirAll(dir, 0o755)
			} else {
				createDirs(item)
			}
		}
	case []any:
		// Only string elements name directories; nested objects inside a
		// sequence are skipped.
		for _, item := range typed {
			if dir, ok := item.(string); ok {
				_ = os.MkdirAll(dir, 0o755)
			}
		}
	}
}

func isPathKey(key string) bool {
	lower := strings.ToLower(key)
	return strings.Contains(lower, "dir") || strings.Contains(lower, "path")
}
