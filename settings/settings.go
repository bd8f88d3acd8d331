// settings.go - user-configurable scan preferences, persisted as JSON
//
// (c) 2024 Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package settings holds the scan engine's user-configurable
// preferences and persists them as a single JSON file in the user's
// config directory.
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// CurrentVersion is bumped whenever the on-disk shape changes in a
// way a future migration needs to detect.
const CurrentVersion = 1

// Settings is the full set of user preferences. MaxScanDepth of 0
// means unlimited, matching walk.Options.
type Settings struct {
	Version             int      `json:"version"`
	MaxScanDepth        int      `json:"max_scan_depth"`
	IgnorePatterns      []string `json:"ignore_patterns"`
	ShowHiddenFiles     bool     `json:"show_hidden_files"`
	SizeUnit            string   `json:"size_unit"` // "si" or "binary"
	DefaultTheme        string   `json:"default_theme"`
	EnableCache         bool     `json:"enable_cache"`
	AutoExpandLargeFiles bool    `json:"auto_expand_large_files"`
	LargeFilesCount     int      `json:"large_files_count"`
	DuplicateMinSize    int64    `json:"duplicate_min_size"`
}

// Default returns the built-in preferences, used whenever no settings
// file exists yet or an existing one fails to parse.
func Default() Settings {
	return Settings{
		Version:      CurrentVersion,
		MaxScanDepth: 0,
		IgnorePatterns: []string{
			".git", ".svn", ".hg", "node_modules", ".DS_Store", "Thumbs.db",
		},
		ShowHiddenFiles:      false,
		SizeUnit:             "si",
		DefaultTheme:         "",
		EnableCache:          true,
		AutoExpandLargeFiles: false,
		LargeFilesCount:      20,
		DuplicateMinSize:     1024,
	}
}

// Store guards a Settings value behind a mutex and persists it to a
// single JSON file.
type Store struct {
	path string

	mu   sync.Mutex
	curr Settings
}

// Open loads settings from path, falling back to Default() if the
// file doesn't exist or fails to parse - mirroring the "never block a
// scan on a broken preferences file" behavior.
func Open(path string) *Store {
	s := &Store{path: path, curr: Default()}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		return s
	}

	s.curr = loaded
	return s
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.curr
}

// Save writes next to disk (creating the parent directory if needed)
// and, on success, makes it the current value.
func (s *Store) Save(next Settings) error {
	next.Version = CurrentVersion

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return err
	}

	s.mu.Lock()
	s.curr = next
	s.mu.Unlock()
	return nil
}

// Update applies fn to a copy of the current settings and persists the
// result.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	cur := s.Get()
	fn(&cur)
	if err := s.Save(cur); err != nil {
		return Settings{}, err
	}
	return cur, nil
}

// Reset writes the built-in defaults and returns them.
func (s *Store) Reset() (Settings, error) {
	d := Default()
	if err := s.Save(d); err != nil {
		return Settings{}, err
	}
	return d, nil
}

// AddIgnorePattern appends pattern if not already present.
func (s *Store) AddIgnorePattern(pattern string) (Settings, error) {
	return s.Update(func(cur *Settings) {
		for _, p := range cur.IgnorePatterns {
			if p == pattern {
				return
			}
		}
		cur.IgnorePatterns = append(cur.IgnorePatterns, pattern)
	})
}

// RemoveIgnorePattern removes every occurrence of pattern.
func (s *Store) RemoveIgnorePattern(pattern string) (Settings, error) {
	return s.Update(func(cur *Settings) {
		out := cur.IgnorePatterns[:0]
		for _, p := range cur.IgnorePatterns {
			if p != pattern {
				out = append(out, p)
			}
		}
		cur.IgnorePatterns = out
	})
}
