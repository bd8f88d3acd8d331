// ignore.go - gitignore-syntax ignore pattern matching for the walker
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

package walk

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// spaceignoreFile is the per-directory ignore file consulted in
// addition to the configured ignore patterns, same syntax as
// .gitignore.
const spaceignoreFile = ".spaceignore"

// gitignoreMatcher adapts github.com/sabhiram/go-gitignore to the
// IgnoreMatcher interface.
type gitignoreMatcher struct {
	gi *gitignore.GitIgnore
}

// NewIgnoreMatcher compiles patterns together with the contents of
// root/.spaceignore (if present) into a single IgnoreMatcher. A
// missing .spaceignore is not an error.
func NewIgnoreMatcher(root string, patterns []string) (IgnoreMatcher, error) {
	lines := make([]string, 0, len(patterns)+16)
	lines = append(lines, patterns...)

	if data, err := os.ReadFile(filepath.Join(root, spaceignoreFile)); err == nil {
		lines = append(lines, splitLines(string(data))...)
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	gi := gitignore.CompileIgnoreLines(lines...)
	return gitignoreMatcher{gi: gi}, nil
}

func (m gitignoreMatcher) Match(relPath string, isDir bool) bool {
	if isDir {
		// go-gitignore's matching is sensitive to a trailing slash
		// for directory-only patterns (e.g. "build/").
		return m.gi.MatchesPath(relPath + "/")
	}
	return m.gi.MatchesPath(relPath)
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
