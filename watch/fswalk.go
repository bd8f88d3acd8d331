// fswalk.go - tiny directory-only walk helper used to arm a recursive watch
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

package watch

import (
	"io/fs"
	"os"
	"path/filepath"
)

// filepathWalkDirs calls fn for dir and every directory beneath it,
// skipping symlinks. fsnotify has no recursive-add of its own, so
// arming a watch on a whole tree means walking it once up front.
func filepathWalkDirs(dir string, fn func(string) error) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable subtrees rather than abort
		}
		if d.Type()&os.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return fn(path)
	})
}

// statDir reports whether path currently exists and is a directory.
func statDir(path string) (bool, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return fi.IsDir(), nil
}
