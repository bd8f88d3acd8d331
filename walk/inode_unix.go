//go:build !windows

// inode_unix.go - (device, inode) extraction for hardlink detection
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
	"syscall"

	sv "github.com/opencoff/spaceview"
)

// inodeKey extracts the (device, inode) pair from a regular file's
// os.FileInfo. The second return value is false when the underlying
// Sys() value isn't a *syscall.Stat_t (e.g. some virtual filesystems).
func inodeKey(fi os.FileInfo) (sv.InodeKey, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return sv.InodeKey{}, false
	}
	return sv.InodeKey{Dev: uint64(st.Dev), Ino: st.Ino}, true
}
