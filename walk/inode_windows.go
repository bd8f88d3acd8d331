//go:build windows

// inode_windows.go - hardlink detection is unavailable without an
// open file handle on Windows; the walker degrades to "never a
// duplicate".
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

	sv "github.com/opencoff/spaceview"
)

func inodeKey(fi os.FileInfo) (sv.InodeKey, bool) {
	return sv.InodeKey{}, false
}
