// entry.go - the internal per-path observation recorded during a walk
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

package spaceview

import (
	"path/filepath"
	"strings"
	"sync"
)

// InodeKey identifies a file by (device, inode) pair for hardlink
// detection. Directories never carry one.
type InodeKey struct {
	Dev uint64
	Ino uint64
}

// Entry is the interned per-path observation produced by the Walker
// and consumed by the Aggregator. Only files carry an InodeKey; only
// directories carry a non-nil Children slice.
type Entry struct {
	Path  string
	Name  string
	IsDir bool
	Size  int64
	Ext   string
	MTime int64 // unix seconds; 0 if unknown

	mu       sync.Mutex
	Children []string // absolute paths, insertion order; nil for files

	Inode    InodeKey
	HasInode bool

	// FileCount and DirCount are populated by the Aggregator's
	// post-order pass for directory entries: the total number of
	// files and subdirectories anywhere beneath this one.
	FileCount int64
	DirCount  int64
}

// NewFileEntry builds an Entry for a regular file observation.
func NewFileEntry(path string, size int64, mtime int64, inode InodeKey, hasInode bool) *Entry {
	return &Entry{
		Path:     path,
		Name:     filepath.Base(path),
		IsDir:    false,
		Size:     size,
		Ext:      fileExt(path),
		MTime:    mtime,
		Inode:    inode,
		HasInode: hasInode,
	}
}

// NewDirEntry builds an Entry for a directory observation. Its
// Children slice starts empty and is appended to by the Aggregator's
// link pass.
func NewDirEntry(path string, mtime int64) *Entry {
	return &Entry{
		Path:     path,
		Name:     filepath.Base(path),
		IsDir:    true,
		MTime:    mtime,
		Children: make([]string, 0, 8),
	}
}

// AddChild appends a child's absolute path under a short critical
// section; safe for concurrent callers during the Aggregator's link
// pass.
func (e *Entry) AddChild(path string) {
	e.mu.Lock()
	e.Children = append(e.Children, path)
	e.mu.Unlock()
}

func fileExt(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
