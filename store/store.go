// store.go - the lock-free Node Store populated during a walk
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

// Package store holds the flat, concurrent path -> Entry map built
// during a walk, and the hardlink accounting that goes with it. It
// implements walk.Sink so a Walker can write into it with a single
// lock-free insertion per surviving entry.
package store

import (
	"fmt"
	"sync/atomic"

	sv "github.com/opencoff/spaceview"
	"github.com/puzpuzpuz/xsync/v3"
)

// Store is a concurrency-safe, append-mostly map of every entry
// observed during a scan, keyed by absolute path. Regular files that
// share a (device, inode) pair with an earlier observation have their
// Size zeroed on the second and subsequent sightings, so a later
// size-aggregation pass never double-counts a hardlinked file (§4.2).
type Store struct {
	entries *xsync.MapOf[string, *sv.Entry]
	inodes  *xsync.MapOf[string, struct{}]

	files, dirs atomic.Int64
	totalSize   atomic.Int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		entries: xsync.NewMapOf[string, *sv.Entry](),
		inodes:  xsync.NewMapOf[string, struct{}](),
	}
}

// Insert implements walk.Sink. It is safe for concurrent callers.
func (s *Store) Insert(e *sv.Entry) {
	if e.IsDir {
		s.dirs.Add(1)
	} else {
		s.files.Add(1)
		if e.HasInode {
			key := inodeKey(e.Inode)
			if _, seen := s.inodes.LoadOrStore(key, struct{}{}); seen {
				e.Size = 0
			}
		}
		s.totalSize.Add(e.Size)
	}
	s.entries.Store(e.Path, e)
}

// Get returns the entry recorded for path, or nil.
func (s *Store) Get(path string) (*sv.Entry, bool) {
	return s.entries.Load(path)
}

// Range calls fn for every entry in the store. Iteration order is
// unspecified, matching the underlying map.
func (s *Store) Range(fn func(path string, e *sv.Entry) bool) {
	s.entries.Range(fn)
}

// Len returns the number of entries currently stored.
func (s *Store) Len() int {
	return s.entries.Size()
}

// Stats returns running totals maintained during insertion: file
// count, directory count and the sum of file sizes (after hardlink
// dedup). These are cheap O(1) reads, useful for progress reporting
// before a full aggregation pass runs.
func (s *Store) Stats() (files, dirs, size int64) {
	return s.files.Load(), s.dirs.Load(), s.totalSize.Load()
}

// Delete removes an entry and takes it off the file/dir/size totals.
// The incremental splice does not call it: it re-walks a dirty
// subtree into a fresh store instead.
func (s *Store) Delete(path string) {
	if e, ok := s.entries.LoadAndDelete(path); ok && !e.IsDir {
		s.files.Add(-1)
		s.totalSize.Add(-e.Size)
	} else if ok {
		s.dirs.Add(-1)
	}
}

func inodeKey(k sv.InodeKey) string {
	return fmt.Sprintf("%d:%d", k.Dev, k.Ino)
}
