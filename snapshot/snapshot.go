// snapshot.go - compares two scans of the same root taken at different times
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

// Package snapshot flattens two projected Node trees into path-keyed
// maps and diffs them: entries present only in the new tree are
// additions, entries present only in the old tree are removals, and
// entries present in both with a different size are changes.
package snapshot

import (
	"sort"

	sv "github.com/opencoff/spaceview"
)

// File is a single entry surfaced in a Result.
type File struct {
	Path     string
	Name     string
	Size     int64
	IsDir    bool
	Modified int64
}

// Changed is a path whose size differs between the two snapshots.
type Changed struct {
	Path     string
	Name     string
	OldSize  int64
	NewSize  int64
	SizeDiff int64
	IsDir    bool
}

// Result is the outcome of comparing two snapshots of the same root.
type Result struct {
	ScanPath     string
	OldTimestamp int64
	NewTimestamp int64

	Added   []File
	Removed []File
	Changed []Changed

	AddedSize     int64
	RemovedSize   int64
	NetSizeChange int64
	UnchangedCount int64
}

func flatten(n *sv.Node, base string) map[string]*sv.Node {
	m := make(map[string]*sv.Node)
	flattenInto(n, base, m)
	return m
}

func flattenInto(n *sv.Node, base string, m map[string]*sv.Node) {
	path := n.Name
	if base != "" {
		path = base + "/" + n.Name
	}
	m[path] = n
	for _, c := range n.Children {
		if c.IsOverflow() {
			continue
		}
		flattenInto(c, path, m)
	}
}

// Compare diffs oldRoot against newRoot, both projections of the same
// scan path taken at oldTimestamp and newTimestamp (unix seconds).
func Compare(oldRoot, newRoot *sv.Node, scanPath string, oldTimestamp, newTimestamp int64) Result {
	oldFiles := flatten(oldRoot, "")
	newFiles := flatten(newRoot, "")

	var added, removed []File
	var changed []Changed
	var unchanged int64

	for path, n := range newFiles {
		if _, ok := oldFiles[path]; !ok {
			added = append(added, toFile(path, n))
		}
	}
	for path, n := range oldFiles {
		if _, ok := newFiles[path]; !ok {
			removed = append(removed, toFile(path, n))
		}
	}
	for path, oldN := range oldFiles {
		newN, ok := newFiles[path]
		if !ok {
			continue
		}
		if oldN.Size != newN.Size {
			changed = append(changed, Changed{
				Path:     path,
				Name:     newN.Name,
				OldSize:  oldN.Size,
				NewSize:  newN.Size,
				SizeDiff: newN.Size - oldN.Size,
				IsDir:    newN.IsDir,
			})
		} else {
			unchanged++
		}
	}

	sort.Slice(added, func(i, j int) bool { return added[i].Size > added[j].Size })
	sort.Slice(removed, func(i, j int) bool { return removed[i].Size > removed[j].Size })
	sort.Slice(changed, func(i, j int) bool { return abs64(changed[i].SizeDiff) > abs64(changed[j].SizeDiff) })

	var addedSize, removedSize, changeDiff int64
	for _, f := range added {
		if !f.IsDir {
			addedSize += f.Size
		}
	}
	for _, f := range removed {
		if !f.IsDir {
			removedSize += f.Size
		}
	}
	for _, c := range changed {
		if !c.IsDir {
			changeDiff += c.SizeDiff
		}
	}

	return Result{
		ScanPath:       scanPath,
		OldTimestamp:   oldTimestamp,
		NewTimestamp:   newTimestamp,
		Added:          added,
		Removed:        removed,
		Changed:        changed,
		AddedSize:      addedSize,
		RemovedSize:    removedSize,
		NetSizeChange:  addedSize - removedSize + changeDiff,
		UnchangedCount: unchanged,
	}
}

func toFile(path string, n *sv.Node) File {
	return File{Path: path, Name: n.Name, Size: n.Size, IsDir: n.IsDir, Modified: n.MTime}
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
