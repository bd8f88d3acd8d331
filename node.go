// node.go - the exported, bounded tree handed to clients and cached
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

import "strings"

// OverflowSuffix is appended to a parent path to build the id of a
// synthetic overflow node. It is a UI sentinel, never a Node Store
// lookup key - a real file named "__other__" in that directory would
// collide with it, and implementations must not resolve it.
const OverflowSuffix = "/__other__"

// Node is a recursive record in the exported, depth/fan-out/total-
// bounded tree produced by the Tree Projector.
type Node struct {
	ID    string // absolute path; stable across projections of the same store
	Name  string
	Path  string
	Size  int64
	IsDir bool
	Ext   string
	MTime int64

	FileCount int64
	DirCount  int64

	Children []*Node

	// Diff bookkeeping, populated by the Incremental Controller and
	// Snapshot Differ when applicable; zero-valued otherwise.
	IsNew     bool
	IsDeleted bool
	PrevSize  int64
}

// IsOverflow reports whether n is a synthetic "<K more items>" node.
func (n *Node) IsOverflow() bool {
	return strings.HasSuffix(n.ID, OverflowSuffix)
}

// SizeChange returns n.Size - n.PrevSize, meaningful only once a diff
// pass has populated PrevSize.
func (n *Node) SizeChange() int64 {
	return n.Size - n.PrevSize
}

// Walk visits n and every descendant, depth first, pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the descendant (or n itself) whose ID equals path, or
// nil. Overflow sentinel nodes are never matched - see OverflowSuffix.
func (n *Node) Find(path string) *Node {
	if n.IsOverflow() {
		return nil
	}
	if n.ID == path {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(path); found != nil {
			return found
		}
	}
	return nil
}
