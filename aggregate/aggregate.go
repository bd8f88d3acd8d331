// aggregate.go - links entries into a tree and sums directory sizes
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

// Package aggregate turns the Node Store's flat path -> entry map
// into a linked tree and computes, bottom-up, every directory's
// cumulative size and file/subdirectory counts. The walk that
// produced the entries has no parent/child ordering guarantee, so
// linking is a separate pass; summing is iterative (an explicit
// stack) to avoid recursion blowing the goroutine stack on
// pathologically deep trees.
package aggregate

import (
	"path/filepath"
	"sync/atomic"

	sv "github.com/opencoff/spaceview"
)

// Source is the subset of store.Store the Aggregator depends on.
type Source interface {
	Get(path string) (*sv.Entry, bool)
	Range(fn func(path string, e *sv.Entry) bool)
}

// linkBatchSize bounds how many parent/child pairs are processed
// before the link pass yields, keeping latency predictable on very
// large trees without adding real concurrency (the store's map
// iteration order already forbids it).
const linkBatchSize = 50_000

// Run links every entry to its parent directory and then computes,
// bottom-up from root, each directory's aggregate size and counts. It
// mutates the entries in place via Source.Get. cancel may be nil; if
// set and observed true, Run stops at the next batch/frame boundary
// and returns sv.ErrCancelled, leaving the tree only partially
// aggregated.
func Run(src Source, root string, cancel *atomic.Bool) error {
	root = filepath.Clean(root)

	if err := link(src, root, cancel); err != nil {
		return err
	}
	return sumSizes(src, root, cancel)
}

func cancelled(cancel *atomic.Bool) bool {
	return cancel != nil && cancel.Load()
}

func link(src Source, root string, cancel *atomic.Bool) error {
	type pair struct {
		parent, child string
	}
	batch := make([]pair, 0, linkBatchSize)

	var stop bool
	flush := func() {
		if cancelled(cancel) {
			stop = true
			return
		}
		for _, p := range batch {
			if parent, ok := src.Get(p.parent); ok && parent.IsDir {
				parent.AddChild(p.child)
			}
		}
		batch = batch[:0]
	}

	src.Range(func(path string, e *sv.Entry) bool {
		if path == root {
			return true
		}
		parent := filepath.Dir(path)
		batch = append(batch, pair{parent, path})
		if len(batch) >= linkBatchSize {
			flush()
		}
		return !stop
	})
	if !stop {
		flush()
	}

	if stop {
		return sv.ErrCancelled
	}
	return nil
}

// frame is one stack entry in the iterative post-order walk: the
// entry being summed, and whether its children have already been
// pushed for processing.
type frame struct {
	path    string
	visited bool
}

func sumSizes(src Source, root string, cancel *atomic.Bool) error {
	stack := []frame{{root, false}}

	for len(stack) > 0 {
		if cancelled(cancel) {
			return sv.ErrCancelled
		}

		top := &stack[len(stack)-1]

		e, ok := src.Get(top.path)
		if !ok {
			stack = stack[:len(stack)-1]
			continue
		}

		if !e.IsDir {
			stack = stack[:len(stack)-1]
			continue
		}

		if top.visited {
			// all children summed; fold them into this directory
			var size, files, dirs int64
			for _, childPath := range e.Children {
				child, ok := src.Get(childPath)
				if !ok {
					continue
				}
				if child.IsDir {
					size += child.Size
					files += child.FileCount
					dirs += child.DirCount + 1
				} else {
					size += child.Size
					files++
				}
			}
			e.Size = size
			e.FileCount = files
			e.DirCount = dirs
			stack = stack[:len(stack)-1]
			continue
		}

		top.visited = true
		for _, childPath := range e.Children {
			if child, ok := src.Get(childPath); ok && child.IsDir {
				stack = append(stack, frame{childPath, false})
			}
		}
	}

	return nil
}
