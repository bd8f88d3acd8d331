// splice.go - targeted subtree replacement for the Incremental Controller
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

package engine

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	sv "github.com/opencoff/spaceview"
	"github.com/opencoff/spaceview/aggregate"
	"github.com/opencoff/spaceview/project"
	"github.com/opencoff/spaceview/store"
	"github.com/opencoff/spaceview/walk"
)

// spliceSubtree re-walks the dirty directory dirtyPath and grafts the
// result into e.lastTree in place, recomputing every ancestor's
// size/file_count/dir_count on the way back to the root. If dirtyPath
// itself isn't present in the tree (a newly created directory, or one
// whose parent chain was itself restructured), it promotes to the
// parent directory and retries, continuing until it lands on a path
// the tree already has - in the worst case, the scan root, which is
// always present.
func (e *Engine) spliceSubtree(ctx context.Context, dirtyPath string) error {
	dir := filepath.Clean(dirtyPath)

	for {
		target := e.lastTree.Find(dir)
		if target == nil {
			parent := filepath.Dir(dir)
			if parent == dir || !strings.HasPrefix(dir, e.lastRoot) {
				return &sv.ScanError{Op: "splice", Path: dirtyPath, Err: sv.ErrCacheMiss}
			}
			dir = parent
			continue
		}

		fresh, err := e.rewalkSubtree(ctx, dir)
		if err != nil {
			return err
		}

		if dir == e.lastRoot {
			e.lastTree = fresh
			return nil
		}

		if !graft(e.lastTree, dir, fresh) {
			// the node we just found vanished under us (a concurrent
			// delete); promote to the parent and retry once more.
			dir = filepath.Dir(dir)
			continue
		}
		return nil
	}
}

// rewalkSubtree walks, aggregates and projects just the subtree rooted
// at dir, using the same ignore/hidden-file policy as a full Scan.
func (e *Engine) rewalkSubtree(ctx context.Context, dir string) (*sv.Node, error) {
	opts := e.walkOptions()
	ignore, err := walk.NewIgnoreMatcher(e.lastRoot, e.settings.Get().IgnorePatterns)
	if err != nil {
		return nil, &sv.ScanError{Op: "ignore-patterns", Path: dir, Err: err}
	}
	opts.Ignore = ignore

	st := store.New()
	cancelled, err := walk.Walk(dir, st, opts)
	if err != nil {
		return nil, &sv.ScanError{Op: "walk", Path: dir, Err: err}
	}
	if cancelled {
		return nil, sv.ErrCancelled
	}

	if err := aggregate.Run(st, dir, &e.cancel); err != nil {
		return nil, err
	}
	return project.Build(st, dir, project.DefaultLimits(), &e.cancel)
}

// graft finds the node whose ID equals targetPath beneath root and
// replaces it with replacement, then recomputes the aggregate
// size/file_count/dir_count of every node on the path back up to root.
// It reports whether targetPath was found.
func graft(root *sv.Node, targetPath string, replacement *sv.Node) bool {
	if root.ID == targetPath {
		*root = *replacement
		return true
	}

	for i, c := range root.Children {
		if c.IsOverflow() || (c.ID != targetPath && !strings.HasPrefix(targetPath, c.ID+string(filepath.Separator))) {
			continue
		}
		if !graft(c, targetPath, replacement) {
			return false
		}
		root.Children[i] = c
		resortChildren(root.Children)
		recomputeAggregate(root)
		return true
	}
	return false
}

func resortChildren(children []*sv.Node) {
	sort.Slice(children, func(i, j int) bool { return children[i].Size > children[j].Size })
}

// recomputeAggregate folds n's direct children back into n's own
// size/file_count/dir_count, the same rule aggregate.sumSizes applies
// during a full scan.
func recomputeAggregate(n *sv.Node) {
	var size, files, dirs int64
	for _, c := range n.Children {
		size += c.Size
		if c.IsOverflow() {
			files += c.FileCount
			dirs += c.DirCount
			continue
		}
		if c.IsDir {
			files += c.FileCount
			dirs += c.DirCount + 1
		} else {
			files++
		}
	}
	n.Size = size
	n.FileCount = files
	n.DirCount = dirs
}
