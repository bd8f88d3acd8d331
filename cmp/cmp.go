// cmp.go - compare two directory trees
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

// Package cmp implements the two-tree comparator: given two scan
// roots, it classifies every relative path into left-only,
// right-only, common-and-identical, common-but-different, or "funny"
// (same name, different entry kind). Files of different size are
// different; for files of equal size a caller-supplied deep-equality
// hook (normally backed by the content hasher) decides, and without
// one they are counted as different. Mtime is not compared.
package cmp

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	sv "github.com/opencoff/spaceview"
	"github.com/opencoff/spaceview/walk"
	"github.com/puzpuzpuz/xsync/v3"
)

// EntryMap is a concurrency-safe map of relative path to entry.
type EntryMap = xsync.MapOf[string, *sv.Entry]

// Pair holds the left and right entry for a path common to both
// trees.
type Pair struct {
	Left, Right *sv.Entry
}

// PairMap is a concurrency-safe map of relative path to Pair.
type PairMap = xsync.MapOf[string, Pair]

func newMap() *EntryMap     { return xsync.NewMapOf[string, *sv.Entry]() }
func newPairMap() *PairMap  { return xsync.NewMapOf[string, Pair]() }

type cmpopt struct {
	walk.Options

	// deepEq is consulted only for a regular-file pair of equal
	// size; mtime is not compared. Typically backed by the
	// content hasher's partial/full comparison.
	deepEq func(lhs, rhs *sv.Entry) (bool, error)
}

func defaultOptions() cmpopt {
	return cmpopt{
		Options: walk.Options{
			Concurrency: runtime.NumCPU(),
		},
	}
}

// Option configures a directory-tree comparison.
type Option func(o *cmpopt)

// WithWalkOptions overrides the traversal options (ignore patterns,
// hidden-file policy, max depth) used on both sides.
func WithWalkOptions(wo walk.Options) Option {
	return func(o *cmpopt) {
		o.Options = wo
	}
}

// WithDeepCompare supplies a content-equality hook, invoked only when
// two same-sized regular files cannot be ruled unequal by metadata
// alone.
func WithDeepCompare(same func(lhs, rhs *sv.Entry) (bool, error)) Option {
	return func(o *cmpopt) {
		o.deepEq = same
	}
}

// Difference is the classified result of comparing two trees.
type Difference struct {
	Left, Right string

	LeftOnlyDirs, LeftOnlyFiles   *EntryMap
	RightOnlyDirs, RightOnlyFiles *EntryMap

	CommonDirs, CommonFiles *PairMap

	Diff  *PairMap // common path, different content/metadata
	Funny *PairMap // common path, different entry kind (file vs dir)
}

func (d *Difference) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "compare %s vs %s\n", d.Left, d.Right)
	fmt.Fprintf(&b, "  left-only dirs=%d files=%d\n", d.LeftOnlyDirs.Size(), d.LeftOnlyFiles.Size())
	fmt.Fprintf(&b, "  right-only dirs=%d files=%d\n", d.RightOnlyDirs.Size(), d.RightOnlyFiles.Size())
	fmt.Fprintf(&b, "  common dirs=%d files=%d\n", d.CommonDirs.Size(), d.CommonFiles.Size())
	fmt.Fprintf(&b, "  diff=%d funny=%d\n", d.Diff.Size(), d.Funny.Size())
	return b.String()
}

type cmp struct {
	cmpopt
	left, right string

	leftEntries, rightEntries *EntryMap
}

// DirTree compares the two directory trees rooted at left and right.
func DirTree(left, right string, opt ...Option) (*Difference, error) {
	o := defaultOptions()
	for _, fn := range opt {
		fn(&o)
	}

	c := &cmp{
		cmpopt:       o,
		left:         filepath.Clean(left),
		right:        filepath.Clean(right),
		leftEntries:  newMap(),
		rightEntries: newMap(),
	}

	if err := c.gather(c.left, c.leftEntries); err != nil {
		return nil, &Error{"walk-left", left, right, err}
	}
	if err := c.gather(c.right, c.rightEntries); err != nil {
		return nil, &Error{"walk-right", left, right, err}
	}

	return c.classify()
}

type mapSink struct{ m *EntryMap }

func (s mapSink) Insert(e *sv.Entry) { s.m.Store(e.Path, e) }

func (c *cmp) gather(root string, into *EntryMap) error {
	_, err := walk.Walk(root, mapSink{into}, c.Options)
	return err
}

func (c *cmp) classify() (*Difference, error) {
	d := &Difference{
		Left:          c.left,
		Right:         c.right,
		LeftOnlyDirs:  newMap(),
		LeftOnlyFiles: newMap(),
		RightOnlyDirs: newMap(),
		RightOnlyFiles: newMap(),
		CommonDirs:    newPairMap(),
		CommonFiles:   newPairMap(),
		Diff:          newPairMap(),
		Funny:         newPairMap(),
	}

	var classifyErr error

	c.leftEntries.Range(func(path string, lhs *sv.Entry) bool {
		rel, err := filepath.Rel(c.left, path)
		if err != nil {
			classifyErr = err
			return false
		}
		if rel == "." {
			return true
		}

		rpath := filepath.Join(c.right, rel)
		rhs, ok := c.rightEntries.Load(rpath)
		if !ok {
			if lhs.IsDir {
				d.LeftOnlyDirs.Store(rel, lhs)
			} else {
				d.LeftOnlyFiles.Store(rel, lhs)
			}
			return true
		}

		pair := Pair{lhs, rhs}

		if lhs.IsDir != rhs.IsDir {
			d.Funny.Store(rel, pair)
			return true
		}

		if lhs.IsDir {
			d.CommonDirs.Store(rel, pair)
			return true
		}

		eq, err := c.filesEqual(lhs, rhs)
		if err != nil {
			classifyErr = err
			return false
		}
		if eq {
			d.CommonFiles.Store(rel, pair)
		} else {
			d.Diff.Store(rel, pair)
		}
		return true
	})

	if classifyErr != nil {
		return nil, classifyErr
	}

	c.rightEntries.Range(func(path string, rhs *sv.Entry) bool {
		rel, err := filepath.Rel(c.right, path)
		if err != nil {
			classifyErr = err
			return false
		}
		if rel == "." {
			return true
		}

		lpath := filepath.Join(c.left, rel)
		if _, ok := c.leftEntries.Load(lpath); ok {
			return true // already classified above
		}

		if rhs.IsDir {
			d.RightOnlyDirs.Store(rel, rhs)
		} else {
			d.RightOnlyFiles.Store(rel, rhs)
		}
		return true
	})

	if classifyErr != nil {
		return nil, classifyErr
	}

	return d, nil
}

func (c *cmp) filesEqual(lhs, rhs *sv.Entry) (bool, error) {
	if lhs.Size != rhs.Size {
		return false, nil
	}
	if c.deepEq != nil {
		return c.deepEq(lhs, rhs)
	}
	// no deep-compare hook: sizes match but content was never
	// verified. Equal mtimes are not proof of equal content, so we
	// treat this pair as different rather than silently calling it
	// identical.
	return false, nil
}
