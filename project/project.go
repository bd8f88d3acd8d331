// project.go - builds the bounded, UI-facing tree from aggregated entries
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

// Package project turns an aggregated Node Store into the bounded
// Node tree handed to clients and the cache store: children sorted
// largest-first, and three hard caps (fan-out, depth, total node
// count) enforced by folding the overflow into a synthetic node
// rather than silently dropping data.
package project

import (
	"fmt"
	"sort"
	"sync/atomic"

	sv "github.com/opencoff/spaceview"
)

// Limits bounds a single projection. Zero values fall back to the
// defaults below.
type Limits struct {
	MaxChildren  int
	MaxDepth     int
	MaxTotalNode int
}

// DefaultLimits matches the scan engine's hard caps.
func DefaultLimits() Limits {
	return Limits{
		MaxChildren:  500,
		MaxDepth:     25,
		MaxTotalNode: 200_000,
	}
}

// Source is the subset of store.Store the projector depends on.
type Source interface {
	Get(path string) (*sv.Entry, bool)
}

type projector struct {
	src    Source
	lim    Limits
	nodes  int
	cancel *atomic.Bool
}

// Build projects the aggregated tree rooted at root into a bounded
// *sv.Node. The Aggregator must have already run over src. cancel may
// be nil; if set and observed true, Build stops recursing and returns
// sv.ErrCancelled rather than a partial tree.
func Build(src Source, root string, lim Limits, cancel *atomic.Bool) (*sv.Node, error) {
	if lim.MaxChildren <= 0 {
		lim.MaxChildren = DefaultLimits().MaxChildren
	}
	if lim.MaxDepth <= 0 {
		lim.MaxDepth = DefaultLimits().MaxDepth
	}
	if lim.MaxTotalNode <= 0 {
		lim.MaxTotalNode = DefaultLimits().MaxTotalNode
	}

	e, ok := src.Get(root)
	if !ok {
		return nil, fmt.Errorf("project: no entry for root %q", root)
	}

	p := &projector{src: src, lim: lim, cancel: cancel}
	return p.build(e, 0)
}

func (p *projector) cancelled() bool {
	return p.cancel != nil && p.cancel.Load()
}

func (p *projector) build(e *sv.Entry, depth int) (*sv.Node, error) {
	if p.cancelled() {
		return nil, sv.ErrCancelled
	}

	p.nodes++
	n := &sv.Node{
		ID:        e.Path,
		Name:      e.Name,
		Path:      e.Path,
		Size:      e.Size,
		IsDir:     e.IsDir,
		Ext:       e.Ext,
		MTime:     e.MTime,
		FileCount: e.FileCount,
		DirCount:  e.DirCount,
	}

	if !e.IsDir {
		return n, nil
	}

	if depth >= p.lim.MaxDepth {
		return n, nil
	}

	children := make([]*sv.Entry, 0, len(e.Children))
	for _, path := range e.Children {
		if c, ok := p.src.Get(path); ok {
			children = append(children, c)
		}
	}

	sort.Slice(children, func(i, j int) bool {
		return children[i].Size > children[j].Size
	})

	shown := children
	var overflow []*sv.Entry
	if len(shown) > p.lim.MaxChildren {
		shown = children[:p.lim.MaxChildren]
		overflow = children[p.lim.MaxChildren:]
	}

	for _, c := range shown {
		if p.cancelled() {
			return nil, sv.ErrCancelled
		}
		if p.nodes >= p.lim.MaxTotalNode {
			overflow = append(overflow, shown[len(n.Children):]...)
			break
		}
		child, err := p.build(c, depth+1)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}

	if len(overflow) > 0 {
		n.Children = append(n.Children, overflowNode(e.Path, overflow))
	}

	return n, nil
}

func overflowNode(parentPath string, hidden []*sv.Entry) *sv.Node {
	var size int64
	var files, dirs int64
	for _, c := range hidden {
		size += c.Size
		if c.IsDir {
			dirs++
		} else {
			files++
		}
	}
	return &sv.Node{
		ID:        parentPath + sv.OverflowSuffix,
		Name:      fmt.Sprintf("<%d more items>", len(hidden)),
		Path:      parentPath + sv.OverflowSuffix,
		Size:      size,
		IsDir:     false,
		FileCount: files,
		DirCount:  dirs,
	}
}
