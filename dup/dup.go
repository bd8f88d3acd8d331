// dup.go - duplicate file detection via size/partial-hash/full-hash funnel
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

// Package dup finds groups of byte-identical regular files under one
// or more roots. It funnels candidates through three progressively
// more expensive filters - size, partial hash, full hash - so the
// (slow) full hash only ever runs on files that are already strong
// candidates for being duplicates.
package dup

import (
	"os"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	sv "github.com/opencoff/spaceview"
	"github.com/opencoff/spaceview/hash"
	"github.com/opencoff/spaceview/walk"
)

// bucketWork is one size-bucket's worth of candidate paths, handed to
// a WorkPool worker.
type bucketWork struct {
	paths []string
}

func statSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

// Group is a set of paths with identical content.
type Group struct {
	Hash        string // hex full-content hash shared by every path
	Size        int64
	Paths       []string
	WastedBytes int64 // Size * (len(Paths)-1): space reclaimed by keeping one copy
}

// Progress is a best-effort, non-blocking snapshot published roughly
// every 100 full hashes computed, mirroring the walker's own pacing
// (§4.1).
type Progress struct {
	FilesHashedFull int64
}

// Stats summarizes one Find call's funnel: how many files it saw, how
// many survived each progressively more expensive filter, and how
// much space the duplicates found are wasting.
type Stats struct {
	FilesScanned        int64
	FilesHashedPartial  int64
	FilesHashedFull     int64
	SubBucketsConfirmed int64
	WastedBytes         int64
}

// Result is everything Find produces: the duplicate groups and the
// funnel statistics that explain how it got there.
type Result struct {
	Groups []Group
	Stats  Stats
}

// Options controls a duplicate scan.
type Options struct {
	Concurrency int
	MinSize     int64 // files smaller than this are never considered
	Walk        walk.Options

	// Progress, if non-nil, receives a best-effort snapshot every 100
	// files full-hashed. Overflow is dropped silently.
	Progress chan<- Progress
}

func (o *Options) setDefaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.NumCPU()
	}
	if o.MinSize <= 0 {
		o.MinSize = 1
	}
}

type collector struct {
	mu     sync.Mutex
	bySize map[int64][]string
	scanned atomic.Int64
}

func (c *collector) Insert(e *sv.Entry) {
	if e.IsDir || e.Size <= 0 {
		return
	}
	c.scanned.Add(1)
	c.mu.Lock()
	c.bySize[e.Size] = append(c.bySize[e.Size], e.Path)
	c.mu.Unlock()
}

// counters accumulates Stats across every concurrent bucket worker.
type counters struct {
	partialHashed atomic.Int64
	fullHashed    atomic.Int64
	subBuckets    atomic.Int64
	wasted        atomic.Int64
}

func (c *counters) reportFullHash(progress chan<- Progress) {
	n := c.fullHashed.Add(1)
	if progress == nil || n%100 != 0 {
		return
	}
	select {
	case progress <- Progress{FilesHashedFull: n}:
	default:
		// the reader is behind; drop this sample, same policy the
		// walker applies to its own Progress channel.
	}
}

// Find walks every root and returns the groups of duplicate files
// found beneath them (most wasted bytes first) along with the
// funnel statistics describing how the scan got there.
func Find(roots []string, opt Options) (Result, error) {
	opt.setDefaults()

	c := &collector{bySize: make(map[int64][]string)}
	for _, root := range roots {
		if _, err := walk.Walk(root, c, opt.Walk); err != nil {
			return Result{}, err
		}
	}

	var sizeBuckets [][]string
	for size, paths := range c.bySize {
		if size < opt.MinSize || len(paths) < 2 {
			continue
		}
		sizeBuckets = append(sizeBuckets, paths)
	}

	var mu sync.Mutex
	var groups []Group
	cnt := &counters{}

	wp := sv.NewWorkPool[bucketWork](opt.Concurrency, func(_ int, w bucketWork) error {
		found := processSizeBucket(w.paths, cnt, opt.Progress)
		if len(found) == 0 {
			return nil
		}
		mu.Lock()
		groups = append(groups, found...)
		mu.Unlock()
		return nil
	})

	for _, paths := range sizeBuckets {
		wp.Submit(bucketWork{paths: paths})
	}
	wp.Close()
	if err := wp.Wait(); err != nil {
		return Result{}, err
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].WastedBytes > groups[j].WastedBytes
	})

	return Result{
		Groups: groups,
		Stats: Stats{
			FilesScanned:        c.scanned.Load(),
			FilesHashedPartial:  cnt.partialHashed.Load(),
			FilesHashedFull:     cnt.fullHashed.Load(),
			SubBucketsConfirmed: cnt.subBuckets.Load(),
			WastedBytes:         cnt.wasted.Load(),
		},
	}, nil
}

// processSizeBucket sub-divides a same-size candidate set by partial
// hash, then confirms each partial-hash sub-bucket with a full hash
// before accepting it as a duplicate group.
func processSizeBucket(paths []string, cnt *counters, progress chan<- Progress) []Group {
	byPartial := make(map[hash.Sum][]string)
	for _, p := range paths {
		sum, err := hash.Partial(p)
		if err != nil {
			continue
		}
		cnt.partialHashed.Add(1)
		byPartial[sum] = append(byPartial[sum], p)
	}

	var out []Group
	for _, candidates := range byPartial {
		if len(candidates) < 2 {
			continue
		}
		cnt.subBuckets.Add(1)
		out = append(out, confirmByFullHash(candidates, cnt, progress)...)
	}
	return out
}

func confirmByFullHash(candidates []string, cnt *counters, progress chan<- Progress) []Group {
	byFull := make(map[hash.Sum][]string)
	for _, p := range candidates {
		sum, err := hash.Full(p)
		if err != nil {
			continue
		}
		cnt.reportFullHash(progress)
		byFull[sum] = append(byFull[sum], p)
	}

	var out []Group
	for sum, paths := range byFull {
		if len(paths) < 2 {
			continue
		}
		size, err := statSize(paths[0])
		if err != nil {
			continue
		}
		wasted := size * int64(len(paths)-1)
		cnt.wasted.Add(wasted)
		out = append(out, Group{
			Hash:        sum.String(),
			Size:        size,
			Paths:       paths,
			WastedBytes: wasted,
		})
	}
	return out
}
