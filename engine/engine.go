// engine.go - wires the scan pipeline behind the command surface
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

// Package engine composes the Walker, Node Store, Aggregator, Tree
// Projector, Hasher, Duplicate Finder, Comparator, Cache Store,
// Watcher and Snapshot Differ behind the small set of commands a
// front end actually needs: scan, load-from-cache, refresh, find
// duplicates, compare two directories, diff two snapshots, and manage
// settings/cache/watch lifecycle.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	sv "github.com/opencoff/spaceview"
	"github.com/opencoff/spaceview/aggregate"
	scache "github.com/opencoff/spaceview/cache"
	"github.com/opencoff/spaceview/cmp"
	"github.com/opencoff/spaceview/dup"
	"github.com/opencoff/spaceview/project"
	"github.com/opencoff/spaceview/settings"
	"github.com/opencoff/spaceview/snapshot"
	"github.com/opencoff/spaceview/store"
	"github.com/opencoff/spaceview/walk"
	"github.com/opencoff/spaceview/watch"

	logger "github.com/opencoff/go-logger"
)

// Engine is the stateful heart of one scan session: it owns the
// current scan's store, the cache connection and the loaded
// settings. It is safe for one scan to run while commands that don't
// touch scan state (e.g. settings updates) are issued concurrently;
// it is not safe for two scans of the same root to run concurrently -
// that's what scanInProgress guards.
type Engine struct {
	log      logger.Logger
	settings *settings.Store
	cache    *scache.Store

	scanInProgress atomic.Bool
	cancel         atomic.Bool

	lastRoot  string
	lastStore *store.Store
	lastTree  *sv.Node

	watcher *watch.Controller
}

// Options configures a new Engine.
type Options struct {
	SettingsPath string
	CachePath    string
	Log          logger.Logger // nil is fine; a discard logger is used
}

// New opens the settings and cache stores and returns a ready Engine.
func New(opt Options) (*Engine, error) {
	log := opt.Log
	if log == nil {
		log, _ = logger.NewLogger("", logger.LOG_ERR, "spaceview", 0)
	}

	c, err := scache.Open(opt.CachePath)
	if err != nil {
		return nil, err
	}

	return &Engine{
		log:      log,
		settings: settings.Open(opt.SettingsPath),
		cache:    c,
	}, nil
}

// Close releases the cache database and any armed watcher.
func (e *Engine) Close() error {
	if e.watcher != nil {
		e.watcher.Close()
	}
	return e.cache.Close()
}

// ScanResult is returned by Scan and Refresh.
type ScanResult struct {
	Root      string
	Tree      *sv.Node
	Files     int64
	Dirs      int64
	TotalSize int64
	Cancelled bool
}

func (e *Engine) walkOptions() walk.Options {
	cfg := e.settings.Get()

	var ignore walk.IgnoreMatcher
	return walk.Options{
		ShowHidden: cfg.ShowHiddenFiles,
		MaxDepth:   cfg.MaxScanDepth,
		Ignore:     ignore,
		Cancel:     &e.cancel,
	}
}

// Scan performs a full walk of root, aggregates sizes, projects the
// bounded tree, and (if caching is enabled in settings) persists it.
// It returns sv.ErrBusy if a scan is already running.
func (e *Engine) Scan(ctx context.Context, root string) (*ScanResult, error) {
	if !e.scanInProgress.CompareAndSwap(false, true) {
		return nil, sv.ErrBusy
	}
	defer e.scanInProgress.Store(false)

	root = filepath.Clean(root)
	e.cancel.Store(false)

	opts := e.walkOptions()
	ignore, err := walk.NewIgnoreMatcher(root, e.settings.Get().IgnorePatterns)
	if err != nil {
		return nil, &sv.ScanError{Op: "ignore-patterns", Path: root, Err: err}
	}
	opts.Ignore = ignore

	st := store.New()
	cancelled, err := walk.Walk(root, st, opts)
	if err != nil {
		return nil, &sv.ScanError{Op: "walk", Path: root, Err: err}
	}
	if cancelled {
		return &ScanResult{Root: root, Cancelled: true}, nil
	}

	if err := aggregate.Run(st, root, &e.cancel); err != nil {
		if err == sv.ErrCancelled {
			return &ScanResult{Root: root, Cancelled: true}, nil
		}
		return nil, &sv.ScanError{Op: "aggregate", Path: root, Err: err}
	}

	tree, err := project.Build(st, root, project.DefaultLimits(), &e.cancel)
	if err != nil {
		if err == sv.ErrCancelled {
			return &ScanResult{Root: root, Cancelled: true}, nil
		}
		return nil, &sv.ScanError{Op: "project", Path: root, Err: err}
	}

	e.lastRoot = root
	e.lastStore = st
	e.lastTree = tree

	if e.settings.Get().EnableCache {
		if err := e.cache.Put(ctx, root, tree); err != nil {
			e.log.Warn("cache put failed for %s: %s", root, err)
		}
	}

	files, dirs, size := st.Stats()
	return &ScanResult{Root: root, Tree: tree, Files: files, Dirs: dirs, TotalSize: size}, nil
}

// LoadFromCache returns the cached tree for root without touching the
// filesystem, or sv.ErrCacheMiss.
func (e *Engine) LoadFromCache(ctx context.Context, root string) (*ScanResult, error) {
	rec, err := e.cache.Get(ctx, root)
	if err != nil {
		return nil, err
	}
	return &ScanResult{
		Root: root, Tree: rec.Tree,
		Files: rec.FileCount, Dirs: rec.DirCount, TotalSize: rec.TotalSize,
	}, nil
}

// CheckCache reports whether a usable cache entry exists for root.
func (e *Engine) CheckCache(ctx context.Context, root string) bool {
	_, err := e.cache.Get(ctx, root)
	return err == nil
}

// DeleteCache removes the cached entry for root.
func (e *Engine) DeleteCache(ctx context.Context, root string) error {
	return e.cache.Delete(ctx, root)
}

// ClearAllCaches drops every cached scan.
func (e *Engine) ClearAllCaches(ctx context.Context) error {
	return e.cache.ClearAll(ctx)
}

// Cancel requests that any in-progress scan stop at its next
// cancellation check.
func (e *Engine) Cancel() {
	e.cancel.Store(true)
}

// ArmWatch starts watching root for changes and drains the controller's
// debounced triggers on a background goroutine, turning each one into
// either a full Refresh or a targeted subtree splice. The returned
// channel carries the outcome of every such rescan; closing the
// watcher does not close it.
func (e *Engine) ArmWatch(ctx context.Context, root string) (<-chan *ScanResult, error) {
	root = filepath.Clean(root)
	c, err := watch.New(root)
	if err != nil {
		return nil, err
	}
	e.watcher = c

	results := make(chan *ScanResult, 4)
	go func() {
		defer close(results)
		for trig := range c.Triggers() {
			res, err := e.refreshTrigger(ctx, root, trig)
			if err != nil {
				e.log.Warn("watch refresh failed for %s: %s", root, err)
				continue
			}
			select {
			case results <- res:
			default:
				// the reader is behind; drop this outcome, the same
				// policy the controller itself applies to triggers.
			}
		}
	}()
	return results, nil
}

// Refresh re-walks root in full and updates the in-memory and cache
// state, honoring the watcher's single-flight guard if one is armed.
func (e *Engine) Refresh(ctx context.Context, root string) (*ScanResult, error) {
	if e.watcher != nil {
		if !e.watcher.TryBeginScan() {
			return nil, sv.ErrBusy
		}
		defer e.watcher.EndScan()
	}
	return e.Scan(ctx, root)
}

// refreshTrigger turns one coalesced watch.Trigger into a rescan: a
// full Refresh when the controller asked for one (or there's no
// baseline tree to splice into), otherwise a targeted subtree
// replacement per dirty directory.
func (e *Engine) refreshTrigger(ctx context.Context, root string, trig watch.Trigger) (*ScanResult, error) {
	if e.watcher != nil {
		if !e.watcher.TryBeginScan() {
			return nil, sv.ErrBusy
		}
		defer e.watcher.EndScan()
	}

	if trig.Full || e.lastTree == nil || e.lastRoot != root {
		return e.Scan(ctx, root)
	}

	// Splicing mutates e.lastTree exactly like Scan does,
	// so it takes the same single-flight guard - released before any
	// fallback call to Scan below, which acquires it itself.
	if !e.scanInProgress.CompareAndSwap(false, true) {
		return nil, sv.ErrBusy
	}

	e.cancel.Store(false)
	var spliceErr error
	for _, dir := range trig.Dirs {
		if spliceErr = e.spliceSubtree(ctx, dir); spliceErr != nil {
			break
		}
	}

	if spliceErr == sv.ErrCancelled {
		e.scanInProgress.Store(false)
		return &ScanResult{Root: root, Cancelled: true}, nil
	}
	if spliceErr != nil {
		e.scanInProgress.Store(false)
		e.log.Warn("splice failed for %s, falling back to a full rescan: %s", root, spliceErr)
		return e.Scan(ctx, root)
	}

	if e.settings.Get().EnableCache {
		if err := e.cache.Put(ctx, root, e.lastTree); err != nil {
			e.log.Warn("cache put failed for %s: %s", root, err)
		}
	}

	res := &ScanResult{
		Root: root, Tree: e.lastTree,
		Files: e.lastTree.FileCount, Dirs: e.lastTree.DirCount, TotalSize: e.lastTree.Size,
	}
	e.scanInProgress.Store(false)
	return res, nil
}

// Compare classifies every relative path under left and right into
// left-only, right-only, identical, different or "funny" (same name,
// different entry kind), confirming equal-size file pairs with the
// two-tier content hash.
func (e *Engine) Compare(left, right string) (*cmp.Difference, error) {
	return cmp.DirTree(left, right, cmp.WithHashCompare())
}

// SaveSnapshot persists the tree currently held for root under label,
// for later comparison via CompareSnapshots. It fails if root hasn't
// been scanned in this Engine yet; a tree returned by LoadFromCache
// does not count.
func (e *Engine) SaveSnapshot(ctx context.Context, root, label string) error {
	if e.lastTree == nil || e.lastRoot != root {
		return fmt.Errorf("engine: no scanned tree for %q to snapshot", root)
	}
	return e.cache.SaveSnapshot(ctx, root, label, e.lastTree)
}

// ListSnapshots returns every snapshot saved for root, most recent
// first.
func (e *Engine) ListSnapshots(ctx context.Context, root string) ([]scache.Snapshot, error) {
	return e.cache.ListSnapshots(ctx, root)
}

// DeleteSnapshot removes the (root, label) snapshot.
func (e *Engine) DeleteSnapshot(ctx context.Context, root, label string) error {
	return e.cache.DeleteSnapshot(ctx, root, label)
}

// CompareSnapshots diffs two previously saved snapshots of the same
// root.
func (e *Engine) CompareSnapshots(ctx context.Context, root, oldLabel, newLabel string) (*snapshot.Result, error) {
	oldRec, err := e.cache.GetSnapshot(ctx, root, oldLabel)
	if err != nil {
		return nil, err
	}
	newRec, err := e.cache.GetSnapshot(ctx, root, newLabel)
	if err != nil {
		return nil, err
	}
	res := snapshot.Compare(oldRec.Tree, newRec.Tree, root, oldRec.CreatedAt.Unix(), newRec.CreatedAt.Unix())
	return &res, nil
}

// FindDuplicates runs the duplicate finder over roots using the
// current settings' minimum size. progress, if non-nil, receives a
// best-effort snapshot every 100 files full-hashed.
func (e *Engine) FindDuplicates(roots []string, progress chan<- dup.Progress) (dup.Result, error) {
	cfg := e.settings.Get()
	return dup.Find(roots, dup.Options{MinSize: cfg.DuplicateMinSize, Progress: progress})
}

// Settings returns the current settings store for direct use by
// settings-management commands.
func (e *Engine) Settings() *settings.Store {
	return e.settings
}

// History returns every cached scan, most recently updated first.
func (e *Engine) History(ctx context.Context) ([]scache.Record, error) {
	return e.cache.History(ctx)
}
