// walk.go - concurrent fs-walker for the scan engine
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

// Package walk performs a parallel, work-stealing directory traversal
// rooted at a single path. A fixed pool of goroutines (sized to
// hardware parallelism by default) drains a queue of pending
// directories; each worker lists one directory, applies the filter
// chain, writes surviving entries to a Sink, and enqueues surviving
// subdirectories for any worker to pick up.
//
// Symlinks are never followed - this matches the scan engine's
// read-only, cycle-free contract.
package walk

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	sv "github.com/opencoff/spaceview"
)

// Decision is returned by a caller-supplied per-entry callback.
type Decision int

const (
	Continue Decision = iota
	Skip              // don't descend into this directory (no-op for files)
	Quit              // cancellation observed; stop the walk
)

// IgnoreMatcher decides whether a path (relative to the scan root)
// should be excluded from the walk. Implementations must be safe for
// concurrent use.
type IgnoreMatcher interface {
	Match(relPath string, isDir bool) bool
}

// Sink receives every surviving entry. Implementations (the Node
// Store) are responsible for hardlink accounting: a duplicate
// (device, inode) observation must still be stored but with size
// zeroed out.
type Sink interface {
	Insert(e *sv.Entry)
}

// Options controls the behavior of a walk.
type Options struct {
	// Concurrency is the number of worker goroutines; 0 means
	// runtime.NumCPU().
	Concurrency int

	// ShowHidden includes dotfiles/dotdirs when true. Default false.
	ShowHidden bool

	// MaxDepth limits descent from the root; 0 means unlimited.
	MaxDepth int

	// Ignore is consulted for every entry (both files and
	// directories) after the hidden-file check. May be nil.
	Ignore IgnoreMatcher

	// Callback is invoked for every entry that survives the filter
	// chain, after it has been written to the Sink. It may return
	// Skip to prune a directory's descent, or Quit to cancel the
	// remainder of the walk.
	Callback func(e *sv.Entry) Decision

	// Cancel, if non-nil, is polled at the top of every directory
	// listing, in addition to the Callback's own Quit decisions.
	Cancel *atomic.Bool

	// Progress, if non-nil, receives a non-blocking best-effort
	// snapshot roughly every 1000 entries across all workers. Overflow is
	// dropped silently; progress is advisory only (§4.1).
	Progress chan<- Progress
}

// Progress is a point-in-time snapshot published during a walk.
type Progress struct {
	Files     int64
	Dirs      int64
	TotalSize int64
	LastPath  string
}

type walker struct {
	Options
	root string

	ch    chan string
	dirWg sync.WaitGroup
	wg    sync.WaitGroup

	cancelled atomic.Bool

	files, dirs int64
	size        int64
	progEvery   int64
	sinceReport atomic.Int64
}

// Walk traverses root and returns once every reachable entry has been
// delivered to sink (or the walk was cancelled). It returns whether
// the walk was cancelled.
func Walk(root string, sink Sink, opt Options) (cancelled bool, err error) {
	if opt.Concurrency <= 0 {
		opt.Concurrency = runtime.NumCPU()
	}

	root = filepath.Clean(root)
	fi, statErr := os.Lstat(root)
	if statErr != nil {
		return false, &Error{"lstat", root, statErr}
	}
	if !fi.IsDir() {
		return false, &Error{"lstat", root, os.ErrInvalid}
	}

	w := &walker{
		Options:   opt,
		root:      root,
		ch:        make(chan string, opt.Concurrency*4),
		progEvery: 1000,
	}

	rootEntry := sv.NewDirEntry(root, fi.ModTime().Unix())
	sink.Insert(rootEntry)
	atomic.AddInt64(&w.dirs, 1)

	w.wg.Add(opt.Concurrency)
	for i := 0; i < opt.Concurrency; i++ {
		go w.work(sink)
	}

	w.dirWg.Add(1)
	w.ch <- root

	go func() {
		w.dirWg.Wait()
		close(w.ch)
	}()

	w.wg.Wait()

	return w.cancelled.Load(), nil
}

func (w *walker) work(sink Sink) {
	defer w.wg.Done()
	for dir := range w.ch {
		w.walkDir(dir, sink)
		w.dirWg.Done()
	}
}

func (w *walker) isCancelled() bool {
	if w.cancelled.Load() {
		return true
	}
	if w.Cancel != nil && w.Cancel.Load() {
		w.cancelled.Store(true)
		return true
	}
	return false
}

func (w *walker) depth(dir string) int {
	rel, err := filepath.Rel(w.root, dir)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func (w *walker) walkDir(dir string, sink Sink) {
	if w.isCancelled() {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// per-entry / per-directory I/O failures are swallowed per
		// the error-handling design: skip and continue.
		return
	}

	depth := w.depth(dir)
	nextDepth := depth + 1

	for _, de := range entries {
		if w.isCancelled() {
			return
		}

		name := de.Name()
		if !w.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}

		full := filepath.Join(dir, name)
		isDir := de.IsDir()

		if w.Ignore != nil {
			rel, _ := filepath.Rel(w.root, full)
			if w.Ignore.Match(rel, isDir) {
				continue
			}
		}

		if de.Type()&os.ModeSymlink != 0 {
			// never follow symlinks
			continue
		}

		if isDir {
			if w.MaxDepth > 0 && nextDepth > w.MaxDepth {
				continue
			}
			info, err := de.Info()
			if err != nil {
				continue
			}
			entry := sv.NewDirEntry(full, info.ModTime().Unix())
			sink.Insert(entry)
			atomic.AddInt64(&w.dirs, 1)
			w.reportProgress(full)

			dec := w.invoke(entry)
			if dec == Quit {
				w.cancelled.Store(true)
				return
			}
			if dec == Skip {
				continue
			}

			w.dirWg.Add(1)
			select {
			case w.ch <- full:
			default:
				go func(p string) { w.ch <- p }(full)
			}
			continue
		}

		info, err := de.Info()
		if err != nil {
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		key, hasInode := inodeKey(info)
		entry := sv.NewFileEntry(full, info.Size(), info.ModTime().Unix(), key, hasInode)
		sink.Insert(entry)
		atomic.AddInt64(&w.files, 1)
		atomic.AddInt64(&w.size, entry.Size)
		w.reportProgress(full)

		if dec := w.invoke(entry); dec == Quit {
			w.cancelled.Store(true)
			return
		}
	}
}

func (w *walker) invoke(e *sv.Entry) Decision {
	if w.Callback == nil {
		return Continue
	}
	return w.Callback(e)
}

func (w *walker) reportProgress(lastPath string) {
	if w.Progress == nil {
		return
	}
	n := w.sinceReport.Add(1)
	if n%w.progEvery != 0 {
		return
	}
	p := Progress{
		Files:     atomic.LoadInt64(&w.files),
		Dirs:      atomic.LoadInt64(&w.dirs),
		TotalSize: atomic.LoadInt64(&w.size),
		LastPath:  lastPath,
	}
	select {
	case w.Progress <- p:
	default:
	}
}

// Pace coalesces progress sends so a reporter goroutine never emits
// more than once every interval, per the 50ms coalescing contract in
// §4.1. Callers drain Progress and feed it through this helper.
func Pace(in <-chan Progress, interval time.Duration, emit func(Progress)) {
	var last Progress
	var have bool
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case p, ok := <-in:
			if !ok {
				if have {
					emit(last)
				}
				return
			}
			last = p
			have = true
		case <-t.C:
			if have {
				emit(last)
				have = false
			}
		}
	}
}
