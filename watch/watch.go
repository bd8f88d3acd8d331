// watch.go - filesystem watcher with debounced incremental rescans
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

// Package watch arms an fsnotify recursive watch over a scanned root
// and coalesces the resulting event storm into a small number of
// rescan decisions: a dirty path is debounced for 800ms, and if
// enough distinct directories are dirty (or the root itself changed)
// the controller asks for a full rescan instead of patching in each
// subtree individually.
package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	sv "github.com/opencoff/spaceview"
)

// debounceDelay is how long after the first dirty path since the last
// flush the pending set is flushed to the caller; later events join
// the pending set without pushing the flush back.
const debounceDelay = 800 * time.Millisecond

// fullRescanThreshold is the number of distinct dirty directories
// that triggers a full rescan instead of a set of targeted ones.
const fullRescanThreshold = 40

// Trigger describes what the controller decided to do once the
// debounce window closed.
type Trigger struct {
	Full  bool     // rescan the whole root
	Dirs  []string // targeted subtrees to rescan, when !Full
}

// Controller watches root recursively and delivers coalesced Trigger
// values on Triggers(). Callers drive the actual rescan (walk +
// aggregate + project); the controller only decides scope and
// timing.
type Controller struct {
	root string
	fsw  *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer

	scanInProgress atomic.Bool

	out    chan Trigger
	closed chan struct{}
}

// New arms a recursive watch over root.
func New(root string) (*Controller, error) {
	root = filepath.Clean(root)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &sv.WatcherError{Path: root, Err: err}
	}

	c := &Controller{
		root:    root,
		fsw:     fsw,
		pending: make(map[string]bool),
		out:     make(chan Trigger, 4),
		closed:  make(chan struct{}),
	}

	if err := c.addRecursive(root); err != nil {
		fsw.Close()
		return nil, &sv.WatcherError{Path: root, Err: err}
	}

	go c.loop()

	return c, nil
}

// Triggers returns the channel of coalesced rescan decisions.
func (c *Controller) Triggers() <-chan Trigger {
	return c.out
}

// Close stops the watcher and releases its fsnotify handle.
func (c *Controller) Close() error {
	close(c.closed)
	return c.fsw.Close()
}

// TryBeginScan attempts to CAS scan_in_progress from false to true,
// the single-flight guard preventing overlapping rescans. Callers
// must call EndScan when the rescan completes.
func (c *Controller) TryBeginScan() bool {
	return c.scanInProgress.CompareAndSwap(false, true)
}

// EndScan releases the single-flight guard.
func (c *Controller) EndScan() {
	c.scanInProgress.Store(false)
}

func (c *Controller) addRecursive(dir string) error {
	return filepathWalkDirs(dir, func(d string) error {
		return c.fsw.Add(d)
	})
}

func (c *Controller) loop() {
	for {
		select {
		case <-c.closed:
			return
		case ev, ok := <-c.fsw.Events:
			if !ok {
				return
			}
			c.handleEvent(ev)
		case _, ok := <-c.fsw.Errors:
			if !ok {
				return
			}
			// swallow: a transient watcher error doesn't abort the
			// incremental refresh, it just risks missing an update
			// until the next rescan.
		}
	}
}

func (c *Controller) handleEvent(ev fsnotify.Event) {
	if ev.Op&fsnotify.Create != 0 {
		if isDir(ev.Name) {
			c.addRecursive(ev.Name)
		}
	}

	dir := ev.Name
	if !isDir(dir) {
		dir = filepath.Dir(dir)
	}

	c.mu.Lock()
	c.pending[dir] = true
	if c.timer == nil {
		c.timer = time.AfterFunc(debounceDelay, c.flush)
	}
	c.mu.Unlock()
}

func (c *Controller) flush() {
	c.mu.Lock()
	dirs := make([]string, 0, len(c.pending))
	for d := range c.pending {
		dirs = append(dirs, d)
	}
	c.pending = make(map[string]bool)
	c.timer = nil
	c.mu.Unlock()

	if len(dirs) == 0 {
		return
	}

	// keep only the topmost dirty directories: one beneath another
	// dirty directory is covered by that one's rescan.
	top := make([]string, 0, len(dirs))
	for _, d := range dirs {
		covered := false
		for _, o := range dirs {
			if strings.HasPrefix(d, o+string(filepath.Separator)) {
				covered = true
				break
			}
		}
		if !covered {
			top = append(top, d)
		}
	}
	dirs = top

	trig := Trigger{Dirs: dirs}
	if len(dirs) > fullRescanThreshold || containsRoot(dirs, c.root) {
		trig = Trigger{Full: true}
	}

	select {
	case c.out <- trig:
	default:
		// the reader is behind; drop this coalesced trigger rather
		// than block the watch loop. The next event storm will
		// produce another one.
	}
}

func containsRoot(dirs []string, root string) bool {
	for _, d := range dirs {
		if d == root {
			return true
		}
	}
	return false
}

func isDir(path string) bool {
	fi, err := statDir(path)
	return err == nil && fi
}
