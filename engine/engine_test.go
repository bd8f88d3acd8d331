// engine_test.go
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
	"os"
	"path/filepath"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	e, err := New(Options{
		SettingsPath: filepath.Join(dir, "settings.json"),
		CachePath:    filepath.Join(dir, "cache.db"),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func mustWriteFile(t *testing.T, path string, n int) {
	t.Helper()
	if err := os.WriteFile(path, make([]byte, n), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanAndCacheRoundTrip(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a"), 0o755); err != nil {
		t.Fatal(err)
	}
	mustWriteFile(t, filepath.Join(root, "a", "f1"), 100)
	mustWriteFile(t, filepath.Join(root, "f2"), 50)

	e := newTestEngine(t)
	ctx := context.Background()

	res, err := e.Scan(ctx, root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if res.Cancelled {
		t.Fatal("unexpected cancellation")
	}
	if res.TotalSize < 150 {
		t.Fatalf("total size = %d, want >= 150", res.TotalSize)
	}

	if !e.CheckCache(ctx, root) {
		t.Fatal("expected cache entry after scan with caching enabled by default")
	}

	loaded, err := e.LoadFromCache(ctx, root)
	if err != nil {
		t.Fatalf("LoadFromCache: %v", err)
	}
	if loaded.TotalSize != res.TotalSize {
		t.Fatalf("cached size = %d, want %d", loaded.TotalSize, res.TotalSize)
	}

	if err := e.DeleteCache(ctx, root); err != nil {
		t.Fatalf("DeleteCache: %v", err)
	}
	if e.CheckCache(ctx, root) {
		t.Fatal("expected cache miss after delete")
	}
}

func TestScanRejectsConcurrentScanOfSameEngine(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "f"), 10)

	e := newTestEngine(t)
	e.scanInProgress.Store(true)
	defer e.scanInProgress.Store(false)

	_, err := e.Scan(context.Background(), root)
	if err == nil {
		t.Fatal("expected ErrBusy while a scan is marked in progress")
	}
}

func TestFindDuplicatesInOneRoot(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "x"), 4096)
	mustWriteFile(t, filepath.Join(root, "y"), 4096)
	if err := os.WriteFile(filepath.Join(root, "x"), make([]byte, 4096), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "y"), make([]byte, 4096), 0o644); err != nil {
		t.Fatal(err)
	}

	e := newTestEngine(t)
	res, err := e.FindDuplicates([]string{root}, nil)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	groups := res.Groups
	if len(groups) != 1 || len(groups[0].Paths) != 2 {
		t.Fatalf("groups = %+v, want one group of two paths", groups)
	}
}
