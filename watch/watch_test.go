package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDetectsNewFile(t *testing.T) {
	root := t.TempDir()

	c, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "new.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case trig := <-c.Triggers():
		if !trig.Full && len(trig.Dirs) == 0 {
			t.Error("expected a non-empty trigger")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a trigger")
	}
}

func TestSingleFlightGuard(t *testing.T) {
	root := t.TempDir()
	c, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if !c.TryBeginScan() {
		t.Fatal("expected first TryBeginScan to succeed")
	}
	if c.TryBeginScan() {
		t.Fatal("expected second TryBeginScan to fail while a scan is in progress")
	}
	c.EndScan()
	if !c.TryBeginScan() {
		t.Fatal("expected TryBeginScan to succeed again after EndScan")
	}
}
