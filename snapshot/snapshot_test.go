package snapshot

import (
	"testing"

	sv "github.com/opencoff/spaceview"
)

func file(name string, size int64) *sv.Node {
	return &sv.Node{Name: name, Path: name, Size: size}
}

func dir(name string, children ...*sv.Node) *sv.Node {
	var size int64
	var fileCount, dirCount int64
	for _, c := range children {
		size += c.Size
		if c.IsDir {
			fileCount += c.FileCount
			dirCount += c.DirCount + 1
		} else {
			fileCount++
		}
	}
	return &sv.Node{Name: name, Path: name, IsDir: true, Size: size, FileCount: fileCount, DirCount: dirCount, Children: children}
}

func TestCompareIdentical(t *testing.T) {
	old := dir("root", file("a.txt", 100), file("b.txt", 200))
	newer := dir("root", file("a.txt", 100), file("b.txt", 200))

	r := Compare(old, newer, "/test", 1000, 2000)

	if len(r.Added) != 0 || len(r.Removed) != 0 || len(r.Changed) != 0 {
		t.Fatalf("expected no differences, got %+v", r)
	}
	if r.UnchangedCount != 3 {
		t.Errorf("expected 3 unchanged entries (root + 2 files), got %d", r.UnchangedCount)
	}
	if r.NetSizeChange != 0 {
		t.Errorf("expected net size change 0, got %d", r.NetSizeChange)
	}
}

func TestCompareAddedFile(t *testing.T) {
	old := dir("root", file("a.txt", 100))
	newer := dir("root", file("a.txt", 100), file("b.txt", 200))

	r := Compare(old, newer, "/test", 1000, 2000)

	if len(r.Added) != 1 || r.Added[0].Name != "b.txt" || r.Added[0].Size != 200 {
		t.Fatalf("expected b.txt/200 added, got %+v", r.Added)
	}
	if len(r.Removed) != 0 {
		t.Errorf("expected no removals, got %+v", r.Removed)
	}
	if r.AddedSize != 200 {
		t.Errorf("expected added size 200, got %d", r.AddedSize)
	}
}

func TestCompareRemovedFile(t *testing.T) {
	old := dir("root", file("a.txt", 100), file("b.txt", 200))
	newer := dir("root", file("a.txt", 100))

	r := Compare(old, newer, "/test", 1000, 2000)

	if len(r.Added) != 0 {
		t.Errorf("expected no additions, got %+v", r.Added)
	}
	if len(r.Removed) != 1 || r.Removed[0].Name != "b.txt" {
		t.Fatalf("expected b.txt removed, got %+v", r.Removed)
	}
	if r.RemovedSize != 200 {
		t.Errorf("expected removed size 200, got %d", r.RemovedSize)
	}
}

func TestCompareChangedSize(t *testing.T) {
	old := dir("root", file("a.txt", 100))
	newer := dir("root", file("a.txt", 300))

	r := Compare(old, newer, "/test", 1000, 2000)

	if len(r.Added) != 0 || len(r.Removed) != 0 {
		t.Fatalf("expected no additions/removals, got added=%+v removed=%+v", r.Added, r.Removed)
	}
	if len(r.Changed) != 2 {
		t.Fatalf("expected 2 changed entries (root dir + file), got %d", len(r.Changed))
	}

	var found bool
	for _, c := range r.Changed {
		if c.Name == "a.txt" {
			found = true
			if c.OldSize != 100 || c.NewSize != 300 || c.SizeDiff != 200 {
				t.Errorf("unexpected change record: %+v", c)
			}
		}
	}
	if !found {
		t.Error("expected a.txt in Changed")
	}
}
