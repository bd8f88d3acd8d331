package project

import (
	"fmt"
	"sync/atomic"
	"testing"

	sv "github.com/opencoff/spaceview"
)

type fakeSrc struct {
	m map[string]*sv.Entry
}

func (f *fakeSrc) Get(path string) (*sv.Entry, bool) {
	e, ok := f.m[path]
	return e, ok
}

func TestBuildSortsChildrenBySize(t *testing.T) {
	root := sv.NewDirEntry("/root", 0)
	small := sv.NewFileEntry("/root/small.txt", 1, 0, sv.InodeKey{}, false)
	big := sv.NewFileEntry("/root/big.txt", 100, 0, sv.InodeKey{}, false)
	root.Children = []string{"/root/small.txt", "/root/big.txt"}
	root.Size = 101
	root.FileCount = 2

	src := &fakeSrc{m: map[string]*sv.Entry{
		"/root":           root,
		"/root/small.txt": small,
		"/root/big.txt":   big,
	}}

	n, err := Build(src, "/root", DefaultLimits(), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(n.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(n.Children))
	}
	if n.Children[0].Name != "big.txt" {
		t.Errorf("expected largest child first, got %s", n.Children[0].Name)
	}
}

func TestBuildOverflowOnFanOut(t *testing.T) {
	root := sv.NewDirEntry("/root", 0)
	m := map[string]*sv.Entry{"/root": root}

	lim := Limits{MaxChildren: 5, MaxDepth: 25, MaxTotalNode: 200_000}
	for i := 0; i < 10; i++ {
		p := fmt.Sprintf("/root/f%02d.txt", i)
		m[p] = sv.NewFileEntry(p, int64(i+1), 0, sv.InodeKey{}, false)
		root.Children = append(root.Children, p)
	}
	root.FileCount = 10

	n, err := Build(&fakeSrc{m: m}, "/root", lim, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(n.Children) != lim.MaxChildren+1 {
		t.Fatalf("expected %d shown + 1 overflow node, got %d", lim.MaxChildren, len(n.Children))
	}
	last := n.Children[len(n.Children)-1]
	if !last.IsOverflow() {
		t.Errorf("expected last child to be the overflow sentinel, got %s", last.ID)
	}
}

func TestBuildRespectsMaxDepth(t *testing.T) {
	root := sv.NewDirEntry("/root", 0)
	sub := sv.NewDirEntry("/root/sub", 0)
	root.Children = []string{"/root/sub"}
	sub.Children = nil

	m := map[string]*sv.Entry{"/root": root, "/root/sub": sub}
	lim := Limits{MaxChildren: 500, MaxDepth: 1, MaxTotalNode: 200_000}

	n, err := Build(&fakeSrc{m: m}, "/root", lim, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(n.Children) != 1 {
		t.Fatalf("expected one child at depth 1, got %d", len(n.Children))
	}
	// sub is at MaxDepth, so its own children must not be expanded
	if len(n.Children[0].Children) != 0 {
		t.Errorf("expected depth cap to stop expansion, got %d children", len(n.Children[0].Children))
	}
}

func TestBuildReturnsCancelledWhenFlagSet(t *testing.T) {
	root := sv.NewDirEntry("/root", 0)
	m := map[string]*sv.Entry{"/root": root}

	var cancel atomic.Bool
	cancel.Store(true)

	_, err := Build(&fakeSrc{m: m}, "/root", DefaultLimits(), &cancel)
	if err != sv.ErrCancelled {
		t.Fatalf("Build with cancel already set: err = %v, want sv.ErrCancelled", err)
	}
}
