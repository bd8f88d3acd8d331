package aggregate

import (
	"sync/atomic"
	"testing"

	sv "github.com/opencoff/spaceview"
)

type fakeStore struct {
	m map[string]*sv.Entry
}

func newFakeStore() *fakeStore { return &fakeStore{m: map[string]*sv.Entry{}} }

func (f *fakeStore) Get(path string) (*sv.Entry, bool) {
	e, ok := f.m[path]
	return e, ok
}

func (f *fakeStore) Range(fn func(string, *sv.Entry) bool) {
	for k, v := range f.m {
		if !fn(k, v) {
			return
		}
	}
}

func (f *fakeStore) add(e *sv.Entry) { f.m[e.Path] = e }

func TestRunSumsNestedDirs(t *testing.T) {
	s := newFakeStore()
	s.add(sv.NewDirEntry("/root", 0))
	s.add(sv.NewDirEntry("/root/a", 0))
	s.add(sv.NewFileEntry("/root/a/f1.txt", 10, 0, sv.InodeKey{}, false))
	s.add(sv.NewFileEntry("/root/a/f2.txt", 20, 0, sv.InodeKey{}, false))
	s.add(sv.NewFileEntry("/root/top.txt", 5, 0, sv.InodeKey{}, false))

	if err := Run(s, "/root", nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	a, _ := s.Get("/root/a")
	if a.Size != 30 {
		t.Errorf("expected /root/a size 30, got %d", a.Size)
	}
	if a.FileCount != 2 {
		t.Errorf("expected /root/a FileCount 2, got %d", a.FileCount)
	}

	root, _ := s.Get("/root")
	if root.Size != 35 {
		t.Errorf("expected /root size 35, got %d", root.Size)
	}
	if root.FileCount != 3 {
		t.Errorf("expected /root FileCount 3, got %d", root.FileCount)
	}
	if root.DirCount != 1 {
		t.Errorf("expected /root DirCount 1, got %d", root.DirCount)
	}
}

func TestRunDeepChainNoRecursionOverflow(t *testing.T) {
	s := newFakeStore()
	s.add(sv.NewDirEntry("/root", 0))
	parent := "/root"
	for i := 0; i < 5000; i++ {
		child := parent + "/d"
		s.add(sv.NewDirEntry(child, 0))
		parent = child
	}
	s.add(sv.NewFileEntry(parent+"/leaf.txt", 7, 0, sv.InodeKey{}, false))

	if err := Run(s, "/root", nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	root, _ := s.Get("/root")
	if root.Size != 7 {
		t.Errorf("expected deep chain to sum to 7, got %d", root.Size)
	}
}

func TestRunReturnsCancelledWhenFlagSet(t *testing.T) {
	s := newFakeStore()
	s.add(sv.NewDirEntry("/root", 0))
	s.add(sv.NewFileEntry("/root/f.txt", 10, 0, sv.InodeKey{}, false))

	var cancel atomic.Bool
	cancel.Store(true)

	err := Run(s, "/root", &cancel)
	if err != sv.ErrCancelled {
		t.Fatalf("Run with cancel already set: err = %v, want sv.ErrCancelled", err)
	}
}
