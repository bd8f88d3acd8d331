package walk

import (
	"os"
	"path/filepath"
	"testing"

	sv "github.com/opencoff/spaceview"
)

type memSink struct {
	entries map[string]*sv.Entry
}

func newMemSink() *memSink { return &memSink{entries: map[string]*sv.Entry{}} }

func (m *memSink) Insert(e *sv.Entry) { m.entries[e.Path] = e }

func mkfile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalkBasic(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a.txt"), "aaa")
	mkfile(t, filepath.Join(root, "sub", "b.txt"), "bb")

	sink := newMemSink()
	cancelled, err := Walk(root, sink, Options{})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if cancelled {
		t.Fatal("unexpected cancellation")
	}

	if _, ok := sink.entries[filepath.Join(root, "a.txt")]; !ok {
		t.Error("expected a.txt to be recorded")
	}
	if _, ok := sink.entries[filepath.Join(root, "sub", "b.txt")]; !ok {
		t.Error("expected sub/b.txt to be recorded")
	}
}

func TestWalkSkipsHiddenByDefault(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, ".hidden.txt"), "x")
	mkfile(t, filepath.Join(root, "visible.txt"), "y")

	sink := newMemSink()
	if _, err := Walk(root, sink, Options{}); err != nil {
		t.Fatal(err)
	}

	if _, ok := sink.entries[filepath.Join(root, ".hidden.txt")]; ok {
		t.Error("expected hidden file to be skipped by default")
	}
	if _, ok := sink.entries[filepath.Join(root, "visible.txt")]; !ok {
		t.Error("expected visible file to be recorded")
	}
}

func TestWalkShowHidden(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, ".hidden.txt"), "x")

	sink := newMemSink()
	if _, err := Walk(root, sink, Options{ShowHidden: true}); err != nil {
		t.Fatal(err)
	}
	if _, ok := sink.entries[filepath.Join(root, ".hidden.txt")]; !ok {
		t.Error("expected hidden file to be recorded with ShowHidden")
	}
}

func TestWalkMaxDepth(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a", "b", "deep.txt"), "z")

	sink := newMemSink()
	if _, err := Walk(root, sink, Options{MaxDepth: 1}); err != nil {
		t.Fatal(err)
	}

	if _, ok := sink.entries[filepath.Join(root, "a")]; !ok {
		t.Error("expected top-level dir 'a' at depth 1")
	}
	if _, ok := sink.entries[filepath.Join(root, "a", "b")]; ok {
		t.Error("expected depth 2 dir to be pruned by MaxDepth=1")
	}
}

func TestWalkIgnorePattern(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "node_modules", "pkg.js"), "x")
	mkfile(t, filepath.Join(root, "keep.txt"), "y")

	m, err := NewIgnoreMatcher(root, []string{"node_modules"})
	if err != nil {
		t.Fatal(err)
	}

	sink := newMemSink()
	if _, err := Walk(root, sink, Options{Ignore: m}); err != nil {
		t.Fatal(err)
	}

	if _, ok := sink.entries[filepath.Join(root, "node_modules")]; ok {
		t.Error("expected node_modules to be ignored")
	}
	if _, ok := sink.entries[filepath.Join(root, "keep.txt")]; !ok {
		t.Error("expected keep.txt to survive")
	}
}

func TestWalkCallbackQuitCancels(t *testing.T) {
	root := t.TempDir()
	mkfile(t, filepath.Join(root, "a.txt"), "a")
	mkfile(t, filepath.Join(root, "b.txt"), "b")

	sink := newMemSink()
	cancelled, err := Walk(root, sink, Options{
		Callback: func(e *sv.Entry) Decision {
			return Quit
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !cancelled {
		t.Error("expected Quit callback to cancel the walk")
	}
}
