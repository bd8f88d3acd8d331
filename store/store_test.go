package store

import (
	"testing"

	sv "github.com/opencoff/spaceview"
)

func TestInsertHardlinkDedup(t *testing.T) {
	s := New()

	key := sv.InodeKey{Dev: 1, Ino: 42}
	a := sv.NewFileEntry("/root/a.txt", 100, 0, key, true)
	b := sv.NewFileEntry("/root/b.txt", 100, 0, key, true)

	s.Insert(a)
	s.Insert(b)

	got, ok := s.Get("/root/b.txt")
	if !ok {
		t.Fatal("expected b.txt to be stored")
	}
	if got.Size != 0 {
		t.Errorf("expected second hardlink sighting to have size 0, got %d", got.Size)
	}

	_, _, total := s.Stats()
	if total != 100 {
		t.Errorf("expected aggregate size 100 (counted once), got %d", total)
	}
}

func TestInsertDistinctInodesBothCounted(t *testing.T) {
	s := New()

	a := sv.NewFileEntry("/root/a.txt", 50, 0, sv.InodeKey{Dev: 1, Ino: 1}, true)
	b := sv.NewFileEntry("/root/b.txt", 50, 0, sv.InodeKey{Dev: 1, Ino: 2}, true)

	s.Insert(a)
	s.Insert(b)

	_, _, total := s.Stats()
	if total != 100 {
		t.Errorf("expected 100, got %d", total)
	}
}

func TestDelete(t *testing.T) {
	s := New()
	e := sv.NewFileEntry("/root/a.txt", 30, 0, sv.InodeKey{}, false)
	s.Insert(e)

	s.Delete("/root/a.txt")
	if _, ok := s.Get("/root/a.txt"); ok {
		t.Error("expected entry to be gone after Delete")
	}
	files, _, total := s.Stats()
	if files != 0 || total != 0 {
		t.Errorf("expected counters to unwind, got files=%d total=%d", files, total)
	}
}
