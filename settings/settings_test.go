package settings

import (
	"path/filepath"
	"testing"
)

func TestOpenMissingFileReturnsDefaults(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "nope.json"))
	got := s.Get()
	want := Default()
	if got.SizeUnit != want.SizeUnit || len(got.IgnorePatterns) != len(want.IgnorePatterns) {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestSaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := Open(path)

	cur := s.Get()
	cur.ShowHiddenFiles = true
	cur.LargeFilesCount = 50
	if err := s.Save(cur); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reopened := Open(path)
	got := reopened.Get()
	if !got.ShowHiddenFiles || got.LargeFilesCount != 50 {
		t.Errorf("expected persisted settings, got %+v", got)
	}
}

func TestAddAndRemoveIgnorePattern(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "settings.json"))

	if _, err := s.AddIgnorePattern("vendor"); err != nil {
		t.Fatal(err)
	}
	got := s.Get()
	found := false
	for _, p := range got.IgnorePatterns {
		if p == "vendor" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected vendor in ignore patterns after Add")
	}

	if _, err := s.RemoveIgnorePattern("vendor"); err != nil {
		t.Fatal(err)
	}
	got = s.Get()
	for _, p := range got.IgnorePatterns {
		if p == "vendor" {
			t.Fatal("expected vendor removed from ignore patterns")
		}
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := Open(path)
	s.Save(Settings{ShowHiddenFiles: true, SizeUnit: "binary"})

	got, err := s.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if got.ShowHiddenFiles != Default().ShowHiddenFiles {
		t.Errorf("expected reset to restore default ShowHiddenFiles")
	}
}
