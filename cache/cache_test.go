package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	sv "github.com/opencoff/spaceview"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tree := &sv.Node{
		ID: "/home/user", Name: "user", Path: "/home/user", IsDir: true,
		Size: 42, FileCount: 1, DirCount: 0,
		Children: []*sv.Node{
			{ID: "/home/user/f.txt", Name: "f.txt", Path: "/home/user/f.txt", Size: 42},
		},
	}

	if err := s.Put(ctx, "/home/user", tree); err != nil {
		t.Fatalf("Put: %v", err)
	}

	rec, err := s.Get(ctx, "/home/user")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Tree.Size != 42 || len(rec.Tree.Children) != 1 {
		t.Errorf("round-tripped tree mismatch: %+v", rec.Tree)
	}
}

func TestGetMissReturnsSentinel(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "/nope")
	if !errors.Is(err, sv.ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestPutUpsertsOnSecondCall(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := &sv.Node{ID: "/a", Path: "/a", IsDir: true, Size: 1}
	second := &sv.Node{ID: "/a", Path: "/a", IsDir: true, Size: 2}

	if err := s.Put(ctx, "/a", first); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, "/a", second); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Get(ctx, "/a")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Tree.Size != 2 {
		t.Errorf("expected upsert to replace size with 2, got %d", rec.Tree.Size)
	}

	hist, err := s.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 {
		t.Errorf("expected exactly one history row for /a, got %d", len(hist))
	}
}

func TestDeleteLogRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.LogDeletion(ctx, "/a", "/a/gone.txt"); err != nil {
		t.Fatal(err)
	}
	got, err := s.RecentDeletions(ctx, "/a", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "/a/gone.txt" {
		t.Errorf("expected [/a/gone.txt], got %v", got)
	}
}
