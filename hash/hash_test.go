package hash

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRandLike(t *testing.T, path string, size int) {
	t.Helper()
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPartialSameForIdenticalSmallFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	writeRandLike(t, a, 4096)
	writeRandLike(t, b, 4096)

	ha, err := Partial(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := Partial(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Error("expected identical small files to have equal partial hashes")
	}
}

func TestPartialDiffersOnLength(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	writeRandLike(t, a, 100)
	writeRandLike(t, b, 101)

	ha, _ := Partial(a)
	hb, _ := Partial(b)
	if ha == hb {
		t.Error("expected different-length files to differ (the extra trailing byte changes the digest)")
	}
}

func TestPartialEqualsFullBelowTwiceChunkSize(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "small.bin")
	writeRandLike(t, small, partialChunk+17) // > chunk, < 2*chunk

	p, err := Partial(small)
	if err != nil {
		t.Fatal(err)
	}
	f, err := Full(small)
	if err != nil {
		t.Fatal(err)
	}
	if p != f {
		t.Error("Partial must equal Full when file length <= 2*partialChunk")
	}
}

func TestPartialDiffersFromFullAboveTwiceChunkSize(t *testing.T) {
	dir := t.TempDir()
	large := filepath.Join(dir, "large.bin")
	writeRandLike(t, large, 2*partialChunk+1)

	p, err := Partial(large)
	if err != nil {
		t.Fatal(err)
	}
	f, err := Full(large)
	if err != nil {
		t.Fatal(err)
	}
	if p == f {
		t.Error("Partial (head+tail+length) should not equal Full (whole-content) above 2*partialChunk")
	}
}

func TestFullMatchesSameContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	writeRandLike(t, a, 2*1024*1024)
	writeRandLike(t, b, 2*1024*1024)

	same, err := SameContent(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if !same {
		t.Error("expected two identical large files to hash equal")
	}
}

func TestFullDiffersOnOneByte(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	writeRandLike(t, a, 4096)
	writeRandLike(t, b, 4096)

	buf, _ := os.ReadFile(b)
	buf[0] ^= 0xff
	os.WriteFile(b, buf, 0644)

	same, err := SameContent(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if same {
		t.Error("expected single-byte difference to be detected")
	}
}
