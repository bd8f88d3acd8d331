// hash.go - two-tier content hashing for duplicate detection
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

// Package hash computes two tiers of content fingerprint for a file:
// a cheap "partial" hash over its head, tail and length, and an
// expensive "full" hash over its entire content, streamed in large
// blocks via mmap for files that warrant it. The partial hash is
// meant to separate the duplicate-finder's size buckets into smaller
// candidate groups before paying for a full hash; it is never treated
// as proof of equality on its own.
package hash

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"io"
	"os"

	"github.com/opencoff/go-mmap"
)

const (
	// partialChunk is how much of the head and tail of a file the
	// partial hash reads.
	partialChunk = 64 * 1024

	// fullStreamThreshold is the size at or above which the full hash
	// is read via mmap in blocks rather than a plain streaming copy.
	fullStreamThreshold = 1 * 1024 * 1024

	// fullStreamBlock is the block size used when mmap-streaming a
	// large file for the full hash.
	fullStreamBlock = 1 * 1024 * 1024
)

// Sum is a SHA-256 digest, rendered as a fixed-size array so it can
// be used as a Go map key without an allocation per comparison.
type Sum [sha256.Size]byte

// String renders s as lowercase hex, the same representation sha256sum
// prints.
func (s Sum) String() string {
	return hex.EncodeToString(s[:])
}

// Partial computes the cheap fingerprint. For a file larger than
// 2*partialChunk it is SHA-256 over (partialChunk bytes of the head)
// || (partialChunk bytes of the tail) || (8-byte little-endian file
// length). For a file of at most 2*partialChunk it is SHA-256 of the
// whole content with no length suffix, the same digest Full returns.
func Partial(path string) (Sum, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sum{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Sum{}, err
	}
	size := fi.Size()

	h := sha256.New()

	head := make([]byte, partialChunk)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Sum{}, err
	}
	h.Write(head[:n])

	if size <= 2*partialChunk {
		// head read above already consumed [0, min(size,
		// partialChunk)); read whatever's left, i.e. [partialChunk,
		// size) if any. This covers the entire file exactly once, so
		// the result must equal Full's plain SHA-256(content) - no
		// length suffix.
		if size > int64(partialChunk) {
			rest := make([]byte, size-int64(partialChunk))
			n, err := io.ReadFull(f, rest)
			if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				return Sum{}, err
			}
			h.Write(rest[:n])
		}
		return finish(h), nil
	}

	if _, err := f.Seek(-partialChunk, io.SeekEnd); err != nil {
		return Sum{}, err
	}
	tail := make([]byte, partialChunk)
	n, err = io.ReadFull(f, tail)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Sum{}, err
	}
	h.Write(tail[:n])

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(size))
	h.Write(lenBuf[:])

	return finish(h), nil
}

// Full computes SHA-256 over the entire content of path. Files at or
// above fullStreamThreshold are read via mmap in fullStreamBlock
// chunks to avoid a full-size heap buffer; smaller files are hashed
// with a plain streaming copy.
func Full(path string) (Sum, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sum{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Sum{}, err
	}

	h := sha256.New()

	if fi.Size() < fullStreamThreshold {
		if _, err := io.Copy(h, f); err != nil {
			return Sum{}, err
		}
		return finish(h), nil
	}

	err = mmap.Reader(f, func(b []byte) error {
		for len(b) > 0 {
			n := len(b)
			if n > fullStreamBlock {
				n = fullStreamBlock
			}
			h.Write(b[:n])
			b = b[n:]
		}
		return nil
	})
	if err != nil {
		return Sum{}, err
	}

	return finish(h), nil
}

func finish(h hash.Hash) Sum {
	var s Sum
	copy(s[:], h.Sum(nil))
	return s
}

// SameContent reports whether two files are byte-identical by
// comparing their full hashes. Callers that already know the files
// are the same size should prefer this over a manual byte-by-byte
// comparison to exercise the same code path as the duplicate finder.
func SameContent(a, b string) (bool, error) {
	ha, err := Full(a)
	if err != nil {
		return false, err
	}
	hb, err := Full(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}
