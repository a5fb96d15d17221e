// Package hashing computes content digests that identify documents across the
// whole pipeline: deduplication, thumbnail names and stored records all key on them.
package hashing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned when the file vanished before it could be hashed.
var ErrNotFound = errors.New("file not found")

// Digest is a lowercase hex SHA-256 of a file's full contents.
type Digest string

func (d Digest) String() string {
	return string(d)
}

// Short returns the first n characters, used for human-facing suffixes.
func (d Digest) Short(n int) string {
	if n >= len(d) {
		return string(d)
	}
	return string(d[:n])
}

// RecordLookup answers whether a digest is already persisted.
type RecordLookup interface {
	Exists(ctx context.Context, hash string) (bool, error)
}

type Hasher struct {
	lookup RecordLookup
}

// NewHasher creates a hasher. lookup may be nil when only Hash is needed.
func NewHasher(lookup RecordLookup) *Hasher {
	return &Hasher{lookup: lookup}
}

// Hash streams the file at path through SHA-256.
func (h *Hasher) Hash(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sum := sha256.New()
	if _, err := io.Copy(sum, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Digest(hex.EncodeToString(sum.Sum(nil))), nil
}

// Exists asks the record sink whether digest was seen before. It never mutates state.
func (h *Hasher) Exists(ctx context.Context, digest Digest) (bool, error) {
	if h.lookup == nil {
		return false, nil
	}
	return h.lookup.Exists(ctx, string(digest))
}
