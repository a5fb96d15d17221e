package ingest

import (
	"context"
	"sync"

	"github.com/mrlokans/docshelf/internal/hashing"
)

// claimSet serializes "is this hash new?" decisions so that two files with the
// same content can never both be materialized, even with parallel workers.
type claimSet struct {
	mu     sync.Mutex
	claims map[hashing.Digest]bool
}

func newClaimSet() *claimSet {
	return &claimSet{claims: make(map[hashing.Digest]bool)}
}

// Claim reserves digest for the caller. It returns false when the digest is
// already claimed in this run or already persisted according to exists.
func (c *claimSet) Claim(ctx context.Context, digest hashing.Digest, exists func(context.Context, hashing.Digest) (bool, error)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.claims[digest] {
		return false, nil
	}
	known, err := exists(ctx, digest)
	if err != nil {
		return false, err
	}
	if known {
		return false, nil
	}
	c.claims[digest] = true
	return true, nil
}

// Release gives up a claim after the file failed, so a later copy may try again.
func (c *claimSet) Release(digest hashing.Digest) {
	c.mu.Lock()
	delete(c.claims, digest)
	c.mu.Unlock()
}

// dirReservations keeps concurrent workers from materializing into the same directory.
type dirReservations struct {
	mu   sync.Mutex
	dirs map[string]bool
}

func newDirReservations() *dirReservations {
	return &dirReservations{dirs: make(map[string]bool)}
}

// Reserve picks the first candidate that is neither reserved nor taken according
// to taken, and reserves it. It returns "" when all candidates are in use.
func (r *dirReservations) Reserve(candidates []string, taken func(dir string) bool) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, dir := range candidates {
		if r.dirs[dir] || taken(dir) {
			continue
		}
		r.dirs[dir] = true
		return dir
	}
	return ""
}

func (r *dirReservations) Release(dir string) {
	r.mu.Lock()
	delete(r.dirs, dir)
	r.mu.Unlock()
}
