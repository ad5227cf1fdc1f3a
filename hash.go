package shardmap

import (
	"hash/maphash"

	"github.com/zeebo/xxh3"
)

// HashFunc computes an unsigned hash for a key. A Map calls it with the
// same seed for its entire lifetime, and derives both the shard index and
// the bucket index of a key from a single evaluation, so implementations
// must be deterministic for a given (key, seed) pair.
//
// Implementations may ignore the seed; they then lose per-instance hash
// randomization but remain correct.
type HashFunc[K comparable] func(key K, seed uint64) uint64

// processSeed randomizes the built-in hasher across process runs, the
// same property Go's native maps have.
var processSeed = maphash.MakeSeed()

// defaultHasher hashes any comparable key using the runtime's built-in
// algorithm. The per-Map seed is folded in after the fact, which is
// enough to decorrelate bucket placement between instances.
func defaultHasher[K comparable](key K, seed uint64) uint64 {
	return maphash.Comparable(processSeed, key) ^ seed
}

// XXH3StringHasher is a HashFunc for string keys backed by XXH3. It is
// noticeably faster than the built-in hasher for long strings and, unlike
// the default, produces the same value in every process for a given
// (key, seed) pair.
//
// Usage:
//
//	m := New[string, int](WithHasher(XXH3StringHasher))
func XXH3StringHasher(key string, seed uint64) uint64 {
	return xxh3.HashStringSeed(key, seed)
}
