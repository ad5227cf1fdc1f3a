package shardmap

// Config defines configurable options for Map construction. All fields
// are set through Option functions passed to New.
type Config[K comparable] struct {
	// hasher specifies a custom hash function for keys.
	// If nil, the built-in hash function will be used.
	hasher HashFunc[K]

	// seed is passed to the hasher on every call. A random seed is
	// generated when none is set explicitly.
	seed    uint64
	seedSet bool

	// expectedSize and concurrencyLevel are sizing hints. They are
	// recorded but deliberately never consulted: a Map always starts
	// with shardCount locks and shardCount buckets. See
	// WithExpectedSize and WithConcurrencyLevel.
	expectedSize     int
	concurrencyLevel int
}

// Option configures a Map during New.
type Option[K comparable] func(*Config[K])

// WithHasher sets a custom key hashing function for the map.
//
// Parameters:
//   - fn: hash function taking a key and the map's seed. Pass nil to
//     keep the default built-in hasher.
//
// Usage:
//
//	// XXH3 for string keys
//	m := New[string, int](WithHasher(XXH3StringHasher))
//
//	// Custom hasher for an integer-like key type
//	m := New[uint64, string](WithHasher(func(k uint64, seed uint64) uint64 {
//		return k ^ seed
//	}))
//
// Notes:
//   - The hasher must be deterministic for a given (key, seed) pair;
//     shard routing and bucket placement both derive from it.
func WithHasher[K comparable](fn HashFunc[K]) Option[K] {
	return func(c *Config[K]) {
		if fn != nil {
			c.hasher = fn
		}
	}
}

// WithSeed fixes the seed passed to the hash function. Without this
// option every Map instance draws a random seed, so bucket placement
// differs between instances and process runs. Fixing the seed makes
// placement reproducible, which is mainly useful in tests.
func WithSeed[K comparable](seed uint64) Option[K] {
	return func(c *Config[K]) {
		c.seed = seed
		c.seedSet = true
	}
}

// WithExpectedSize records an expected-size hint.
//
// The hint is accepted for API compatibility but does not affect the
// map: regardless of the value given, a new Map starts with shardCount
// buckets and grows on demand as entries are inserted. This mirrors the
// behavior callers of the historical constructor overloads observed, and
// is kept intentionally.
func WithExpectedSize[K comparable](n int) Option[K] {
	return func(c *Config[K]) {
		c.expectedSize = n
	}
}

// WithConcurrencyLevel records a concurrency-level hint.
//
// Like WithExpectedSize, the hint is accepted but ignored: the shard
// lock count is fixed at shardCount for the lifetime of every Map and
// cannot be tuned per instance.
func WithConcurrencyLevel[K comparable](n int) Option[K] {
	return func(c *Config[K]) {
		c.concurrencyLevel = n
	}
}
