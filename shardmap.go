package shardmap

import (
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
)

// ErrNotFound is returned by At when the requested key is not present.
var ErrNotFound = errors.New("shardmap: key not found")

const (
	// shardCount is the number of shard mutexes. It is fixed for the
	// lifetime of a Map and also the initial bucket count; capacity is
	// always shardCount * 4^k after k growths.
	shardCount = 63

	// loadFactor is the occupancy threshold that triggers a growth on
	// Insert. It is a soft limit: concurrent inserts racing the check
	// may exceed it transiently, in which case a later Insert's own
	// check triggers the growth.
	loadFactor = 0.9

	// growthShift quadruples the table on every growth (capacity <<= 2),
	// keeping capacity a multiple of shardCount.
	growthShift = 2
)

// entry is a key/value pair stored by value in a bucket chain.
type entry[K comparable, V any] struct {
	key K
	val V
}

// Map is a concurrent hash map protected by a fixed set of shard locks.
//
// Every key routes to one of shardCount mutexes via hash(key) mod
// shardCount, so operations on keys in different shards proceed in
// parallel while operations within a shard are serialized. The bucket
// table grows online: once occupancy crosses loadFactor, the next Insert
// quadruples the table under a global coordinator lock plus all shard
// locks, which gives it exclusive access without blocking readers of
// other maps or requiring reader-side retries.
//
// Semantics to be aware of:
//   - Insert never overwrites: inserting an existing key is a no-op
//     that reports false.
//   - Size is maintained as an atomic counter and read without locks,
//     so it can be momentarily stale under concurrent mutation.
//   - The shard count is fixed; only the bucket table grows.
//
// A Map must be created by New and must not be copied after first use.
type Map[K comparable, V any] struct {
	_ noCopy

	// growMu serializes structural changes (growth, Clear) against each
	// other and against the shard locks. Lock hierarchy: growMu is
	// always taken before any shard mutex, and shard mutexes are taken
	// in increasing index order whenever more than one is needed.
	growMu sync.Mutex
	shards [shardCount]sync.Mutex

	// buckets is replaced wholesale by grow and Clear while growMu and
	// every shard mutex are held. Ordinary operations read it under
	// their single shard mutex; since a structural change cannot start
	// without that same mutex, both buckets and capacity are stable for
	// the whole critical section.
	buckets [][]entry[K, V]

	size     atomic.Int64
	capacity atomic.Uint64

	hash HashFunc[K]
	seed uint64
}

// New creates a Map. The zero value is not usable.
//
// Parameters:
//   - opts: configuration options (WithHasher, WithSeed, ...). The
//     sizing hints WithExpectedSize and WithConcurrencyLevel are
//     accepted but do not change the initial geometry.
func New[K comparable, V any](opts ...Option[K]) *Map[K, V] {
	var cfg Config[K]
	for _, o := range opts {
		o(&cfg)
	}

	m := &Map[K, V]{
		buckets: make([][]entry[K, V], shardCount),
		hash:    cfg.hasher,
		seed:    cfg.seed,
	}
	if m.hash == nil {
		m.hash = defaultHasher[K]
	}
	if !cfg.seedSet {
		m.seed = rand.Uint64()
	}
	m.capacity.Store(shardCount)
	return m
}

// Insert adds (key, value) if key is not already present and reports
// whether it did. The value of an existing key is left untouched; Insert
// is not an upsert, and a duplicate insert is a no-op returning false.
func (m *Map[K, V]) Insert(key K, value V) bool {
	if float64(m.capacity.Load())*loadFactor <= float64(m.size.Load()) {
		m.growMu.Lock()
		// Re-check under the lock: another Insert may have grown the
		// table while we waited.
		if float64(m.capacity.Load())*loadFactor <= float64(m.size.Load()) {
			m.grow()
		}
		m.growMu.Unlock()
	}

	h := m.hash(key, m.seed)
	mu := &m.shards[h%shardCount]
	mu.Lock()
	defer mu.Unlock()

	i := h % m.capacity.Load()
	for _, e := range m.buckets[i] {
		if e.key == key {
			return false
		}
	}
	m.buckets[i] = append(m.buckets[i], entry[K, V]{key: key, val: value})
	m.size.Add(1)
	return true
}

// Erase removes the entry for key and reports whether one was present.
func (m *Map[K, V]) Erase(key K) bool {
	h := m.hash(key, m.seed)
	mu := &m.shards[h%shardCount]
	mu.Lock()
	defer mu.Unlock()

	i := h % m.capacity.Load()
	b := m.buckets[i]
	for j := range b {
		if b[j].key == key {
			// Chains are unordered: move the last entry into the hole
			// and truncate. The cleared tail slot drops any references
			// held by K or V.
			last := len(b) - 1
			b[j] = b[last]
			b[last] = entry[K, V]{}
			m.buckets[i] = b[:last]
			m.size.Add(-1)
			return true
		}
	}
	return false
}

// Find retrieves the value stored for key. When ok is false the returned
// value is the zero V and carries no meaning.
func (m *Map[K, V]) Find(key K) (value V, ok bool) {
	h := m.hash(key, m.seed)
	mu := &m.shards[h%shardCount]
	mu.Lock()
	defer mu.Unlock()

	for _, e := range m.buckets[h%m.capacity.Load()] {
		if e.key == key {
			return e.val, true
		}
	}
	return *new(V), false
}

// At retrieves the value stored for key, or ErrNotFound if the key is
// absent. It is the only operation that reports a condition through an
// error; everything else communicates through booleans.
func (m *Map[K, V]) At(key K) (V, error) {
	v, ok := m.Find(key)
	if !ok {
		return v, ErrNotFound
	}
	return v, nil
}

// Clear removes every entry and shrinks the table back to its initial
// geometry. It takes the coordinator lock plus every shard lock, so it
// cannot interleave with any other operation.
func (m *Map[K, V]) Clear() {
	m.growMu.Lock()
	for i := range m.shards {
		m.shards[i].Lock()
	}

	m.buckets = make([][]entry[K, V], shardCount)
	m.size.Store(0)
	m.capacity.Store(shardCount)

	for i := shardCount - 1; i >= 0; i-- {
		m.shards[i].Unlock()
	}
	m.growMu.Unlock()
}

// Size returns the current entry count. The counter is read atomically
// without taking any lock, so the result may be stale relative to
// concurrent mutations; once all calls have returned it equals the net
// number of successful inserts minus successful erases.
func (m *Map[K, V]) Size() int {
	return int(m.size.Load())
}

// grow quadruples the bucket table and rehashes every entry into it.
// The caller must hold growMu. grow takes every shard mutex in
// increasing index order, so no ordinary operation can be in flight
// while the table is replaced, and none can start until it finishes.
//
// There is no overflow guard on capacity; entry counts anywhere near
// the shift limit are out of scope.
func (m *Map[K, V]) grow() {
	for i := range m.shards {
		m.shards[i].Lock()
	}

	newCap := m.capacity.Load() << growthShift
	newBuckets := make([][]entry[K, V], newCap)
	for _, b := range m.buckets {
		for _, e := range b {
			i := m.hash(e.key, m.seed) % newCap
			newBuckets[i] = append(newBuckets[i], e)
		}
	}
	m.buckets = newBuckets
	m.capacity.Store(newCap)

	for i := shardCount - 1; i >= 0; i-- {
		m.shards[i].Unlock()
	}
}

// noCopy may be added to structs which must not be copied
// after the first use.
//
// See https://golang.org/issues/8005#issuecomment-190753527
// for details.
//
// Note that it must not be embedded, due to the Lock and Unlock methods.
type noCopy struct{}

// Lock is a no-op used by copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
