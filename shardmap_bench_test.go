package shardmap

import (
	"strconv"
	"sync"
	"testing"

	"github.com/llxisdsh/pb"
)

var benchData [1 << 14]string

func init() {
	for i := range benchData {
		benchData[i] = strconv.Itoa(i)
	}
}

func BenchmarkInsert(b *testing.B) {
	b.ReportAllocs()
	m := New[string, int]()
	b.ResetTimer()
	b.RunParallel(func(tpb *testing.PB) {
		i := 0
		for tpb.Next() {
			m.Insert(benchData[i], i)
			i++
			if i >= len(benchData) {
				i = 0
			}
		}
	})
}

func BenchmarkFind(b *testing.B) {
	b.ReportAllocs()
	m := New[string, int]()
	for i := range benchData {
		m.Insert(benchData[i], i)
	}
	b.ResetTimer()
	b.RunParallel(func(tpb *testing.PB) {
		i := 0
		for tpb.Next() {
			_, _ = m.Find(benchData[i])
			i++
			if i >= len(benchData) {
				i = 0
			}
		}
	})
}

func BenchmarkFindXXH3(b *testing.B) {
	b.ReportAllocs()
	m := New[string, int](WithHasher(XXH3StringHasher))
	for i := range benchData {
		m.Insert(benchData[i], i)
	}
	b.ResetTimer()
	b.RunParallel(func(tpb *testing.PB) {
		i := 0
		for tpb.Next() {
			_, _ = m.Find(benchData[i])
			i++
			if i >= len(benchData) {
				i = 0
			}
		}
	})
}

// Baselines: the same workloads against sync.Map and pb.MapOf, to keep
// the cost of the shard-lock scheme visible relative to the lock-free
// designs.

func BenchmarkFindSyncMap(b *testing.B) {
	b.ReportAllocs()
	var m sync.Map
	for i := range benchData {
		m.LoadOrStore(benchData[i], i)
	}
	b.ResetTimer()
	b.RunParallel(func(tpb *testing.PB) {
		i := 0
		for tpb.Next() {
			_, _ = m.Load(benchData[i])
			i++
			if i >= len(benchData) {
				i = 0
			}
		}
	})
}

func BenchmarkFindPbMapOf(b *testing.B) {
	b.ReportAllocs()
	var m pb.MapOf[string, int]
	for i := range benchData {
		m.LoadOrStore(benchData[i], i)
	}
	b.ResetTimer()
	b.RunParallel(func(tpb *testing.PB) {
		i := 0
		for tpb.Next() {
			_, _ = m.Load(benchData[i])
			i++
			if i >= len(benchData) {
				i = 0
			}
		}
	})
}

func BenchmarkInsertPbMapOf(b *testing.B) {
	b.ReportAllocs()
	var m pb.MapOf[string, int]
	b.ResetTimer()
	b.RunParallel(func(tpb *testing.PB) {
		i := 0
		for tpb.Next() {
			_, _ = m.LoadOrStore(benchData[i], i)
			i++
			if i >= len(benchData) {
				i = 0
			}
		}
	})
}
