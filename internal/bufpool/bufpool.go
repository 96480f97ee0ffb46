// Package bufpool provides size-bucketed reuse of byte buffers for the
// worker pool and the streaming guard.
//
// Buckets are keyed by next-power-of-two capacity and bounded two ways: a
// per-bucket buffer count and an aggregate byte budget across all buckets.
// Released buffers are zero-filled before they become reusable, so a
// pooled buffer never leaks a previous payload.
package bufpool

import (
	"math/bits"
	"sync"

	"github.com/crimp-io/crimp/metrics"
)

const (
	// MinBucketSize is the smallest bucket; requests below it round up.
	MinBucketSize = 1 << 10 // 1KiB

	// MaxBucketSize is the largest pooled capacity; larger buffers are
	// allocated fresh and discarded on release.
	MaxBucketSize = 1 << 24 // 16MiB

	// DefaultPerBucket bounds the buffer count kept per bucket.
	DefaultPerBucket = 16

	// DefaultBudget bounds the aggregate bytes retained across buckets.
	DefaultBudget = 64 * 1024 * 1024
)

// Pool is a bucketed byte-buffer pool.
//
// All methods are safe for concurrent use; the buckets are mutated under a
// single mutex since the engine dispatcher and stream guards run on
// separate goroutines.
type Pool struct {
	mu        sync.Mutex
	buckets   map[int][][]byte
	perBucket int
	budget    int
	retained  int

	// Stats counters, for the metrics gauges.
	hits   uint64
	misses uint64
}

// New creates a pool with the given per-bucket count cap and aggregate
// byte budget. Non-positive arguments select the defaults.
func New(perBucket, budget int) *Pool {
	if perBucket <= 0 {
		perBucket = DefaultPerBucket
	}
	if budget <= 0 {
		budget = DefaultBudget
	}

	return &Pool{
		buckets:   make(map[int][][]byte),
		perBucket: perBucket,
		budget:    budget,
	}
}

// bucketFor rounds size up to the bucket capacity, or 0 for unpoolable sizes.
func bucketFor(size int) int {
	if size <= 0 || size > MaxBucketSize {
		return 0
	}
	if size <= MinBucketSize {
		return MinBucketSize
	}

	return 1 << bits.Len(uint(size-1))
}

// Allocate returns a buffer of exactly size bytes, backed by a pooled
// power-of-two capacity when one is available.
func (p *Pool) Allocate(size int) []byte {
	bucket := bucketFor(size)
	if bucket == 0 {
		return make([]byte, size)
	}

	p.mu.Lock()
	list := p.buckets[bucket]
	if n := len(list); n > 0 {
		buf := list[n-1]
		p.buckets[bucket] = list[:n-1]
		p.retained -= bucket
		metrics.BufferPoolRetained.Sub(float64(bucket))
		p.hits++
		p.mu.Unlock()

		return buf[:size]
	}
	p.misses++
	p.mu.Unlock()

	return make([]byte, size, bucket)
}

// Release zero-fills buf and returns it to its bucket. The buffer is
// discarded instead when its bucket or the aggregate budget is already
// full, or when its capacity is not a pooled bucket size.
//
// The caller must not use buf after Release.
func (p *Pool) Release(buf []byte) {
	c := cap(buf)
	bucket := bucketFor(c)
	if bucket != c {
		return
	}

	buf = buf[:c]
	clear(buf)

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.buckets[bucket]) >= p.perBucket || p.retained+bucket > p.budget {
		return
	}
	p.buckets[bucket] = append(p.buckets[bucket], buf)
	p.retained += bucket
	metrics.BufferPoolRetained.Add(float64(bucket))
}

// Stats reports pool counters for observability.
type Stats struct {
	Hits     uint64
	Misses   uint64
	Retained int
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{Hits: p.hits, Misses: p.misses, Retained: p.retained}
}
