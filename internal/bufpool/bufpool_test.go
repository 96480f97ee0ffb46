package bufpool

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/crimp-io/crimp/metrics"
)

// TestBucketRounding verifies power-of-two rounding and the unpoolable
// boundaries.
func TestBucketRounding(t *testing.T) {
	require.Equal(t, MinBucketSize, bucketFor(1))
	require.Equal(t, MinBucketSize, bucketFor(MinBucketSize))
	require.Equal(t, MinBucketSize*2, bucketFor(MinBucketSize+1))
	require.Equal(t, 1<<13, bucketFor(5000))
	require.Equal(t, MaxBucketSize, bucketFor(MaxBucketSize))
	require.Equal(t, 0, bucketFor(0))
	require.Equal(t, 0, bucketFor(MaxBucketSize+1))
}

// TestAllocateReuse verifies a released buffer is reused for a request in
// the same bucket.
func TestAllocateReuse(t *testing.T) {
	p := New(4, 1<<20)

	buf := p.Allocate(1000)
	require.Len(t, buf, 1000)
	require.Equal(t, 1024, cap(buf))

	p.Release(buf)

	again := p.Allocate(512)
	require.Len(t, again, 512)
	require.Equal(t, 1024, cap(again))

	stats := p.Stats()
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)
}

// TestReleaseZeroFills verifies a pooled buffer never leaks a previous
// payload.
func TestReleaseZeroFills(t *testing.T) {
	p := New(4, 1<<20)

	buf := p.Allocate(64)
	for i := range buf {
		buf[i] = 0xAB
	}
	p.Release(buf)

	clean := p.Allocate(64)
	for i, b := range clean {
		require.Zero(t, b, "byte %d should be zeroed", i)
	}
}

// TestPerBucketCap verifies the bucket count bound discards overflow.
func TestPerBucketCap(t *testing.T) {
	p := New(1, 1<<20)

	a := p.Allocate(100)
	b := p.Allocate(100)
	p.Release(a)
	p.Release(b) // bucket already holds one; discarded

	require.Equal(t, MinBucketSize, p.Stats().Retained)
}

// TestAggregateBudget verifies the byte budget bounds retention across
// buckets.
func TestAggregateBudget(t *testing.T) {
	p := New(16, 2048)

	a := p.Allocate(1024)
	b := p.Allocate(1024)
	c := p.Allocate(1024)
	p.Release(a)
	p.Release(b)
	p.Release(c) // would exceed the 2048-byte budget; discarded

	require.Equal(t, 2048, p.Stats().Retained)
}

// TestRetainedGauge verifies the retained-bytes gauge tracks releases and
// reuse.
func TestRetainedGauge(t *testing.T) {
	p := New(4, 1<<20)
	before := testutil.ToFloat64(metrics.BufferPoolRetained)

	buf := p.Allocate(100)
	p.Release(buf)
	require.Equal(t, before+float64(MinBucketSize), testutil.ToFloat64(metrics.BufferPoolRetained))

	p.Allocate(100)
	require.Equal(t, before, testutil.ToFloat64(metrics.BufferPoolRetained))
}

// TestOversizeBypassesPool verifies buffers above the largest bucket are
// allocated fresh and never retained.
func TestOversizeBypassesPool(t *testing.T) {
	p := New(4, 1<<30)

	buf := p.Allocate(MaxBucketSize + 1)
	require.Len(t, buf, MaxBucketSize+1)
	p.Release(buf)

	require.Zero(t, p.Stats().Retained)
}
