package anomaly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFeaturesOf verifies the feature vector on known inputs.
func TestFeaturesOf(t *testing.T) {
	f := FeaturesOf(nil, 0)
	require.Zero(t, f.Entropy)
	require.Zero(t, f.Ratio)
	require.Zero(t, f.SizeLog)

	// A single-byte alphabet has zero entropy.
	f = FeaturesOf(make([]byte, 1024), 32)
	require.Zero(t, f.Entropy)
	require.InDelta(t, 32.0/1024.0, f.Ratio, 1e-9)
	require.InDelta(t, 10.0, f.SizeLog, 1e-9)

	// A uniform 256-byte alphabet has the full 8 bits.
	data := make([]byte, 256)
	for i := range data {
		data[i] = byte(i)
	}
	f = FeaturesOf(data, 256)
	require.InDelta(t, 8.0, f.Entropy, 1e-9)
}

// TestScorerEmptyBaseline verifies everything scores zero before any
// observation.
func TestScorerEmptyBaseline(t *testing.T) {
	s := NewNNScorer(0)
	require.Zero(t, s.Score(Features{Entropy: 8, Ratio: 50, SizeLog: 30}))
}

// TestScorerDistance verifies known vectors score close and outliers far.
func TestScorerDistance(t *testing.T) {
	s := NewNNScorer(8)

	baseline := Features{Entropy: 4.5, Ratio: 0.4, SizeLog: 20}
	s.Observe(baseline)

	require.Zero(t, s.Score(baseline))

	near := Features{Entropy: 4.6, Ratio: 0.4, SizeLog: 20}
	far := Features{Entropy: 0.1, Ratio: 90, SizeLog: 30}
	require.Less(t, s.Score(near), 0.5)
	require.Greater(t, s.Score(far), 10.0)
}

// TestScorerWindowEviction verifies the oldest vector is evicted once the
// window is full.
func TestScorerWindowEviction(t *testing.T) {
	s := NewNNScorer(2)

	old := Features{Entropy: 1}
	s.Observe(old)
	s.Observe(Features{Entropy: 5})
	s.Observe(Features{Entropy: 6}) // evicts the entropy-1 vector

	require.Greater(t, s.Score(old), 3.0)
}

// TestFingerprintStability verifies fingerprints are deterministic and
// payload-sensitive.
func TestFingerprintStability(t *testing.T) {
	a := Fingerprint([]byte("payload one"))
	require.Equal(t, a, Fingerprint([]byte("payload one")))
	require.NotEqual(t, a, Fingerprint([]byte("payload two")))
}

// TestScorerScale sanity-checks the metric is a real distance.
func TestScorerScale(t *testing.T) {
	s := NewNNScorer(4)
	s.Observe(Features{})

	f := Features{Entropy: 3, Ratio: 4}
	require.InDelta(t, 5.0, s.Score(f), 1e-9)
	require.False(t, math.IsNaN(s.Score(f)))
}
