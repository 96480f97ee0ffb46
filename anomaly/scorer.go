// Package anomaly provides a pluggable, explicitly heuristic payload
// scorer. It is a fixed-window nearest-neighbor distance against a small
// baseline of observed feature vectors, not a trained model, and makes no
// statistical claims beyond "far from everything seen so far".
package anomaly

import (
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Scorer scores a payload's feature vector; higher means further from the
// observed baseline. Implementations decide their own scale.
type Scorer interface {
	Score(f Features) float64
	Observe(f Features)
}

// Features is the vector the scorer compares: byte entropy in bits, the
// compression ratio (output/input) and log2 of the payload size.
type Features struct {
	Entropy float64
	Ratio   float64
	SizeLog float64
}

// FeaturesOf derives a feature vector from a payload and its compressed
// size.
func FeaturesOf(data []byte, compressedLen int) Features {
	f := Features{}
	if len(data) == 0 {
		return f
	}

	var freq [256]int
	for _, b := range data {
		freq[b]++
	}
	for _, n := range freq {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(len(data))
		f.Entropy -= p * math.Log2(p)
	}

	f.Ratio = float64(compressedLen) / float64(len(data))
	f.SizeLog = math.Log2(float64(len(data)))

	return f
}

// Fingerprint identifies a payload sample for baseline deduplication.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// DefaultWindow is the baseline size of the built-in scorer.
const DefaultWindow = 32

// NNScorer keeps a fixed window of baseline vectors and scores by nearest
// Euclidean distance. An empty baseline scores everything zero.
type NNScorer struct {
	mu       sync.Mutex
	window   int
	baseline []Features
	next     int
}

var _ Scorer = (*NNScorer)(nil)

// NewNNScorer creates a scorer with the given baseline window.
// Non-positive selects DefaultWindow.
func NewNNScorer(window int) *NNScorer {
	if window <= 0 {
		window = DefaultWindow
	}

	return &NNScorer{window: window}
}

// Observe records a baseline vector, evicting the oldest once the window
// is full.
func (s *NNScorer) Observe(f Features) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.baseline) < s.window {
		s.baseline = append(s.baseline, f)
		return
	}
	s.baseline[s.next] = f
	s.next = (s.next + 1) % s.window
}

// Score returns the Euclidean distance to the nearest baseline vector.
func (s *NNScorer) Score(f Features) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.baseline) == 0 {
		return 0
	}

	best := math.Inf(1)
	for _, b := range s.baseline {
		de := f.Entropy - b.Entropy
		dr := f.Ratio - b.Ratio
		ds := f.SizeLog - b.SizeLog
		if d := de*de + dr*dr + ds*ds; d < best {
			best = d
		}
	}

	return math.Sqrt(best)
}
