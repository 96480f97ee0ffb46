package guard

const (
	// MinSampleSize is the smallest input the heuristic bothers with;
	// anything shorter cannot amplify enough to matter.
	MinSampleSize = 1024

	// sampleLimit is the prefix length sampled from moderate inputs.
	sampleLimit = 64 * 1024

	// stridedThreshold is the input size above which sampling switches
	// from a prefix to evenly spaced stripes, so a bomb with an innocent
	// prefix is still seen.
	stridedThreshold = 4 * 1024 * 1024

	stripeCount = 64
	stripeSize  = 1024

	// highEntropyBits short-circuits the heavy heuristic: data this close
	// to 8 bits of byte diversity is already compressed or encrypted.
	highEntropyBits = 7.0

	// dominantByteShare flags a sample where one byte value accounts for
	// nearly everything.
	dominantByteShare = 0.999

	// runShare flags a sample dominated by one run of identical bytes.
	runShare = 0.95
)

// sample selects the bytes the heuristic inspects: the full input when
// short, a fixed prefix for moderate inputs, evenly spaced stripes for
// large ones. The returned slice may alias data.
func sample(data []byte) []byte {
	switch {
	case len(data) <= sampleLimit:
		return data
	case len(data) <= stridedThreshold:
		return data[:sampleLimit]
	}

	out := make([]byte, 0, stripeCount*stripeSize)
	step := len(data) / stripeCount
	for i := 0; i < stripeCount; i++ {
		start := i * step
		end := start + stripeSize
		if end > len(data) {
			end = len(data)
		}
		out = append(out, data[start:end]...)
	}

	return out
}

// quickEntropy approximates entropy as the byte diversity ratio scaled to
// 8 bits: distinct values / 256 * 8. Cheap single pass; only used as a
// short-circuit, never as the flag itself.
func quickEntropy(s []byte) float64 {
	var seen [256]bool
	distinct := 0
	for _, b := range s {
		if !seen[b] {
			seen[b] = true
			distinct++
		}
	}

	return float64(distinct) / 256.0 * 8.0
}

// SuspectBomb reports whether data looks like a decompression bomb and the
// matched heuristic. Inputs below MinSampleSize always pass.
//
// High-entropy samples short-circuit as incompressible. Otherwise the full
// heuristic flags a sample with at most one distinct byte value, a
// dominant byte above 99.9% of the sample, or a longest identical run
// above 95% of the sample length.
func SuspectBomb(data []byte) (bool, string) {
	if len(data) < MinSampleSize {
		return false, ""
	}

	s := sample(data)
	if quickEntropy(s) >= highEntropyBits {
		return false, ""
	}

	var freq [256]int
	distinct := 0
	maxFreq := 0
	longestRun, run := 1, 1

	for i, b := range s {
		freq[b]++
		if freq[b] == 1 {
			distinct++
		}
		if freq[b] > maxFreq {
			maxFreq = freq[b]
		}
		if i > 0 {
			if b == s[i-1] {
				run++
				if run > longestRun {
					longestRun = run
				}
			} else {
				run = 1
			}
		}
	}

	switch {
	case distinct <= 1:
		return true, "single byte value"
	case float64(maxFreq)/float64(len(s)) > dominantByteShare:
		return true, "dominant byte value"
	case float64(longestRun)/float64(len(s)) > runShare:
		return true, "dominant run"
	}

	return false, ""
}
