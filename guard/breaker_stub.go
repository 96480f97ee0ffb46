//go:build !linux

package guard

// systemLoadAvg is unavailable off Linux; the breaker then relies on heap
// utilization alone.
func systemLoadAvg() (float64, bool) {
	return 0, false
}
