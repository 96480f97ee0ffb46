//go:build linux

package guard

import (
	"golang.org/x/sys/unix"
)

// systemLoadAvg returns the 1-minute load average from sysinfo(2).
func systemLoadAvg() (float64, bool) {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return 0, false
	}

	// Loads are fixed-point, scaled by 2^16.
	return float64(si.Loads[0]) / 65536.0, true
}
