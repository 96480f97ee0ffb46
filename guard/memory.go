package guard

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/crimp-io/crimp/errs"
)

// MemoryMonitor compares current heap usage against a baseline captured at
// construction. Checks more frequent than the configured interval are
// no-ops, bounding overhead on hot paths; a throttled call repeats the
// previous verdict.
type MemoryMonitor struct {
	mu        sync.Mutex
	baseline  uint64
	maxGrowth uint64
	interval  time.Duration
	lastCheck time.Time
	lastErr   error

	now func() time.Time
}

// NewMemoryMonitor captures the heap baseline now and bounds growth to
// maxGrowth bytes.
func NewMemoryMonitor(maxGrowth uint64, interval time.Duration) *MemoryMonitor {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &MemoryMonitor{
		baseline:  m.HeapAlloc,
		maxGrowth: maxGrowth,
		interval:  interval,
		now:       time.Now,
	}
}

// Check fails with ErrMemoryLimitExceeded once heap growth over the
// baseline exceeds the cap.
func (mm *MemoryMonitor) Check() error {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	now := mm.now()
	if now.Sub(mm.lastCheck) < mm.interval {
		return mm.lastErr
	}
	mm.lastCheck = now

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.lastErr = nil
	if m.HeapAlloc > mm.baseline && m.HeapAlloc-mm.baseline > mm.maxGrowth {
		mm.lastErr = errs.Wrap(errs.ErrMemoryLimitExceeded, "memory",
			fmt.Errorf("heap grew %d bytes over a %d byte cap", m.HeapAlloc-mm.baseline, mm.maxGrowth))
	}

	return mm.lastErr
}
