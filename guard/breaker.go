package guard

import (
	"runtime"
	"sync"
	"time"

	"github.com/crimp-io/crimp/metrics"
)

const (
	// loadPerCoreLimit is the 1-minute load average per core above which a
	// health check fails.
	loadPerCoreLimit = 2.0

	// heapUtilizationLimit is the heap-in-use share of heap-from-OS above
	// which a health check fails.
	heapUtilizationLimit = 0.90
)

// CircuitBreaker rejects all operations once repeated system-health checks
// fail, until health recovers. Health is re-evaluated at most once per
// check interval; between checks Allow returns the cached verdict.
type CircuitBreaker struct {
	mu        sync.Mutex
	interval  time.Duration
	threshold int
	disabled  bool

	open      bool
	failures  int
	lastCheck time.Time

	now     func() time.Time
	loadAvg func() (float64, bool)
}

// NewCircuitBreaker creates a breaker that opens after threshold
// consecutive failed health checks, re-evaluating at most once per
// interval. A nil now selects time.Now.
func NewCircuitBreaker(interval time.Duration, threshold int, now func() time.Time) *CircuitBreaker {
	if now == nil {
		now = time.Now
	}

	return &CircuitBreaker{
		interval:  interval,
		threshold: threshold,
		now:       now,
		loadAvg:   systemLoadAvg,
	}
}

// Disable turns the breaker into a pass-through. Used by tests and
// maintenance tooling.
func (cb *CircuitBreaker) Disable() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.disabled = true
}

// Allow reports whether operations may proceed. At most one health
// evaluation per check interval; a healthy check resets the failure count
// and closes the breaker, threshold consecutive unhealthy checks open it.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.disabled {
		return true
	}

	now := cb.now()
	if now.Sub(cb.lastCheck) < cb.interval {
		return !cb.open
	}
	cb.lastCheck = now

	if cb.healthy() {
		cb.failures = 0
		if cb.open {
			cb.open = false
			metrics.BreakerOpen.Set(0)
		}

		return true
	}

	cb.failures++
	if cb.failures >= cb.threshold && !cb.open {
		cb.open = true
		metrics.BreakerOpen.Set(1)
	}

	return !cb.open
}

func (cb *CircuitBreaker) healthy() bool {
	if load, ok := cb.loadAvg(); ok {
		if load > loadPerCoreLimit*float64(runtime.NumCPU()) {
			return false
		}
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if m.HeapSys > 0 && float64(m.HeapInuse)/float64(m.HeapSys) > heapUtilizationLimit {
		return false
	}

	return true
}
