// Package guard implements the security gate placed in front of every
// codec call: input validation, entropy sampling with a zip-bomb
// heuristic, path sanitization, a sliding-window rate limiter, a circuit
// breaker and a heap-growth monitor.
//
// Gate failures are synchronous and surface directly to the caller. The
// gate never retries a rejection; retrying a rejected zip bomb is itself
// a risk.
package guard

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/crimp-io/crimp/config"
	"github.com/crimp-io/crimp/errs"
	"github.com/crimp-io/crimp/format"
	"github.com/crimp-io/crimp/log"
	"github.com/crimp-io/crimp/metrics"
)

// Gate bundles the protective checks consumed by the worker pool and the
// streaming guard. Construct once per engine; the resolved mode is read
// from the config at construction and never re-read.
type Gate struct {
	mode    format.Mode
	maxSize int
	logger  *log.Logger

	limiter *RateLimiter
	breaker *CircuitBreaker
	monitor *MemoryMonitor
}

// New creates a gate from a validated config. A nil logger discards logs.
func New(cfg *config.Config, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.Nop()
	}

	return &Gate{
		mode:    cfg.Mode,
		maxSize: cfg.MaxInputSize,
		logger:  logger.Named("gate"),
		limiter: NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax, nil),
		breaker: NewCircuitBreaker(cfg.BreakerInterval, cfg.BreakerFailures, nil),
		monitor: NewMemoryMonitor(cfg.MaxMemoryGrowth, cfg.MemoryCheckInterval),
	}
}

// Mode returns the resolved operating profile.
func (g *Gate) Mode() format.Mode {
	return g.mode
}

// Monitor exposes the gate's memory monitor so the streaming guard can
// share the same throttled checks.
func (g *Gate) Monitor() *MemoryMonitor {
	return g.monitor
}

// Breaker exposes the circuit breaker, mainly so tests and maintenance
// tooling can disable it.
func (g *Gate) Breaker() *CircuitBreaker {
	return g.breaker
}

// ValidateInput normalizes raw into a byte slice. Accepted
// representations: []byte, string, *bytes.Buffer. Anything else fails
// with ErrInvalidType; payloads above the configured maximum fail with
// ErrInputTooLarge.
func (g *Gate) ValidateInput(raw any) ([]byte, error) {
	var data []byte
	switch v := raw.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	case *bytes.Buffer:
		data = v.Bytes()
	default:
		metrics.Rejections.WithLabelValues("invalid_type").Inc()
		return nil, errs.Wrap(errs.ErrInvalidType, "validate", nil)
	}

	if len(data) > g.maxSize {
		metrics.Rejections.WithLabelValues("input_too_large").Inc()
		g.logger.Warn("input rejected",
			zap.Int("size", len(data)),
			zap.Int("max", g.maxSize),
		)

		return nil, errs.Wrap(errs.ErrInputTooLarge, "validate", nil)
	}

	return data, nil
}

// Screen runs the mode-gated zip-bomb heuristic over data. Performance
// mode skips it entirely.
func (g *Gate) Screen(data []byte) error {
	if g.mode == format.ModePerformance {
		return nil
	}

	if suspicious, reason := SuspectBomb(data); suspicious {
		metrics.Rejections.WithLabelValues("zip_bomb").Inc()
		g.logger.Warn("zip bomb suspected",
			zap.Int("size", len(data)),
			zap.String("reason", reason),
			zap.Uint64("digest", xxhash.Sum64(sample(data))),
		)

		return errs.Wrap(errs.ErrZipBombSuspected, "screen", nil)
	}

	return nil
}

// Admit runs the pre-dispatch authorization checks: rate limit, circuit
// breaker, memory growth. Called once per operation before any work is
// scheduled.
func (g *Gate) Admit() error {
	if !g.limiter.Allow() {
		metrics.Rejections.WithLabelValues("rate_limited").Inc()
		return errs.Wrap(errs.ErrRateLimited, "admit", nil)
	}
	if !g.breaker.Allow() {
		metrics.Rejections.WithLabelValues("circuit_open").Inc()
		return errs.Wrap(errs.ErrCircuitOpen, "admit", nil)
	}
	if err := g.monitor.Check(); err != nil {
		metrics.Rejections.WithLabelValues("memory_limit").Inc()
		return err
	}

	return nil
}
