// Package crimp is a hardening and parallelization layer in front of
// general-purpose compression codecs. It delegates the byte
// transformation to existing codec primitives (gzip, DEFLATE, Brotli,
// Zstandard, LZ4) and concentrates on making untrusted-input compression
// and decompression safe, bounded and scalable across cores.
//
// Three pieces do the work:
//   - the security gate (package guard): size limits, entropy sampling,
//     zip-bomb heuristics, path sanitization, rate limiting, a circuit
//     breaker and a memory-growth monitor
//   - the worker pool (package engine): splits large payloads into
//     chunks, compresses them in parallel and reassembles them through a
//     binary container format
//   - the streaming guard (package stream): applies the same guards
//     incrementally as data flows
//
// Typical use:
//
//	eng, err := crimp.NewDefaultEngine()
//	if err != nil {
//		return err
//	}
//	defer eng.Terminate()
//
//	packed, err := eng.Compress(ctx, payload)
package crimp

import (
	"github.com/crimp-io/crimp/codec"
	"github.com/crimp-io/crimp/config"
	"github.com/crimp-io/crimp/engine"
	"github.com/crimp-io/crimp/format"
	"github.com/crimp-io/crimp/log"
	"github.com/crimp-io/crimp/stream"
)

// NewDefaultEngine creates an engine with the balanced-mode defaults and
// the gzip codec.
func NewDefaultEngine() (*engine.Engine, error) {
	return engine.New(config.Default(), codec.DefaultOptions(), nil)
}

// NewEngine creates an engine from an explicit configuration, codec
// options and logger. The caller owns the returned handle and must
// Terminate it; there is no package-level instance.
func NewEngine(cfg *config.Config, opts codec.Options, logger *log.Logger) (*engine.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return engine.New(cfg, opts, logger)
}

// NewSecureEngine creates an engine with every guard enabled.
func NewSecureEngine() (*engine.Engine, error) {
	cfg := config.Default()
	cfg.Mode = format.ModeSecurity
	cfg.ModeName = "security"

	return engine.New(cfg, codec.DefaultOptions(), nil)
}

// NewStreamGuard creates a standalone streaming guard sharing an engine's
// gate when eng is non-nil.
func NewStreamGuard(cfg *config.Config, opts codec.Options, eng *engine.Engine, logger *log.Logger) (*stream.Guard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if eng != nil {
		return stream.New(cfg, opts, eng.Gate(), logger)
	}

	return stream.New(cfg, opts, nil, logger)
}
