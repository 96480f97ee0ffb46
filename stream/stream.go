// Package stream wraps the host codec's streaming primitives with
// incremental enforcement of the same guards the gate applies to whole
// buffers: per-chunk admission, throttled memory checks and, in security
// mode, a running decompression-ratio guard.
//
// Backpressure is Go's synchronous io model: a saturated downstream sink
// blocks the producer inside Write, and the producer resumes when the
// sink drains. There is no separate pause/resume signaling.
package stream

import (
	"github.com/crimp-io/crimp/codec"
	"github.com/crimp-io/crimp/config"
	"github.com/crimp-io/crimp/guard"
	"github.com/crimp-io/crimp/log"
)

// State is the lifecycle of a guarded stream.
type State uint8

const (
	StateIdle State = iota
	StateActive
	StateFlushing
	StateClosed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateFlushing:
		return "flushing"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Guard builds guarded streams for one codec under one resolved
// configuration.
type Guard struct {
	cfg    *config.Config
	sc     codec.StreamCodec
	gate   *guard.Gate
	logger *log.Logger
}

// New creates a stream guard. The codec must support streaming (the LZ4
// block codec does not). A nil gate gets a private one from cfg; a nil
// logger discards logs.
func New(cfg *config.Config, opts codec.Options, gate *guard.Gate, logger *log.Logger) (*Guard, error) {
	sc, err := codec.NewStream(opts)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Nop()
	}
	if gate == nil {
		gate = guard.New(cfg, logger)
	}

	return &Guard{
		cfg:    cfg,
		sc:     sc,
		gate:   gate,
		logger: logger.Named("stream"),
	}, nil
}
