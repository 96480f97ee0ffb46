package stream

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/crimp-io/crimp/errs"
	"github.com/crimp-io/crimp/guard"
	"github.com/crimp-io/crimp/log"
)

// GuardedWriter is a compressing io.WriteCloser with per-chunk admission
// and throttled memory checks. Once destroyed it is inert: every call
// fails with the terminal error and nothing further reaches the codec.
type GuardedWriter struct {
	mu       sync.Mutex
	state    State
	err      error
	cw       io.WriteCloser
	maxChunk int
	monitor  *guard.MemoryMonitor
	logger   *log.Logger

	bytesIn  int64
	bytesOut int64
}

// NewWriter returns a guarded compressing writer over dst.
func (g *Guard) NewWriter(dst io.Writer) (*GuardedWriter, error) {
	counted := &countingWriter{w: dst}
	cw, err := g.sc.NewWriter(counted)
	if err != nil {
		return nil, err
	}

	gw := &GuardedWriter{
		state:    StateIdle,
		cw:       cw,
		maxChunk: g.cfg.MaxStreamChunk(),
		monitor:  g.gate.Monitor(),
		logger:   g.logger,
	}
	counted.n = &gw.bytesOut

	return gw, nil
}

// Write compresses p through the codec. Chunks above the mode-dependent
// maximum are rejected without destroying the stream; a memory-cap breach
// destroys it.
func (w *GuardedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writable(); err != nil {
		return 0, err
	}
	if len(p) > w.maxChunk {
		return 0, errs.Wrap(errs.ErrChunkTooLarge, "stream write",
			fmt.Errorf("%d bytes exceeds %d byte chunk limit", len(p), w.maxChunk))
	}
	if err := w.monitor.Check(); err != nil {
		w.destroy(err)
		return 0, err
	}

	w.state = StateActive
	n, err := w.cw.Write(p)
	w.bytesIn += int64(n)
	if err != nil {
		w.destroy(err)
		return n, err
	}

	return n, nil
}

// Close flushes the codec and finalizes the stream.
func (w *GuardedWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.state {
	case StateErrored:
		return w.err
	case StateClosed:
		return nil
	}

	w.state = StateFlushing
	if err := w.cw.Close(); err != nil {
		w.destroy(err)
		return err
	}
	w.state = StateClosed

	return nil
}

// State returns the current lifecycle state.
func (w *GuardedWriter) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.state
}

// BytesWritten returns plain bytes accepted and compressed bytes emitted.
func (w *GuardedWriter) BytesWritten() (in, out int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.bytesIn, w.bytesOut
}

func (w *GuardedWriter) writable() error {
	switch w.state {
	case StateErrored:
		return w.err
	case StateClosed, StateFlushing:
		return fmt.Errorf("write on %s stream", w.state)
	}

	return nil
}

// destroy records the terminal error exactly once; later calls see the
// stored error without re-logging.
func (w *GuardedWriter) destroy(err error) {
	if w.state == StateErrored {
		return
	}
	w.state = StateErrored
	w.err = err
	w.logger.Warn("compress stream destroyed", zap.Error(err))
}

// countingWriter counts bytes passed to the sink. A slow sink blocks here,
// which is the backpressure relay to the codec above it.
type countingWriter struct {
	w io.Writer
	n *int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if c.n != nil {
		*c.n += int64(n)
	}

	return n, err
}
