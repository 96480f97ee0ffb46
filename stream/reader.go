package stream

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/crimp-io/crimp/errs"
	"github.com/crimp-io/crimp/format"
	"github.com/crimp-io/crimp/guard"
	"github.com/crimp-io/crimp/log"
)

// GuardedReader is a decompressing io.ReadCloser. It keeps running totals
// of compressed bytes consumed and plain bytes produced; in security mode
// the output/input ratio is checked before each decoded chunk is
// surfaced, and a breach destroys the stream with a zip-bomb error.
type GuardedReader struct {
	mu       sync.Mutex
	state    State
	err      error
	cr       io.ReadCloser
	maxChunk int
	maxRatio float64
	enforce  bool
	monitor  *guard.MemoryMonitor
	logger   *log.Logger

	bytesIn  int64
	bytesOut int64
}

// NewReader returns a guarded decompressing reader over the compressed
// source src.
func (g *Guard) NewReader(src io.Reader) (*GuardedReader, error) {
	gr := &GuardedReader{
		state:    StateIdle,
		maxChunk: g.cfg.MaxStreamChunk(),
		maxRatio: g.cfg.MaxDecompressionRatio,
		enforce:  g.cfg.Mode == format.ModeSecurity,
		monitor:  g.gate.Monitor(),
		logger:   g.logger,
	}

	counted := &countingReader{r: src, n: &gr.bytesIn}
	cr, err := g.sc.NewReader(counted)
	if err != nil {
		return nil, err
	}
	gr.cr = cr

	return gr, nil
}

// Read decodes up to len(p) bytes. The ratio guard runs on the decoded
// count before the chunk is surfaced; a breach returns the zip-bomb error
// and the decoded bytes are discarded.
func (r *GuardedReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateErrored:
		return 0, r.err
	case StateClosed:
		return 0, io.EOF
	}

	if err := r.monitor.Check(); err != nil {
		r.destroy(err)
		return 0, err
	}

	if len(p) > r.maxChunk {
		p = p[:r.maxChunk]
	}

	r.state = StateActive
	n, err := r.cr.Read(p)

	if n > 0 && r.enforce && r.bytesIn > 0 {
		projected := r.bytesOut + int64(n)
		if float64(projected)/float64(r.bytesIn) > r.maxRatio {
			bomb := errs.Wrap(errs.ErrZipBombSuspected, "stream read",
				fmt.Errorf("ratio %.1f exceeds %.1f after %d bytes in",
					float64(projected)/float64(r.bytesIn), r.maxRatio, r.bytesIn))
			r.destroy(bomb)

			return 0, bomb
		}
	}
	r.bytesOut += int64(n)

	if err != nil && err != io.EOF {
		r.destroy(err)
		return n, err
	}

	return n, err
}

// Close releases the codec reader. Further reads see io.EOF; a destroyed
// stream keeps reporting its terminal error instead.
func (r *GuardedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateErrored:
		return r.err
	case StateClosed:
		return nil
	}

	r.state = StateClosed

	return r.cr.Close()
}

// State returns the current lifecycle state.
func (r *GuardedReader) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// BytesRead returns compressed bytes consumed and plain bytes produced.
func (r *GuardedReader) BytesRead() (in, out int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.bytesIn, r.bytesOut
}

func (r *GuardedReader) destroy(err error) {
	if r.state == StateErrored {
		return
	}
	r.state = StateErrored
	r.err = err
	r.logger.Warn("decompress stream destroyed", zap.Error(err))
}

// countingReader counts compressed bytes the codec pulls from the source.
type countingReader struct {
	r io.Reader
	n *int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	*c.n += int64(n)

	return n, err
}
