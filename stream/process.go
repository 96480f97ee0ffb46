package stream

import (
	"fmt"
	"io"

	"github.com/crimp-io/crimp/errs"
	"github.com/crimp-io/crimp/format"
)

// copyBufferSize is the transfer granularity for the streaming path.
const copyBufferSize = 1 << 20

// Process moves src through the codec into dst. Payloads at or below the
// chunk-size threshold are processed as one buffer; larger or
// unknown-size payloads (sizeHint < 0) stream through a guarded
// writer/reader, which relays backpressure in both directions: a slow dst
// blocks the codec, and the codec pulls src only as fast as dst drains.
func (g *Guard) Process(dst io.Writer, src io.Reader, op format.Operation, sizeHint int64) error {
	if sizeHint >= 0 && sizeHint <= int64(g.cfg.ChunkSize) {
		return g.processBuffered(dst, src, op)
	}

	switch op {
	case format.OpCompress:
		return g.processCompressStream(dst, src)
	case format.OpDecompress:
		return g.processDecompressStream(dst, src)
	default:
		return fmt.Errorf("unknown operation: %d", op)
	}
}

func (g *Guard) processBuffered(dst io.Writer, src io.Reader, op format.Operation) error {
	// Cap the read at one byte over the input limit so an understated
	// size hint still gets caught by validation.
	data, err := io.ReadAll(io.LimitReader(src, int64(g.cfg.MaxInputSize)+1))
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	if _, err := g.gate.ValidateInput(data); err != nil {
		return err
	}
	if err := g.gate.Admit(); err != nil {
		return err
	}

	var out []byte
	switch op {
	case format.OpCompress:
		if err := g.gate.Screen(data); err != nil {
			return err
		}
		out, err = g.sc.Compress(data)
	case format.OpDecompress:
		out, err = g.sc.Decompress(data)
		if err == nil && int64(len(out)) > g.cfg.MaxDecompressedSize {
			return errs.Wrap(errs.ErrDecompressedTooLarge, "process", nil)
		}
	default:
		return fmt.Errorf("unknown operation: %d", op)
	}
	if err != nil {
		return err
	}

	if _, err := dst.Write(out); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	return nil
}

func (g *Guard) processCompressStream(dst io.Writer, src io.Reader) error {
	if err := g.gate.Admit(); err != nil {
		return err
	}

	w, err := g.NewWriter(dst)
	if err != nil {
		return err
	}
	if _, err := io.CopyBuffer(w, src, make([]byte, copyBufferSize)); err != nil {
		return err
	}

	return w.Close()
}

func (g *Guard) processDecompressStream(dst io.Writer, src io.Reader) error {
	if err := g.gate.Admit(); err != nil {
		return err
	}

	r, err := g.NewReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	// Stop pulling one byte past the cap instead of decompressing the
	// whole payload before noticing.
	limited := io.LimitReader(r, g.cfg.MaxDecompressedSize+1)
	written, err := io.CopyBuffer(dst, limited, make([]byte, copyBufferSize))
	if err != nil {
		return err
	}
	if written > g.cfg.MaxDecompressedSize {
		return errs.Wrap(errs.ErrDecompressedTooLarge, "process", nil)
	}

	return nil
}
