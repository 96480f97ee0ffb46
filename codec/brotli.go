package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
)

// BrotliCodec wraps the host Brotli primitive. The shared 0-9 level range
// maps directly into brotli's 0-11 quality range.
type BrotliCodec struct {
	quality int
}

var _ StreamCodec = BrotliCodec{}

// NewBrotliCodec creates a brotli codec at the given quality (0-9).
func NewBrotliCodec(quality int) BrotliCodec {
	return BrotliCodec{quality: quality}
}

func (c BrotliCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 64)

	bw := brotli.NewWriterLevel(&buf, c.quality)
	if _, err := bw.Write(data); err != nil {
		return nil, fmt.Errorf("brotli compress: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("brotli finalize: %w", err)
	}

	return buf.Bytes(), nil
}

func (c BrotliCodec) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("brotli decompress: %w", err)
	}

	return out, nil
}

func (c BrotliCodec) NewWriter(dst io.Writer) (io.WriteCloser, error) {
	return brotli.NewWriterLevel(dst, c.quality), nil
}

func (c BrotliCodec) NewReader(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(src)), nil
}
