package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// GzipCodec wraps the host gzip primitive. This is the default codec; the
// hardening layer adds nothing to the byte transformation itself.
type GzipCodec struct {
	level int
}

var _ StreamCodec = GzipCodec{}

// NewGzipCodec creates a gzip codec at the given level (0-9).
func NewGzipCodec(level int) GzipCodec {
	return GzipCodec{level: level}
}

func (c GzipCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 64)

	zw, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("gzip writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip finalize: %w", err)
	}

	return buf.Bytes(), nil
}

func (c GzipCodec) Decompress(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gzip decompress: %w", err)
	}

	return out, nil
}

func (c GzipCodec) NewWriter(dst io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(dst, c.level)
}

func (c GzipCodec) NewReader(src io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(src)
}
