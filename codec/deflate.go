package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// DeflateCodec wraps raw DEFLATE (RFC 1951), no container framing.
type DeflateCodec struct {
	level int
}

var _ StreamCodec = DeflateCodec{}

// NewDeflateCodec creates a deflate codec at the given level (0-9).
func NewDeflateCodec(level int) DeflateCodec {
	return DeflateCodec{level: level}
}

func (c DeflateCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 64)

	fw, err := flate.NewWriter(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("deflate writer: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("deflate compress: %w", err)
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("deflate finalize: %w", err)
	}

	return buf.Bytes(), nil
}

func (c DeflateCodec) Decompress(data []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()

	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, fmt.Errorf("deflate decompress: %w", err)
	}

	return out, nil
}

func (c DeflateCodec) NewWriter(dst io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(dst, c.level)
}

func (c DeflateCodec) NewReader(src io.Reader) (io.ReadCloser, error) {
	return flate.NewReader(src), nil
}
