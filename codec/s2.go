package codec

import (
	"io"

	"github.com/klauspost/compress/s2"
)

// S2Codec wraps the S2 extension of Snappy. S2 has no level dial; Level
// 7 and above selects the better-compression encoding, anything lower the
// fast default.
type S2Codec struct {
	level int
}

var _ StreamCodec = S2Codec{}

// NewS2Codec creates an S2 codec at the given level (0-9).
func NewS2Codec(level int) S2Codec {
	return S2Codec{level: level}
}

func (c S2Codec) Compress(data []byte) ([]byte, error) {
	if c.level >= 7 {
		return s2.EncodeBetter(nil, data), nil
	}

	return s2.Encode(nil, data), nil
}

func (c S2Codec) Decompress(data []byte) ([]byte, error) {
	return s2.Decode(nil, data)
}

func (c S2Codec) NewWriter(dst io.Writer) (io.WriteCloser, error) {
	if c.level >= 7 {
		return s2.NewWriter(dst, s2.WriterBetterCompression()), nil
	}

	return s2.NewWriter(dst), nil
}

func (c S2Codec) NewReader(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(s2.NewReader(src)), nil
}
