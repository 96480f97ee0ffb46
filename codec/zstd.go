package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

// ZstdCodec wraps Zstandard. The block path is build-tag split: cgo builds
// use the libzstd binding, pure-Go builds use klauspost/compress/zstd (see
// zstd_cgo.go / zstd_pure.go). Streaming always uses the pure-Go
// implementation since it is available under both build modes.
type ZstdCodec struct {
	level int
}

var _ StreamCodec = ZstdCodec{}

// NewZstdCodec creates a zstd codec at the given level (0-9).
func NewZstdCodec(level int) ZstdCodec {
	return ZstdCodec{level: level}
}

func (c ZstdCodec) NewWriter(dst io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(dst,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(c.level)),
	)
}

func (c ZstdCodec) NewReader(src io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}

	return &zstdReadCloser{zr: zr}, nil
}

// zstdReadCloser adapts zstd.Decoder's errorless Close to io.ReadCloser.
type zstdReadCloser struct {
	zr *zstd.Decoder
}

func (r *zstdReadCloser) Read(p []byte) (int, error) {
	return r.zr.Read(p)
}

func (r *zstdReadCloser) Close() error {
	r.zr.Close()
	return nil
}
