package codec

import (
	"fmt"
	"io"

	"github.com/crimp-io/crimp/format"
)

// Compressor transforms plain bytes into codec output.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller
//   - Input slice is not modified
//   - Internal buffers may be reused for efficiency
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores plain bytes from codec output.
//
// Implementations must be safe for concurrent use; the worker pool calls
// one codec instance from many workers at once.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Returns an error if the input is corrupted or was produced by an
	// incompatible codec.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. All built-in codecs are stateless values;
// tuning lives in Options passed at construction.
type Codec interface {
	Compressor
	Decompressor
}

// StreamCodec is implemented by codecs that also expose incremental
// streaming. The streaming guard requires this capability.
type StreamCodec interface {
	Codec

	// NewWriter returns a compressing writer over dst. Close flushes and
	// finalizes the codec frame.
	NewWriter(dst io.Writer) (io.WriteCloser, error)

	// NewReader returns a decompressing reader over src.
	NewReader(src io.Reader) (io.ReadCloser, error)
}

// New constructs a configured codec for the given options. Options must
// already be validated; New validates again defensively since plugins may
// construct Options directly.
func New(opts Options) (Codec, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	switch opts.Type {
	case format.CodecNone:
		return NoOpCodec{}, nil
	case format.CodecGzip:
		return GzipCodec{level: opts.Level}, nil
	case format.CodecDeflate:
		return DeflateCodec{level: opts.Level}, nil
	case format.CodecBrotli:
		return BrotliCodec{quality: opts.Level}, nil
	case format.CodecZstd:
		return ZstdCodec{level: opts.Level}, nil
	case format.CodecLZ4:
		return LZ4Codec{}, nil
	case format.CodecS2:
		return S2Codec{level: opts.Level}, nil
	default:
		return nil, fmt.Errorf("unsupported codec type: %s", opts.Type)
	}
}

// NewStream constructs a codec and requires streaming capability.
func NewStream(opts Options) (StreamCodec, error) {
	c, err := New(opts)
	if err != nil {
		return nil, err
	}

	sc, ok := c.(StreamCodec)
	if !ok {
		return nil, fmt.Errorf("codec %s does not support streaming", opts.Type)
	}

	return sc, nil
}
