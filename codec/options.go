package codec

import (
	"fmt"

	"github.com/crimp-io/crimp/format"
)

// Tuning ranges follow the zlib conventions the original option bags
// carried. They are validated once at construction instead of ad hoc at
// each call site.
const (
	MinLevel = 0
	MaxLevel = 9

	MinMemLevel = 1
	MaxMemLevel = 9

	MinWindowBits = 8
	MaxWindowBits = 15

	DefaultLevel      = 6
	DefaultMemLevel   = 8
	DefaultWindowBits = 15
)

// Options is the typed codec tuning subset carried on every task.
//
// MemLevel and WindowBits are accepted for zlib parity and applied where
// the backing implementation exposes them; Level is honored by every codec
// that has a level notion (brotli clamps it into its own quality range).
type Options struct {
	Type       format.CodecType
	Level      int
	MemLevel   int
	WindowBits int
}

// DefaultOptions returns gzip at the default level, the profile the
// original shipped with.
func DefaultOptions() Options {
	return Options{
		Type:       format.CodecGzip,
		Level:      DefaultLevel,
		MemLevel:   DefaultMemLevel,
		WindowBits: DefaultWindowBits,
	}
}

// Validate range-checks every field. A zero Type is rejected so an
// accidentally zero-valued Options cannot silently select a codec.
func (o Options) Validate() error {
	switch o.Type {
	case format.CodecNone, format.CodecGzip, format.CodecDeflate,
		format.CodecBrotli, format.CodecZstd, format.CodecLZ4, format.CodecS2:
	default:
		return fmt.Errorf("invalid codec type: %d", o.Type)
	}

	if o.Level < MinLevel || o.Level > MaxLevel {
		return fmt.Errorf("invalid level %d: must be %d-%d", o.Level, MinLevel, MaxLevel)
	}
	if o.MemLevel < MinMemLevel || o.MemLevel > MaxMemLevel {
		return fmt.Errorf("invalid memLevel %d: must be %d-%d", o.MemLevel, MinMemLevel, MaxMemLevel)
	}
	if o.WindowBits < MinWindowBits || o.WindowBits > MaxWindowBits {
		return fmt.Errorf("invalid windowBits %d: must be %d-%d", o.WindowBits, MinWindowBits, MaxWindowBits)
	}

	return nil
}
