package codec

import (
	"fmt"
	"sync"

	"github.com/crimp-io/crimp/format"
)

// Factory builds a configured codec from validated options.
type Factory func(Options) (Codec, error)

// registry holds pluggable codec factories keyed by type. Built-in types
// are served by New directly and cannot be shadowed.
var registry = struct {
	mu sync.RWMutex
	m  map[format.CodecType]Factory
}{m: make(map[format.CodecType]Factory)}

// Register installs a factory for a custom codec type. Registering a
// built-in type or a duplicate returns an error; plugins pick type values
// above the built-in range.
func Register(t format.CodecType, f Factory) error {
	if f == nil {
		return fmt.Errorf("nil factory for codec type %d", t)
	}
	if t >= format.CodecNone && t <= format.CodecS2 {
		return fmt.Errorf("cannot override built-in codec: %s", t)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[t]; exists {
		return fmt.Errorf("codec type %d already registered", t)
	}
	registry.m[t] = f

	return nil
}

// Resolve returns a codec for the options, consulting registered plugins
// for non-built-in types.
func Resolve(opts Options) (Codec, error) {
	registry.mu.RLock()
	f, ok := registry.m[opts.Type]
	registry.mu.RUnlock()

	if ok {
		return f(opts)
	}

	return New(opts)
}
