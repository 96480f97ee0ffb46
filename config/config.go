// Package config owns the configuration consumed by the hardening layer.
//
// The operating mode and every limit are resolved exactly once, validated,
// and passed by value into constructors. Nothing in the core re-reads the
// environment mid-operation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/crimp-io/crimp/format"
)

// Config carries every knob the core reads. Fields map 1:1 onto the
// limits the security gate, worker pool and streaming guard enforce.
type Config struct {
	// Mode selects the operating profile. Resolved once; immutable after.
	Mode format.Mode `yaml:"-"`

	// ModeName is the yaml/env spelling of Mode.
	ModeName string `yaml:"mode"`

	// MaxInputSize caps a single validated input, bytes.
	MaxInputSize int `yaml:"max_input_size"`

	// MaxDecompressedSize caps total decompressed output, bytes. int64 so
	// the default exceeds what a 32-bit int can express.
	MaxDecompressedSize int64 `yaml:"max_decompressed_size"`

	// MaxMemoryGrowth caps heap growth over the monitor baseline, bytes.
	MaxMemoryGrowth uint64 `yaml:"max_memory_growth"`

	// ChunkSize is both the parallelism threshold and the split size:
	// payloads at or below it bypass the pool, larger ones are split into
	// ChunkSize pieces.
	ChunkSize int `yaml:"chunk_size"`

	// MaxDecompressionRatio bounds output/input on guarded decompression
	// streams in security mode.
	MaxDecompressionRatio float64 `yaml:"max_decompression_ratio"`

	// PoolSize is the worker pool capacity. Zero selects GOMAXPROCS.
	PoolSize int `yaml:"pool_size"`

	// RateLimitWindow is the sliding window for the request limiter.
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`

	// RateLimitMax is the admitted request count per window.
	RateLimitMax int `yaml:"rate_limit_max"`

	// BreakerInterval throttles circuit-breaker health checks.
	BreakerInterval time.Duration `yaml:"breaker_interval"`

	// BreakerFailures is the consecutive failed health checks that open
	// the breaker.
	BreakerFailures int `yaml:"breaker_failures"`

	// MemoryCheckInterval throttles memory-monitor checks.
	MemoryCheckInterval time.Duration `yaml:"memory_check_interval"`
}

// Default returns the balanced-mode configuration the original shipped.
func Default() *Config {
	return &Config{
		Mode:                  format.ModeBalanced,
		ModeName:              "balanced",
		MaxInputSize:          1 << 30,  // 1GiB
		MaxDecompressedSize:   1 << 32,  // 4GiB
		MaxMemoryGrowth:       1 << 30,  // 1GiB
		ChunkSize:             4 << 20,  // 4MiB
		MaxDecompressionRatio: 100,
		PoolSize:              0,
		RateLimitWindow:       time.Minute,
		RateLimitMax:          1000,
		BreakerInterval:       5 * time.Second,
		BreakerFailures:       3,
		MemoryCheckInterval:   time.Second,
	}
}

// MaxStreamChunk returns the per-write admission cap for guarded streams.
// Performance mode admits larger chunks since the heuristics are off.
func (c *Config) MaxStreamChunk() int {
	if c.Mode == format.ModePerformance {
		return 64 << 20 // 64MiB
	}

	return 16 << 20 // 16MiB
}

// Validate range-checks the configuration. Called once after loading.
func (c *Config) Validate() error {
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("max_input_size must be positive, got %d", c.MaxInputSize)
	}
	if c.MaxDecompressedSize <= 0 {
		return fmt.Errorf("max_decompressed_size must be positive, got %d", c.MaxDecompressedSize)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.MaxDecompressionRatio <= 1 {
		return fmt.Errorf("max_decompression_ratio must exceed 1, got %g", c.MaxDecompressionRatio)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("pool_size must not be negative, got %d", c.PoolSize)
	}
	if c.RateLimitWindow <= 0 || c.RateLimitMax <= 0 {
		return fmt.Errorf("rate limit window and max must be positive")
	}
	if c.BreakerInterval <= 0 || c.BreakerFailures <= 0 {
		return fmt.Errorf("breaker interval and failure threshold must be positive")
	}
	if c.MemoryCheckInterval <= 0 {
		return fmt.Errorf("memory_check_interval must be positive")
	}

	return nil
}

// FromYAML loads a config file over the defaults and validates it.
func FromYAML(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Mode = format.ParseMode(cfg.ModeName)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FromEnv overlays CRIMP_* environment variables onto the defaults and
// validates the result. Unset variables keep their defaults.
func FromEnv() (*Config, error) {
	cfg := Default()

	if v := os.Getenv("CRIMP_MODE"); v != "" {
		cfg.ModeName = v
		cfg.Mode = format.ParseMode(v)
	}
	if err := envInt("CRIMP_MAX_INPUT_SIZE", &cfg.MaxInputSize); err != nil {
		return nil, err
	}
	if err := envInt64("CRIMP_MAX_DECOMPRESSED_SIZE", &cfg.MaxDecompressedSize); err != nil {
		return nil, err
	}
	if err := envInt("CRIMP_CHUNK_SIZE", &cfg.ChunkSize); err != nil {
		return nil, err
	}
	if err := envInt("CRIMP_POOL_SIZE", &cfg.PoolSize); err != nil {
		return nil, err
	}
	if err := envInt("CRIMP_RATE_LIMIT_MAX", &cfg.RateLimitMax); err != nil {
		return nil, err
	}
	if v := os.Getenv("CRIMP_MAX_DECOMPRESSION_RATIO"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("CRIMP_MAX_DECOMPRESSION_RATIO: %w", err)
		}
		cfg.MaxDecompressionRatio = f
	}
	if v := os.Getenv("CRIMP_RATE_LIMIT_WINDOW"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CRIMP_RATE_LIMIT_WINDOW: %w", err)
		}
		cfg.RateLimitWindow = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n

	return nil
}

func envInt64(name string, dst *int64) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n

	return nil
}
