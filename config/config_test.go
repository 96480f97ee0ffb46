package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crimp-io/crimp/format"
)

// TestDefaultIsValid verifies the shipped defaults pass validation.
func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, format.ModeBalanced, cfg.Mode)
	require.Equal(t, 4<<20, cfg.ChunkSize)

	// The output cap is wider than a 32-bit int on every GOARCH.
	require.Greater(t, cfg.MaxDecompressedSize, int64(math.MaxInt32))
}

// TestValidateRejectsBadFields covers each range check.
func TestValidateRejectsBadFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero input size", func(c *Config) { c.MaxInputSize = 0 }},
		{"zero decompressed size", func(c *Config) { c.MaxDecompressedSize = 0 }},
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"ratio at one", func(c *Config) { c.MaxDecompressionRatio = 1 }},
		{"negative pool size", func(c *Config) { c.PoolSize = -1 }},
		{"zero rate window", func(c *Config) { c.RateLimitWindow = 0 }},
		{"zero breaker failures", func(c *Config) { c.BreakerFailures = 0 }},
		{"zero memory interval", func(c *Config) { c.MemoryCheckInterval = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

// TestMaxStreamChunk verifies the mode-dependent admission cap.
func TestMaxStreamChunk(t *testing.T) {
	cfg := Default()
	require.Equal(t, 16<<20, cfg.MaxStreamChunk())

	cfg.Mode = format.ModePerformance
	require.Equal(t, 64<<20, cfg.MaxStreamChunk())

	cfg.Mode = format.ModeSecurity
	require.Equal(t, 16<<20, cfg.MaxStreamChunk())
}

// TestFromYAML verifies a partial file overlays the defaults.
func TestFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crimp.yaml")
	doc := []byte("mode: security\nchunk_size: 1048576\nrate_limit_max: 50\n")
	require.NoError(t, os.WriteFile(path, doc, 0o644))

	cfg, err := FromYAML(path)
	require.NoError(t, err)
	require.Equal(t, format.ModeSecurity, cfg.Mode)
	require.Equal(t, 1<<20, cfg.ChunkSize)
	require.Equal(t, 50, cfg.RateLimitMax)

	// Untouched fields keep their defaults.
	require.Equal(t, 1<<30, cfg.MaxInputSize)
	require.Equal(t, time.Minute, cfg.RateLimitWindow)
}

// TestFromYAMLInvalid verifies bad files and bad values are rejected.
func TestFromYAMLInvalid(t *testing.T) {
	_, err := FromYAML(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: -4\n"), 0o644))
	_, err = FromYAML(path)
	require.Error(t, err)
}

// TestFromEnv verifies CRIMP_* variables overlay the defaults.
func TestFromEnv(t *testing.T) {
	t.Setenv("CRIMP_MODE", "performance")
	t.Setenv("CRIMP_CHUNK_SIZE", "2097152")
	t.Setenv("CRIMP_RATE_LIMIT_WINDOW", "30s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, format.ModePerformance, cfg.Mode)
	require.Equal(t, 2<<20, cfg.ChunkSize)
	require.Equal(t, 30*time.Second, cfg.RateLimitWindow)
}

// TestFromEnvInvalid verifies malformed variables fail loading.
func TestFromEnvInvalid(t *testing.T) {
	t.Setenv("CRIMP_CHUNK_SIZE", "not-a-number")

	_, err := FromEnv()
	require.Error(t, err)
}

// TestUnknownModeFallsBack verifies an unrecognized spelling resolves to
// the balanced profile.
func TestUnknownModeFallsBack(t *testing.T) {
	t.Setenv("CRIMP_MODE", "turbo")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, format.ModeBalanced, cfg.Mode)
}
