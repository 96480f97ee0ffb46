package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crimp-io/crimp/codec"
	"github.com/crimp-io/crimp/config"
	"github.com/crimp-io/crimp/errs"
	"github.com/crimp-io/crimp/guard"
	"github.com/crimp-io/crimp/stream"
)

func testGuard(t *testing.T) *stream.Guard {
	t.Helper()

	cfg := config.Default()
	cfg.RateLimitMax = 1 << 20

	gate := guard.New(cfg, nil)
	gate.Breaker().Disable()

	g, err := stream.New(cfg, codec.DefaultOptions(), gate, nil)
	require.NoError(t, err)

	return g
}

func writeTempFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	return path
}

// TestFileRoundTrip verifies compress-then-decompress through the
// filesystem restores the original bytes.
func TestFileRoundTrip(t *testing.T) {
	g := testGuard(t)
	dir := t.TempDir()

	payload := []byte("file helpers move bytes through the guarded streams 0123456789")
	src := writeTempFile(t, dir, "plain.txt", payload)
	packed := filepath.Join(dir, "plain.txt.crimp")
	restored := filepath.Join(dir, "restored.txt")

	require.NoError(t, CompressFile(g, src, packed))
	require.NoError(t, DecompressFile(g, packed, restored))

	got, err := os.ReadFile(restored)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

// TestTraversalPathRejected verifies a traversal path fails before any
// file is created.
func TestTraversalPathRejected(t *testing.T) {
	g := testGuard(t)
	dir := t.TempDir()

	src := writeTempFile(t, dir, "plain.txt", []byte("data"))
	// Join would clean the dots away; build the raw traversal string.
	err := CompressFile(g, src, dir+"/../escape.crimp")
	require.ErrorIs(t, err, errs.ErrPathTraversal)
}

// TestMissingSource verifies a missing source surfaces an open error.
func TestMissingSource(t *testing.T) {
	g := testGuard(t)
	dir := t.TempDir()

	err := CompressFile(g, filepath.Join(dir, "absent.txt"), filepath.Join(dir, "out.crimp"))
	require.Error(t, err)
}

// TestFailedTransformRemovesTarget verifies a failing decompress does not
// leave a partial target file behind.
func TestFailedTransformRemovesTarget(t *testing.T) {
	g := testGuard(t)
	dir := t.TempDir()

	src := writeTempFile(t, dir, "garbage.crimp", []byte("this is not a compressed stream"))
	dst := filepath.Join(dir, "out.txt")

	require.Error(t, DecompressFile(g, src, dst))
	_, err := os.Stat(dst)
	require.True(t, os.IsNotExist(err))
}

// TestCompressBatch verifies per-entry outcomes with a default suffix.
func TestCompressBatch(t *testing.T) {
	g := testGuard(t)
	dir := t.TempDir()

	good := writeTempFile(t, dir, "a.txt", []byte("first payload"))
	missing := filepath.Join(dir, "absent.txt")

	results := CompressBatch(g, []string{good, missing}, "")
	require.Len(t, results, 2)

	require.Equal(t, good+".crimp", results[0].Dst)
	require.NoError(t, results[0].Err)
	require.FileExists(t, results[0].Dst)

	require.Error(t, results[1].Err)
}
