package guard

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/crimp-io/crimp/errs"
)

// TestSanitizePathAccepts verifies clean paths pass with control
// characters stripped.
func TestSanitizePathAccepts(t *testing.T) {
	cases := map[string]string{
		"data/archive.gz":     "data/archive.gz",
		"/var/tmp/out.bin":    "/var/tmp/out.bin",
		"name\x00with\x1fctl": "namewithctl",
		"plain-file_2.crimp":  "plain-file_2.crimp",
	}

	for in, want := range cases {
		got, err := SanitizePath(in)
		require.NoError(t, err, "path %q", in)
		require.Equal(t, want, got)
	}
}

// TestSanitizePathRejectsTraversal verifies traversal sequences fail with
// ErrPathTraversal, percent-encoded spellings included.
func TestSanitizePathRejectsTraversal(t *testing.T) {
	cases := []string{
		"../etc/passwd",
		"data/../../secret",
		"~/private",
		"%2e%2e/escape",
		"%2E%2E/escape",
		"a/.%2e/b",
		"%7e/home",
	}

	for _, p := range cases {
		_, err := SanitizePath(p)
		require.ErrorIs(t, err, errs.ErrPathTraversal, "path %q", p)
	}
}
