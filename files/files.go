// Package files provides file-system convenience wrappers around the
// streaming guard: single and batch compress/decompress with path
// sanitization on every user-supplied path.
package files

import (
	"fmt"
	"os"

	"github.com/crimp-io/crimp/format"
	"github.com/crimp-io/crimp/guard"
	"github.com/crimp-io/crimp/stream"
)

// CompressFile compresses src into dst through the streaming guard. Both
// paths are sanitized before any file is touched.
func CompressFile(g *stream.Guard, src, dst string) error {
	return transform(g, src, dst, format.OpCompress)
}

// DecompressFile decompresses src into dst through the streaming guard.
func DecompressFile(g *stream.Guard, src, dst string) error {
	return transform(g, src, dst, format.OpDecompress)
}

// BatchResult reports one batch entry's outcome.
type BatchResult struct {
	Src string
	Dst string
	Err error
}

// CompressBatch compresses each source into source+suffix. A failing
// entry does not stop the rest; outcomes are reported per entry.
func CompressBatch(g *stream.Guard, sources []string, suffix string) []BatchResult {
	if suffix == "" {
		suffix = ".crimp"
	}

	results := make([]BatchResult, 0, len(sources))
	for _, src := range sources {
		dst := src + suffix
		results = append(results, BatchResult{
			Src: src,
			Dst: dst,
			Err: CompressFile(g, src, dst),
		})
	}

	return results
}

func transform(g *stream.Guard, src, dst string, op format.Operation) error {
	srcPath, err := guard.SanitizePath(src)
	if err != nil {
		return err
	}
	dstPath, err := guard.SanitizePath(dst)
	if err != nil {
		return err
	}

	in, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("create target: %w", err)
	}

	if err := g.Process(out, in, op, info.Size()); err != nil {
		out.Close()
		os.Remove(dstPath)

		return err
	}

	return out.Close()
}
