// Package errs defines the error taxonomy shared by the gate, the worker
// pool and the streaming guard.
//
// Sentinels enable errors.Is/errors.As classification rather than string
// matching. No component retries on any of these; retry policy, if any,
// belongs to the caller. In particular a rejected zip bomb is never retried
// internally.
package errs

import (
	"errors"
	"fmt"
)

// Validation failures: the input never reached a codec.
var (
	// ErrInvalidType indicates the input is not one of the accepted
	// representations ([]byte, string, *bytes.Buffer).
	ErrInvalidType = errors.New("invalid input type")

	// ErrInputTooLarge indicates the input exceeds the configured maximum size.
	ErrInputTooLarge = errors.New("input too large")

	// ErrChunkTooLarge indicates a stream write exceeds the per-chunk maximum.
	ErrChunkTooLarge = errors.New("chunk too large")
)

// Security rejections.
var (
	// ErrZipBombSuspected indicates the payload matched the decompression
	// bomb heuristic or breached the streaming ratio guard.
	ErrZipBombSuspected = errors.New("zip bomb suspected")

	// ErrPathTraversal indicates a path escaped its base after sanitization.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrRateLimited indicates the sliding-window request cap was hit.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCircuitOpen indicates the circuit breaker is rejecting all work.
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// Resource caps.
var (
	// ErrMemoryLimitExceeded indicates heap growth beyond the configured cap.
	ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

	// ErrDecompressedTooLarge indicates decompressed output beyond the
	// configured maximum size.
	ErrDecompressedTooLarge = errors.New("decompressed size limit exceeded")
)

var (
	// ErrCorruptedContainer indicates a malformed parallel-container chunk table.
	ErrCorruptedContainer = errors.New("corrupted container")

	// ErrWorkerFault indicates an uncaught fault inside a pool worker.
	ErrWorkerFault = errors.New("worker fault")

	// ErrPoolTerminated indicates a submission after Terminate.
	ErrPoolTerminated = errors.New("worker pool terminated")

	// ErrTimeout indicates the caller's deadline expired before the pool
	// responded. The in-flight task is not cancelled; its result is discarded.
	ErrTimeout = errors.New("operation timed out")
)

// Error wraps an underlying error with its taxonomy sentinel and the
// operation that produced it. The sentinel stays reachable through
// errors.Is; the cause through errors.As/Unwrap.
type Error struct {
	// Kind is the classification sentinel (e.g. ErrZipBombSuspected).
	Kind error
	// Op is the failing operation ("compress", "decompress", "validate", ...).
	Op string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Unwrap returns the underlying cause for chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Wrap builds an *Error from a sentinel, an operation name and an optional
// cause.
func Wrap(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
