package engine

import (
	"github.com/crimp-io/crimp/format"
)

// task is one unit of pool work: a single chunk with its operation. The
// payload is defensively copied before the task is built; once the task is
// handed to a worker channel, the worker owns the payload and the sender
// must not touch it again.
type task struct {
	id      uint64
	op      format.Operation
	payload []byte
}

// taskResponse resolves the pending future registered under id. Exactly
// one of result or err is set. The result slice is owned by the receiver.
type taskResponse struct {
	id     uint64
	result []byte
	err    error
}

// submission pairs a task with its result future. The future channel is
// buffered so the dispatcher never blocks delivering a response.
type submission struct {
	t   *task
	res chan taskResponse
}
