package engine

import (
	"fmt"
	"time"

	"github.com/crimp-io/crimp/codec"
	"github.com/crimp-io/crimp/errs"
	"github.com/crimp-io/crimp/format"
	"github.com/crimp-io/crimp/internal/bufpool"
	"github.com/crimp-io/crimp/metrics"
)

// workerTaskBacklog sizes each worker's task channel. Dispatch is
// immediate with no re-queuing; the buffer only keeps the dispatcher from
// blocking when it deliberately overloads one worker.
const workerTaskBacklog = 256

// worker is one parallel execution context. Workers share nothing with
// the dispatcher: tasks arrive on the channel, responses leave on the
// channel, and that is the entire interface.
type worker struct {
	idx   int
	tasks chan *task
}

func newWorker(idx int) *worker {
	return &worker{
		idx:   idx,
		tasks: make(chan *task, workerTaskBacklog),
	}
}

// run processes tasks until the task channel closes. A panic inside the
// codec resolves only that task's future as a worker fault; the worker
// itself survives. Responses racing a terminated pool are dropped, which
// is the documented discard of in-flight work.
func (w *worker) run(c codec.Codec, buffers *bufpool.Pool, respCh chan<- taskResponse, done <-chan struct{}) {
	for t := range w.tasks {
		resp := w.execute(c, buffers, t)

		select {
		case respCh <- resp:
		case <-done:
			return
		}
	}
}

func (w *worker) execute(c codec.Codec, buffers *bufpool.Pool, t *task) (resp taskResponse) {
	resp.id = t.id

	defer func() {
		if r := recover(); r != nil {
			resp.result = nil
			resp.err = errs.Wrap(errs.ErrWorkerFault, t.op.String(), fmt.Errorf("panic: %v", r))
		}
	}()
	// The task owns its payload; return it to the pool once processed.
	defer buffers.Release(t.payload)

	start := time.Now()

	var out []byte
	var err error
	switch t.op {
	case format.OpCompress:
		out, err = c.Compress(t.payload)
	case format.OpDecompress:
		out, err = c.Decompress(t.payload)
	default:
		err = fmt.Errorf("unknown operation: %d", t.op)
	}

	metrics.ChunkLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		resp.err = errs.Wrap(errs.ErrWorkerFault, t.op.String(), err)
		return resp
	}
	resp.result = out

	return resp
}
