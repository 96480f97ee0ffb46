// Package engine implements the bounded worker pool that splits large
// payloads into chunks, compresses or decompresses them in parallel and
// reassembles the results through the container format.
//
// Pool state (pending futures, free-list, per-worker in-flight counters)
// is owned by a single dispatcher goroutine and mutated nowhere else.
// Workers communicate with the dispatcher only by message; the dispatcher
// never blocks on a worker.
package engine

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/eapache/queue"
	"go.uber.org/zap"

	"github.com/crimp-io/crimp/codec"
	"github.com/crimp-io/crimp/config"
	"github.com/crimp-io/crimp/container"
	"github.com/crimp-io/crimp/errs"
	"github.com/crimp-io/crimp/format"
	"github.com/crimp-io/crimp/guard"
	"github.com/crimp-io/crimp/internal/bufpool"
	"github.com/crimp-io/crimp/log"
	"github.com/crimp-io/crimp/metrics"
)

// Engine is a parallel compression engine bound to one codec and one
// resolved configuration. Construct with New, own it explicitly, and pass
// the handle to call sites; there is no package-level instance.
type Engine struct {
	cfg     *config.Config
	codec   codec.Codec
	gate    *guard.Gate
	buffers *bufpool.Pool
	logger  *log.Logger

	capacity   int
	nextID     atomic.Uint64
	terminated atomic.Bool

	submitCh    chan submission
	respCh      chan taskResponse
	terminateCh chan chan struct{}
	done        chan struct{}
}

// New creates an engine and starts its dispatcher. The codec is resolved
// once from opts; cfg must already be validated. A nil logger discards
// logs.
func New(cfg *config.Config, opts codec.Options, logger *log.Logger) (*Engine, error) {
	c, err := codec.Resolve(opts)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Nop()
	}

	capacity := cfg.PoolSize
	if capacity <= 0 {
		capacity = runtime.GOMAXPROCS(0)
	}

	e := &Engine{
		cfg:         cfg,
		codec:       c,
		gate:        guard.New(cfg, logger),
		buffers:     bufpool.New(0, 0),
		logger:      logger.Named("engine"),
		capacity:    capacity,
		submitCh:    make(chan submission),
		respCh:      make(chan taskResponse, capacity),
		terminateCh: make(chan chan struct{}),
		done:        make(chan struct{}),
	}
	go e.dispatch()

	e.logger.Info("engine started",
		zap.Int("capacity", capacity),
		zap.String("mode", cfg.Mode.String()),
	)

	return e, nil
}

// Gate exposes the engine's security gate for collaborators that share
// its limits (streaming guard, file helpers).
func (e *Engine) Gate() *guard.Gate {
	return e.gate
}

// pendingEntry ties a registered future to the worker processing it.
type pendingEntry struct {
	res  chan taskResponse
	widx int
}

// dispatch is the single goroutine that owns all pool state.
func (e *Engine) dispatch() {
	var (
		workers  []*worker
		inflight []int
		freeList = queue.New()
		pending  = make(map[uint64]pendingEntry)
	)

	handleResp := func(resp taskResponse) {
		entry, ok := pending[resp.id]
		if !ok {
			return
		}
		delete(pending, resp.id)
		inflight[entry.widx]--
		freeList.Add(entry.widx)
		metrics.TasksInFlight.Dec()
		entry.res <- resp
	}

	for {
		select {
		case sub := <-e.submitCh:
			widx := -1

			// Free-list first; it is a hint, not an invariant, since an
			// index is pushed on every completion.
			for freeList.Length() > 0 {
				idx, _ := freeList.Remove().(int)
				if idx < len(workers) {
					widx = idx
					break
				}
			}

			if widx < 0 && len(workers) < e.capacity {
				// Lazy creation up to capacity.
				w := newWorker(len(workers))
				workers = append(workers, w)
				inflight = append(inflight, 0)
				go w.run(e.codec, e.buffers, e.respCh, e.done)
				metrics.WorkersActive.Inc()
				widx = w.idx
			}

			if widx < 0 {
				// No queuing: pick the least-loaded worker and dispatch
				// immediately, even if that transiently overloads it.
				widx = 0
				for i := 1; i < len(workers); i++ {
					if inflight[i] < inflight[widx] {
						widx = i
					}
				}
			}

			pending[sub.t.id] = pendingEntry{res: sub.res, widx: widx}
			inflight[widx]++
			metrics.TasksInFlight.Inc()

			// Keep draining responses while delivering, so a saturated
			// worker queue can never wedge the dispatcher.
			delivered := false
			for !delivered {
				select {
				case workers[widx].tasks <- sub.t:
					delivered = true
				case resp := <-e.respCh:
					handleResp(resp)
				}
			}

		case resp := <-e.respCh:
			handleResp(resp)

		case ack := <-e.terminateCh:
			// Outstanding futures are rejected rather than left hanging.
			for id, entry := range pending {
				entry.res <- taskResponse{
					id:  id,
					err: errs.Wrap(errs.ErrPoolTerminated, "dispatch", nil),
				}
				metrics.TasksInFlight.Dec()
			}
			for _, w := range workers {
				close(w.tasks)
			}
			metrics.WorkersActive.Sub(float64(len(workers)))
			ack <- struct{}{}

			return
		}
	}
}

// submit registers a chunk task with the dispatcher and returns its
// future. The payload is copied into a pool buffer whose ownership
// transfers to the worker.
func (e *Engine) submit(ctx context.Context, op format.Operation, chunk []byte) (chan taskResponse, error) {
	if e.terminated.Load() {
		return nil, errs.Wrap(errs.ErrPoolTerminated, "submit", nil)
	}

	payload := e.buffers.Allocate(len(chunk))
	copy(payload, chunk)

	sub := submission{
		t: &task{
			id:      e.nextID.Add(1),
			op:      op,
			payload: payload,
		},
		res: make(chan taskResponse, 1),
	}

	select {
	case e.submitCh <- sub:
		return sub.res, nil
	case <-e.done:
		e.buffers.Release(payload)
		return nil, errs.Wrap(errs.ErrPoolTerminated, "submit", nil)
	case <-ctx.Done():
		e.buffers.Release(payload)
		return nil, errs.Wrap(errs.ErrTimeout, "submit", ctx.Err())
	}
}

// await collects every chunk future in original split order. A deadline
// expiry abandons the remaining futures; their workers keep running and
// the results are discarded.
func (e *Engine) await(ctx context.Context, op format.Operation, futures []chan taskResponse) ([][]byte, error) {
	results := make([][]byte, len(futures))
	for i, fut := range futures {
		select {
		case resp := <-fut:
			if resp.err != nil {
				return nil, resp.err
			}
			results[i] = resp.result
		case <-ctx.Done():
			return nil, errs.Wrap(errs.ErrTimeout, op.String(), ctx.Err())
		}
	}

	return results, nil
}

// Compress validates and screens data, then either compresses it directly
// (at or below the chunk threshold) or splits it across the pool and
// frames the results as a parallel container.
func (e *Engine) Compress(ctx context.Context, raw any) ([]byte, error) {
	data, err := e.gate.ValidateInput(raw)
	if err != nil {
		metrics.Operations.WithLabelValues("compress", "rejected").Inc()
		return nil, err
	}
	if err := e.gate.Admit(); err != nil {
		metrics.Operations.WithLabelValues("compress", "rejected").Inc()
		return nil, err
	}
	if err := e.gate.Screen(data); err != nil {
		metrics.Operations.WithLabelValues("compress", "rejected").Inc()
		return nil, err
	}
	metrics.BytesIn.WithLabelValues("compress").Add(float64(len(data)))

	if len(data) <= e.cfg.ChunkSize {
		// Parallelism overhead is not worth paying; call the codec directly.
		out, err := e.codec.Compress(data)
		if err != nil {
			metrics.Operations.WithLabelValues("compress", "error").Inc()
			return nil, errs.Wrap(errs.ErrWorkerFault, "compress", err)
		}
		metrics.Operations.WithLabelValues("compress", "ok").Inc()
		metrics.BytesOut.WithLabelValues("compress").Add(float64(len(out)))

		return out, nil
	}

	futures := make([]chan taskResponse, 0, (len(data)+e.cfg.ChunkSize-1)/e.cfg.ChunkSize)
	for off := 0; off < len(data); off += e.cfg.ChunkSize {
		end := off + e.cfg.ChunkSize
		if end > len(data) {
			end = len(data)
		}
		fut, err := e.submit(ctx, format.OpCompress, data[off:end])
		if err != nil {
			metrics.Operations.WithLabelValues("compress", "error").Inc()
			return nil, err
		}
		futures = append(futures, fut)
	}

	chunks, err := e.await(ctx, format.OpCompress, futures)
	if err != nil {
		metrics.Operations.WithLabelValues("compress", "error").Inc()
		return nil, err
	}

	out, err := container.Encode(chunks)
	if err != nil {
		metrics.Operations.WithLabelValues("compress", "error").Inc()
		return nil, err
	}
	metrics.Operations.WithLabelValues("compress", "ok").Inc()
	metrics.BytesOut.WithLabelValues("compress").Add(float64(len(out)))

	return out, nil
}

// Decompress restores data produced by Compress. Payloads without the
// container magic are treated as a single-shot compressed stream. The
// summed output is checked against the configured maximum decompressed
// size before being returned.
func (e *Engine) Decompress(ctx context.Context, raw any) ([]byte, error) {
	data, err := e.gate.ValidateInput(raw)
	if err != nil {
		metrics.Operations.WithLabelValues("decompress", "rejected").Inc()
		return nil, err
	}
	if err := e.gate.Admit(); err != nil {
		metrics.Operations.WithLabelValues("decompress", "rejected").Inc()
		return nil, err
	}
	metrics.BytesIn.WithLabelValues("decompress").Add(float64(len(data)))

	if !container.HasMagic(data) {
		out, err := e.codec.Decompress(data)
		if err != nil {
			metrics.Operations.WithLabelValues("decompress", "error").Inc()
			return nil, errs.Wrap(errs.ErrWorkerFault, "decompress", err)
		}
		if int64(len(out)) > e.cfg.MaxDecompressedSize {
			metrics.Operations.WithLabelValues("decompress", "rejected").Inc()
			return nil, errs.Wrap(errs.ErrDecompressedTooLarge, "decompress", nil)
		}
		metrics.Operations.WithLabelValues("decompress", "ok").Inc()
		metrics.BytesOut.WithLabelValues("decompress").Add(float64(len(out)))

		return out, nil
	}

	records, err := container.Decode(data)
	if err != nil {
		metrics.Operations.WithLabelValues("decompress", "rejected").Inc()
		return nil, err
	}

	futures := make([]chan taskResponse, 0, len(records))
	for _, rec := range records {
		fut, err := e.submit(ctx, format.OpDecompress, rec)
		if err != nil {
			metrics.Operations.WithLabelValues("decompress", "error").Inc()
			return nil, err
		}
		futures = append(futures, fut)
	}

	// Reassembly order is the record index order, never completion order.
	chunks, err := e.await(ctx, format.OpDecompress, futures)
	if err != nil {
		metrics.Operations.WithLabelValues("decompress", "error").Inc()
		return nil, err
	}

	var total int64
	for _, c := range chunks {
		total += int64(len(c))
	}
	if total > e.cfg.MaxDecompressedSize {
		metrics.Operations.WithLabelValues("decompress", "rejected").Inc()
		return nil, errs.Wrap(errs.ErrDecompressedTooLarge, "decompress", nil)
	}

	out := make([]byte, 0, total)
	for _, c := range chunks {
		out = append(out, c...)
	}
	metrics.Operations.WithLabelValues("decompress", "ok").Inc()
	metrics.BytesOut.WithLabelValues("decompress").Add(float64(total))

	return out, nil
}

// Terminate stops every worker, rejects all outstanding futures with
// ErrPoolTerminated and makes every subsequent submission fail fast.
// Idempotent.
func (e *Engine) Terminate() {
	if !e.terminated.CompareAndSwap(false, true) {
		return
	}

	ack := make(chan struct{})
	e.terminateCh <- ack
	<-ack
	close(e.done)

	e.logger.Info("engine terminated")
}
