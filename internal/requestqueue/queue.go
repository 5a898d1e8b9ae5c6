// Package requestqueue implements the in-memory request queue used when
// an infrastructure service instance is configured with
// async_requests_enabled. Requests are drained by a worker pool that
// invokes the driver directly; this decouples the API façade response
// from how long provisioning actually takes.
package requestqueue

import (
	"context"
	"log/slog"
	"sync"

	"ignition/internal/infra"
	"ignition/internal/metrics"
)

// Processor performs the actual create/delete call for a dequeued
// request. It is supplied by the component wiring the queue together
// with a driver and, optionally, a monitoring service.
type Processor func(ctx context.Context, req infra.Request) error

// Queue is an in-memory, FIFO infra.RequestQueueService.
type Queue struct {
	mu        sync.Mutex
	items     []infra.Request
	notEmpty  *sync.Cond
	shutdown  bool
	processor Processor

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// New constructs a Queue. The processor is invoked once per dequeued
// request; it is responsible for calling the driver and, if
// appropriate, handing the result to the task monitoring service.
func New(processor Processor) *Queue {
	q := &Queue{processor: processor}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// QueueInfrastructureRequest appends a request to the queue.
func (q *Queue) QueueInfrastructureRequest(req infra.Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.shutdown {
		return nil
	}
	q.items = append(q.items, req)
	q.notEmpty.Signal()
	metrics.RequestQueueDepth.Set(float64(len(q.items)))
	return nil
}

// Start launches a fixed worker pool draining the queue.
func (q *Queue) Start(ctx context.Context, workerCount int) {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.running = true
	q.mu.Unlock()

	if workerCount <= 0 {
		workerCount = 1
	}
	for i := 0; i < workerCount; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// Stop shuts the queue down and waits for in-flight processing to finish.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.shutdown = true
	cancel := q.cancel
	q.mu.Unlock()

	cancel()
	q.mu.Lock()
	q.notEmpty.Broadcast()
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()

	for {
		req, ok := q.next()
		if !ok {
			return
		}
		if err := q.processor(q.ctx, req); err != nil {
			slog.Error("failed to process queued infrastructure request",
				"infrastructure_id", req.InfrastructureID, "request_id", req.RequestID, "error", err)
		}
	}
}

func (q *Queue) next() (infra.Request, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.shutdown {
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		return infra.Request{}, false
	}

	req := q.items[0]
	q.items = q.items[1:]
	metrics.RequestQueueDepth.Set(float64(len(q.items)))
	return req, true
}

// Len reports the number of requests currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
