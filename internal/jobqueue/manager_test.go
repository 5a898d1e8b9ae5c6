package jobqueue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestQueueJobDispatchesToRegisteredHandler(t *testing.T) {
	q := New(Config{WorkerCount: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})

	var calls int32
	done := make(chan struct{})
	q.RegisterJobHandler("widget", func(ctx context.Context, job Job) bool {
		atomic.AddInt32(&calls, 1)
		close(done)
		return true
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()

	q.QueueJob(Job{"job_type": "widget", "request_id": "req1"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}

	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected handler called once, got %d", calls)
	}
}

func TestQueueJobRetriesUntilHandlerReturnsTrue(t *testing.T) {
	q := New(Config{WorkerCount: 1, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond})

	var calls int32
	done := make(chan struct{})
	q.RegisterJobHandler("poll", func(ctx context.Context, job Job) bool {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			return false
		}
		close(done)
		return true
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)
	defer q.Stop()

	q.QueueJob(Job{"job_type": "poll", "infrastructure_id": "inf1", "request_id": "req1"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not reach finished state")
	}

	if atomic.LoadInt32(&calls) < 3 {
		t.Fatalf("expected at least 3 calls, got %d", calls)
	}
}

func TestQueueJobDedupesInFlightJobs(t *testing.T) {
	q := newPollQueue()

	job := Job{"job_type": "poll", "infrastructure_id": "inf1", "request_id": "req1"}
	q.Add(job)

	got, ok := q.Get(context.Background())
	if !ok {
		t.Fatal("expected to get job")
	}

	// Adding the same job again while it's processing should mark it
	// dirty instead of enqueueing a second copy.
	q.Add(job)
	if q.Len() != 0 {
		t.Fatalf("expected queue to stay empty while job is processing, got len %d", q.Len())
	}

	q.Done(got)
	if q.Len() != 1 {
		t.Fatalf("expected dirty job to be requeued on Done, got len %d", q.Len())
	}
}
