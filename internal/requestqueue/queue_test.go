package requestqueue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"ignition/internal/infra"
)

func TestQueueInfrastructureRequestProcessesInOrder(t *testing.T) {
	var processed int32
	var order []string
	done := make(chan struct{})

	q := New(func(ctx context.Context, req infra.Request) error {
		order = append(order, req.RequestID)
		n := atomic.AddInt32(&processed, 1)
		if n == 2 {
			close(done)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx, 1)
	defer q.Stop()

	if err := q.QueueInfrastructureRequest(infra.Request{RequestID: "req1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.QueueInfrastructureRequest(infra.Request{RequestID: "req2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("requests were not processed")
	}

	if atomic.LoadInt32(&processed) != 2 {
		t.Fatalf("expected 2 requests processed, got %d", processed)
	}
	if len(order) != 2 || order[0] != "req1" || order[1] != "req2" {
		t.Fatalf("expected requests processed in queue order [req1 req2], got %v", order)
	}
}

func TestQueueAfterShutdownIsNoop(t *testing.T) {
	q := New(func(ctx context.Context, req infra.Request) error { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	q.Start(ctx, 1)
	q.Stop()
	cancel()

	if err := q.QueueInfrastructureRequest(infra.Request{RequestID: "req1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Len() != 0 {
		t.Fatalf("expected no items queued after shutdown, got %d", q.Len())
	}
}
