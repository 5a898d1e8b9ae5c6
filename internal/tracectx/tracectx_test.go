package tracectx

import (
	"context"
	"net/http"
	"testing"
)

func TestFromHeadersExtractsMatchingHeadersOnly(t *testing.T) {
	header := http.Header{}
	header.Set("X-Tracectx-TransactionId", "txn-1")
	header.Set("X-Tracectx-ProcessId", "proc-1")
	header.Set("Content-Type", "application/json")

	ctx := FromHeaders(context.Background(), header)

	if got := Get(ctx, "traceCtx.transactionid", ""); got != "txn-1" {
		t.Fatalf("expected txn-1, got %q", got)
	}
	if got := Get(ctx, "traceCtx.processid", ""); got != "proc-1" {
		t.Fatalf("expected proc-1, got %q", got)
	}

	all := GetAll(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(all), all)
	}
}

func TestGetReturnsDefaultWhenMissing(t *testing.T) {
	ctx := FromHeaders(context.Background(), http.Header{})
	if got := Get(ctx, "traceCtx.transactionid", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}

func TestGetAllReturnsCopyNotLiveView(t *testing.T) {
	header := http.Header{}
	header.Set("X-Tracectx-TransactionId", "txn-1")
	ctx := FromHeaders(context.Background(), header)

	snapshot := GetAll(ctx)
	snapshot["traceCtx.transactionid"] = "mutated"

	if got := Get(ctx, "traceCtx.transactionid", ""); got != "txn-1" {
		t.Fatalf("expected original context to be unaffected, got %q", got)
	}
}

func TestGetAllOnContextWithoutTraceDataIsEmpty(t *testing.T) {
	all := GetAll(context.Background())
	if len(all) != 0 {
		t.Fatalf("expected empty map, got %+v", all)
	}
}
