package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"ignition/internal/tracectx"
)

func TestInitDefaultsToTextHandler(t *testing.T) {
	t.Setenv("LOG_TYPE", "")
	t.Setenv("LOG_LEVEL", "")

	var buf bytes.Buffer
	Init(&buf)

	Info(context.Background(), "test", "hello %s", "world")

	if !strings.Contains(buf.String(), "hello world") {
		t.Fatalf("expected plain text output to contain message, got %q", buf.String())
	}
}

func TestInitLogstashProducesJSONLine(t *testing.T) {
	t.Setenv("LOG_TYPE", "logstash")
	t.Setenv("LOG_LEVEL", "INFO")

	var buf bytes.Buffer
	Init(&buf)

	Info(context.Background(), "facade", "created %s", "inf1")

	line := strings.TrimSpace(buf.String())
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(line), &parsed); err != nil {
		t.Fatalf("expected valid JSON line, got %q: %v", line, err)
	}

	for _, field := range []string{"@timestamp", "@version", "message", "host", "type", "thread_name", "level", "logger_name"} {
		if _, ok := parsed[field]; !ok {
			t.Fatalf("expected field %q in logstash output: %+v", field, parsed)
		}
	}
	if parsed["message"] != "created inf1" {
		t.Fatalf("unexpected message: %v", parsed["message"])
	}
	if parsed["subsystem"] != "facade" {
		t.Fatalf("expected subsystem attribute, got %+v", parsed)
	}
}

func TestLogstashIncludesTraceContextFields(t *testing.T) {
	t.Setenv("LOG_TYPE", "logstash")
	t.Setenv("LOG_LEVEL", "INFO")

	var buf bytes.Buffer
	Init(&buf)

	header := http.Header{}
	header.Set("X-Tracectx-TransactionId", "txn-42")
	ctx := tracectx.FromHeaders(context.Background(), header)

	Info(ctx, "facade", "hello")

	var parsed map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("expected valid JSON line: %v", err)
	}
	if parsed["traceCtx.transactionid"] != "txn-42" {
		t.Fatalf("expected trace context field, got %+v", parsed)
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Setenv("LOG_TYPE", "logstash")
	t.Setenv("LOG_LEVEL", "WARN")

	var buf bytes.Buffer
	Init(&buf)

	Info(context.Background(), "facade", "should be suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected INFO to be suppressed at WARN level, got %q", buf.String())
	}

	Warn(context.Background(), "facade", "should appear")
	if buf.Len() == 0 {
		t.Fatal("expected WARN message to be logged")
	}
}
