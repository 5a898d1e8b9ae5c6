package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"
)

// logstashHandler renders records as Logstash-style JSON lines, field
// order matching the original LogstashFormatter: @timestamp, @version,
// message, host, path, tags, type, thread_name, level, logger_name,
// followed by any extra attributes sorted by key for determinism. Go
// has no thread-local equivalent to report as thread_name, so it always
// reports the literal value "goroutine".
type logstashHandler struct {
	w           io.Writer
	mu          *sync.Mutex
	level       slog.Leveler
	messageType string
	tags        []string
	host        string
	groups      []string
	attrs       []slog.Attr
}

func newLogstashHandler(w io.Writer, opts *slog.HandlerOptions, messageType string, tags []string) *logstashHandler {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &logstashHandler{
		w:           w,
		mu:          &sync.Mutex{},
		level:       level,
		messageType: messageType,
		tags:        tags,
		host:        host,
	}
}

func (h *logstashHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *logstashHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.WriteString("{")

	writeField(&buf, true, "@timestamp", formatTimestamp(r.Time))
	writeField(&buf, false, "@version", "1")
	writeField(&buf, false, "message", r.Message)
	writeField(&buf, false, "host", h.host)
	writeField(&buf, false, "path", loggerPath(h.groups))
	writeRawField(&buf, false, "tags", tagsJSON(h.tags))
	writeField(&buf, false, "type", h.messageType)
	writeField(&buf, false, "thread_name", "goroutine")
	writeField(&buf, false, "level", r.Level.String())
	writeField(&buf, false, "logger_name", loggerName(h.groups))

	extra := make(map[string]string)
	for _, a := range h.attrs {
		collectAttr(extra, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collectAttr(extra, "", a)
		return true
	})

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeField(&buf, false, k, extra[k])
	}

	buf.WriteString("}\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *logstashHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cloned := *h
	cloned.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &cloned
}

func (h *logstashHandler) WithGroup(name string) slog.Handler {
	cloned := *h
	cloned.groups = append(append([]string{}, h.groups...), name)
	return &cloned
}

func collectAttr(out map[string]string, prefix string, a slog.Attr) {
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, child := range a.Value.Group() {
			collectAttr(out, key, child)
		}
		return
	}
	out[key] = a.Value.String()
}

func loggerPath(groups []string) string {
	if len(groups) == 0 {
		return ""
	}
	path := groups[0]
	for _, g := range groups[1:] {
		path += "/" + g
	}
	return path
}

func loggerName(groups []string) string {
	if len(groups) == 0 {
		return "root"
	}
	return groups[len(groups)-1]
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000") + "Z"
}

func tagsJSON(tags []string) string {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, tag := range tags {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%q", tag)
	}
	buf.WriteString("]")
	return buf.String()
}

func writeField(buf *bytes.Buffer, first bool, key, value string) {
	if !first {
		buf.WriteString(", ")
	}
	fmt.Fprintf(buf, "%q: %q", key, value)
}

func writeRawField(buf *bytes.Buffer, first bool, key, rawValue string) {
	if !first {
		buf.WriteString(", ")
	}
	fmt.Fprintf(buf, "%q: %s", key, rawValue)
}
