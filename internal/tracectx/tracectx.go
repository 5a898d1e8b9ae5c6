// Package tracectx carries per-request trace correlation data
// (X-Tracectx-* headers) through a request's lifetime. The original
// implementation keeps this in thread-local storage; Go request
// handling is goroutine-per-request with no equivalent thread-local, so
// here the same data rides on the context.Context chain instead, set
// once at the edge of the request and read as an immutable snapshot by
// everything downstream, including the logging package.
package tracectx

import (
	"context"
	"net/http"
	"strings"
)

// HeaderPrefix is the HTTP header prefix extracted into trace context.
const HeaderPrefix = "X-Tracectx-"

// LogKeyPrefix is prepended to each extracted header name when it is
// folded into a log record.
const LogKeyPrefix = "traceCtx."

type contextKey struct{}

// FromHeaders builds an immutable snapshot of every X-Tracectx-* header
// on the request, keyed by "traceCtx.<lowercased suffix>", and returns a
// context carrying it. Headers not matching the prefix are ignored.
func FromHeaders(ctx context.Context, header http.Header) context.Context {
	data := make(map[string]string)
	for name, values := range header {
		if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(HeaderPrefix)) || len(values) == 0 {
			continue
		}
		suffix := strings.ToLower(name[len(HeaderPrefix):])
		data[LogKeyPrefix+suffix] = values[0]
	}
	return context.WithValue(ctx, contextKey{}, data)
}

// Get returns one value from the trace context snapshot carried by ctx,
// or the given default if it was never set.
func Get(ctx context.Context, name, defaultValue string) string {
	data, _ := ctx.Value(contextKey{}).(map[string]string)
	if data == nil {
		return defaultValue
	}
	if v, ok := data[name]; ok {
		return v
	}
	return defaultValue
}

// GetAll returns every key/value in the trace context snapshot carried
// by ctx. The returned map is a copy: mutating it has no effect on the
// context it was read from.
func GetAll(ctx context.Context) map[string]string {
	data, _ := ctx.Value(contextKey{}).(map[string]string)
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}
