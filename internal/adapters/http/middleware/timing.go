package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"studio/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the slow request threshold used when none is configured.
const DefaultSlowRequestMs = 200

var requestSeq atomic.Uint64

// statusRecorder remembers the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

// WriteHeader records code and forwards it.
func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Timing logs each request's duration, at WARN above slowRequestMs and at
// DEBUG otherwise, and records it in collector when one is given.
// PRE: slowRequestMs <= 0 uses DefaultSlowRequestMs
func Timing(collector *perf.Collector, slowRequestMs int) func(http.Handler) http.Handler {
	if slowRequestMs <= 0 {
		slowRequestMs = DefaultSlowRequestMs
	}
	threshold := float64(slowRequestMs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			durationMs := float64(time.Since(start).Microseconds()) / 1000.0
			attrs := []any{
				"request_id", requestSeq.Add(1),
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", durationMs,
			}
			if durationMs >= threshold {
				slog.Warn("slow_request", attrs...)
			} else {
				slog.Debug("request", attrs...)
			}

			if collector != nil {
				collector.Record(perf.Entry{
					Kind:       perf.KindRequest,
					Path:       r.Method + " " + routeOf(r),
					StatusCode: rec.status,
					DurationMs: durationMs,
					Timestamp:  start,
				})
			}
		})
	}
}

// routeOf groups requests by their mux pattern so /api/payments/p1/refund
// and /api/payments/p2/refund share an entry.
func routeOf(r *http.Request) string {
	if r.Pattern == "" {
		return r.URL.Path
	}
	if _, path, ok := strings.Cut(r.Pattern, " "); ok {
		return path
	}
	return r.Pattern
}
