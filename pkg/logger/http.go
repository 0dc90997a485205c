package logger

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"
)

// quietPrefixes are polled constantly by kitchen displays and probes; their
// request lines are logged at debug level.
var quietPrefixes = []string{"/health", "/metrics", "/api/kitchen/additions"}

// Middleware logs one line per request. Server errors log at error level,
// client errors at warn.
func Middleware(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			args := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"bytes", rec.bytes,
				"latency_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
			}
			ctx := r.Context()
			switch {
			case rec.status >= http.StatusInternalServerError:
				log.ErrorContext(ctx, "request", args...)
			case rec.status >= http.StatusBadRequest:
				log.WarnContext(ctx, "request", args...)
			case isQuiet(r.URL.Path):
				log.DebugContext(ctx, "request", args...)
			default:
				log.InfoContext(ctx, "request", args...)
			}
		})
	}
}

func isQuiet(path string) bool {
	for _, p := range quietPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Recovery turns a handler panic into a logged stack trace and a JSON 500.
func Recovery(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				log.ErrorContext(r.Context(), "panic recovered", "panic", rv, "stack", string(debug.Stack()))
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Internal Server Error","kind":"internal"}`))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}
