package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"appraisal/internal/requestctx"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestRecorder receives the status and duration of every request.
type RequestRecorder interface {
	Record(status int, duration time.Duration)
}

// Logger writes one structured access log entry per request and, when
// recorder is non-nil, feeds the request counters.
func Logger(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			if recorder != nil {
				recorder.Record(rec.status, elapsed)
			}
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"durationMs", elapsed.Milliseconds(),
				"requestId", GetRequestID(r.Context()),
				"subject", requestctx.Subject(r.Context()),
			)
		})
	}
}
