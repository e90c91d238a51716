package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"appraisal/internal/requestctx"
)

const (
	requestIDHeader    = "X-Request-ID"
	maxRequestIDLength = 128
)

// RequestID propagates a caller supplied X-Request-ID when it is short
// printable ASCII and mints a uuid otherwise.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(requestIDHeader)
		if !usableRequestID(reqID) {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(requestctx.WithRequestID(r.Context(), reqID)))
	})
}

func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
