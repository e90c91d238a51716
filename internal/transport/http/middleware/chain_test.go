package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal/internal/domain/auth"
)

type countingRecorder struct {
	mu       sync.Mutex
	statuses []int
}

func (c *countingRecorder) Record(status int, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, status)
}

func TestRecovererReturnsEnvelope(t *testing.T) {
	handler := RequestID(Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
		RequestID string `json:"requestId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "internal_error", body.Error.Code)
	assert.NotEmpty(t, body.RequestID)
}

func TestLoggerFeedsRecorder(t *testing.T) {
	recorder := &countingRecorder{}
	handler := Logger(recorder)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []int{http.StatusTeapot}, recorder.statuses)
}

func TestRequirePermission(t *testing.T) {
	gate := RequirePermission(auth.PermCatalogWrite, auth.StaticPermissions{})(noContent())

	cases := []struct {
		name string
		ctx  context.Context
		want int
	}{
		{"anonymous", context.Background(), http.StatusUnauthorized},
		{"manager", WithUser(context.Background(), auth.UserContext{UserID: "m1", RoleName: auth.RoleManager}), http.StatusForbidden},
		{"hr", WithUser(context.Background(), auth.UserContext{UserID: "h1", RoleName: auth.RoleHR}), http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil).WithContext(tc.ctx)
			rec := httptest.NewRecorder()
			gate.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestBodyLimitRejectsLargeWrites(t *testing.T) {
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"comments":"far too long"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestBodyLimitRefusesDeclaredOversize(t *testing.T) {
	called := false
	handler := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"name":"quality"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "payload_too_large")
}

func TestBodyLimitIgnoresReads(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", strings.NewReader(`{"much":"longer than eight"}`))
	BodyLimit(8)(noContent()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequirePermissionNamesMissingPermission(t *testing.T) {
	gate := RequirePermission(auth.PermEvaluationDelete, auth.StaticPermissions{})(noContent())
	req := httptest.NewRequest(http.MethodDelete, "/", nil).
		WithContext(WithUser(context.Background(), auth.UserContext{UserID: "m1", RoleName: auth.RoleManager}))
	rec := httptest.NewRecorder()
	gate.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), auth.PermEvaluationDelete)
}

func TestSecureHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecureHeaders(true)(noContent()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	SecureHeaders(false)(noContent()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}
