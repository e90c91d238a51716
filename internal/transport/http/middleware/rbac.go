package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"appraisal/internal/transport/http/api"
)

type PermissionStore interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

// RequirePermission lets the request through when the caller's role grants
// permission. Anonymous callers get 401, everyone else 403.
func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
				return
			}

			allowed, err := store.HasPermission(r.Context(), user.RoleName, permission)
			switch {
			case err != nil:
				slog.Error("permission check failed", "role", user.RoleName, "permission", permission, "requestId", requestID, "err", err)
				api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", requestID)
			case !allowed:
				api.FailWithDetails(w, http.StatusForbidden, "forbidden", "insufficient permissions",
					map[string]string{"permission": permission}, requestID)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
