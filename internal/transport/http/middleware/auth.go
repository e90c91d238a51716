package middleware

import (
	"context"
	"net/http"
	"strings"

	"appraisal/internal/domain/auth"
	"appraisal/internal/requestctx"
	"appraisal/internal/transport/http/api"
)

type userKey struct{}

// Auth resolves the bearer token into the caller's identity. Requests without
// an Authorization header continue anonymously and are turned away by
// RequirePermission where a route needs a caller. A header that is present
// but does not carry a valid token is answered with 401 here.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				api.Fail(w, http.StatusUnauthorized, "invalid_token", "authorization header must carry a bearer token", GetRequestID(r.Context()))
				return
			}
			claims, err := auth.ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				api.Fail(w, http.StatusUnauthorized, "invalid_token", "bearer token is invalid or expired", GetRequestID(r.Context()))
				return
			}

			requestctx.SetSubject(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), auth.UserContext{
				UserID:       claims.UserID,
				RoleName:     claims.RoleName,
				DepartmentID: claims.DepartmentID,
			})))
		})
	}
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(userKey{}).(auth.UserContext)
	return user, ok
}
