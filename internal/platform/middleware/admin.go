package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"sbos/pkg/platform/httputil"
	"sbos/pkg/requestcontext"
)

// AdminValidator checks an admin bearer token and returns its subject.
type AdminValidator interface {
	ValidateAdmin(token string) (string, error)
}

// RequireAdmin guards administrative routes. A nil validator disables the
// check, which is the default when no signing key is configured.
func RequireAdmin(validator AdminValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "admin access without token",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="sbos-admin"`)
				httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
					"error":             "unauthorized",
					"error_description": "Missing or invalid Authorization header",
				})
				return
			}
			subject, err := validator.ValidateAdmin(token)
			if err != nil {
				logger.WarnContext(ctx, "admin token rejected",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithAdminSubject(ctx, subject)))
		})
	}
}
