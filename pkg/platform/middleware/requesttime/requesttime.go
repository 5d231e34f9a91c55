// Package requesttime pins one "now" per HTTP request so every audit record
// and rate-limit window within the request agree.
package requesttime

import (
	"net/http"
	"time"

	"sbos/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
