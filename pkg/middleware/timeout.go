package middleware

import (
	"net/http"
	"time"

	"github.com/hourbook/hourbook/pkg/database"
)

// StoreTimeout returns middleware that bounds each request's store work
// with a context deadline. Streaming endpoints are exempt; their
// connections are expected to stay open.
func StoreTimeout(d time.Duration, exemptPaths ...string) func(http.Handler) http.Handler {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := database.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
