package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"bloodlink/pkg/requestcontext"
)

// RequestMeta stamps every request with a correlation ID and a request-scoped
// time so all writes within one request observe the same clock reading.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))

		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
