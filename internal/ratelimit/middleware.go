package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	dErrors "bloodlink/pkg/domain-errors"
	"bloodlink/pkg/platform/httputil"
	"bloodlink/pkg/requestcontext"
)

// Limit throttles requests by client IP. Limit headers are set on every
// response; rejected requests additionally carry Retry-After.
func Limit(limiter *SlidingWindow, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := limiter.Allow(clientIP(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := max(time.Until(result.ResetAt), time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
				logger.WarnContext(r.Context(), "rate limit exceeded",
					"request_id", requestcontext.RequestID(r.Context()),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
