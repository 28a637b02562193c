package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"dispatch-svc/pkg/apperror"
	"dispatch-svc/pkg/logger"
	"dispatch-svc/pkg/metrics"
	"dispatch-svc/pkg/ratelimit"
)

// RateLimitKey extracts the bucket key for a request. RateLimit uses
// DefaultRateLimitKey when none is given.
type RateLimitKey func(r *http.Request) string

// DefaultRateLimitKey buckets by X-Forwarded-For when present, then
// X-Real-IP, falling back to RemoteAddr, mirroring the teacher's gRPC DefaultKeyExtractor without
// the user-id branch this service has no authentication layer to supply.
func DefaultRateLimitKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return "ip:" + xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return "ip:" + xri
	}
	return "ip:" + r.RemoteAddr
}

// RateLimit enforces limiter against each incoming request, keyed by
// keyFn, translating the teacher's gRPC RateLimitInterceptor to plain HTTP.
// A nil limiter makes this a pass-through, so callers can install it
// unconditionally.
func RateLimit(limiter ratelimit.Limiter, keyFn RateLimitKey, m *metrics.Metrics) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = DefaultRateLimitKey
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := "optimize:" + keyFn(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Log.Warn("rate limit check failed, failing open", "error", err, "key", key)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				if m != nil {
					m.ErrorsTotal.WithLabelValues(r.URL.Path, string(apperror.CodeRateLimited)).Inc()
				}

				limitInfo, infoErr := limiter.GetInfo(r.Context(), key)
				resetAt := time.Now().Add(time.Minute)
				limit := 0
				if infoErr == nil && limitInfo != nil {
					resetAt = limitInfo.ResetAt
					limit = limitInfo.Limit
				}

				logger.Log.Warn("rate limit exceeded", "key", key, "limit", limit)

				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("X-RateLimit-Reset", resetAt.Format(time.RFC3339))
				WriteJSONError(w, apperror.New(apperror.CodeRateLimited, "rate limit exceeded, retry after "+resetAt.Format(time.RFC3339)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
