package httpserver

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"dispatch-svc/pkg/logger"
	"dispatch-svc/pkg/metrics"
)

// RequestLogger logs each HTTP request with its method, path, status, and
// duration, translating the teacher's gRPC unary logging interceptor to the
// plain HTTP transport this service exposes. It also feeds the
// request_duration_seconds histogram so /metrics and structured logs agree
// on timing without instrumenting handlers twice.
func RequestLogger(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			route := r.URL.Path
			status := ww.Status()

			logFields := []any{
				"method", r.Method,
				"path", route,
				"status", status,
				"duration_ms", duration.Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			}

			errCode := ""
			if status >= 500 {
				errCode = "INTERNAL_ERROR"
				logger.Log.Error("request failed", logFields...)
			} else if status >= 400 {
				errCode = "CLIENT_ERROR"
				logger.Log.Warn("request rejected", logFields...)
			} else {
				logger.Log.Info("request completed", logFields...)
			}

			if m != nil {
				m.RecordRequest(route, errCode, duration)
			}
		})
	}
}
