package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// MetricsMiddleware tracks request timing and metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip tracking the metrics endpoints themselves to avoid polluting metrics
		path := r.URL.Path
		if path == "/api/v1/admin/metrics" ||
			path == "/api/v1/admin/metrics/traces" ||
			path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		startTime := time.Now()

		trace := &RequestTrace{
			RequestID: uuid.New().String(),
			Method:    r.Method,
			Path:      path,
			StartTime: startTime,
			DBQueries: make([]DBQueryTrace, 0),
		}

		ctx := WithRequestTrace(r.Context(), trace)
		r = r.WithContext(ctx)

		// Wrap response writer to capture status code
		wrappedWriter := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrappedWriter, r)

		trace.Status = wrappedWriter.statusCode
		trace.EndTime = time.Now()
		trace.TotalDuration = trace.EndTime.Sub(startTime)

		RecordRequest(trace)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
