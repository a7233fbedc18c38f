package middleware

import (
	"net/http"
	"time"

	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware учитывает запросы к HTTP-серверу бота. Пути из skip
// (например, сам /metrics) не учитываются.
type MetricsMiddleware struct {
	serviceName string
	skip        map[string]struct{}
}

func NewMetricsMiddleware(serviceName string, skipPaths ...string) *MetricsMiddleware {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, path := range skipPaths {
		skip[path] = struct{}{}
	}

	return &MetricsMiddleware{
		serviceName: serviceName,
		skip:        skip,
	}
}

func (m *MetricsMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(m.serviceName, r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}
