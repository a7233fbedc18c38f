package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
	"github.com/Matthew11K/TwitchBot/internal/common/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_RejectsAfterBurst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiterMiddleware(ctx, 3, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := limiter.Middleware(okHandler())

	codes := make([]int, 0, 5)

	for range 5 {
		req := httptest.NewRequest(http.MethodGet, "/commands", http.NoBody)
		req.RemoteAddr = "10.0.0.1:5555"

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{200, 200, 200, 429, 429}, codes)

	req := httptest.NewRequest(http.MethodGet, "/commands", http.NoBody)
	req.RemoteAddr = "10.0.0.2:5555"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, "Лимит считается отдельно для каждого IP")
}

func TestRateLimiter_Headers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiterMiddleware(ctx, 1, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := limiter.Middleware(okHandler())

	var rec *httptest.ResponseRecorder

	for range 2 {
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/commands", http.NoBody))
	}

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestMetricsMiddleware(t *testing.T) {
	// Arrange
	mw := middleware.NewMetricsMiddleware("middleware_test", "/metrics")
	handler := mw.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues("middleware_test", http.MethodGet, "/commands", "error")
	skipped := metrics.HTTPRequestsTotal.WithLabelValues("middleware_test", http.MethodGet, "/metrics", "error")
	before := testutil.ToFloat64(counter)

	// Act
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/commands", http.NoBody))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	// Assert
	assert.InDelta(t, before+1, testutil.ToFloat64(counter), 1e-9)
	assert.InDelta(t, 0, testutil.ToFloat64(skipped), 1e-9)
}
