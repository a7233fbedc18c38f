package httputil_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matthew11K/TwitchBot/internal/common/httputil"
	"github.com/Matthew11K/TwitchBot/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCircuitBreaker_FastFailure(t *testing.T) {
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := httputil.CreateResilientHTTPClient(httputil.Settings{
		Timeout:                1 * time.Second,
		RetryCount:             0,
		RetryableStatusCodes:   []int{500, 502, 503, 504},
		WindowSize:             time.Minute,
		MinimumRequiredCalls:   1,
		FailureRateThreshold:   1,
		PermittedCallsHalfOpen: 1,
		OpenStateTimeout:       2 * time.Second,
	}, newLogger(), "test_service")

	_, err := client.R().Get(server.URL + "/test")
	require.Error(t, err)

	before := atomic.LoadInt32(&requestCount)

	start := time.Now()
	_, err = client.R().Get(server.URL + "/test")
	duration := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker is open")
	assert.Less(t, duration, 200*time.Millisecond, "Circuit breaker должен отвечать быстро")
	assert.Equal(t, before, atomic.LoadInt32(&requestCount), "Открытый breaker не пропускает запросы к серверу")
}

func TestRetryWithBackoff(t *testing.T) {
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&requestCount, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	}))
	defer server.Close()

	client := httputil.CreateResilientHTTPClient(httputil.Settings{
		Timeout:                5 * time.Second,
		RetryCount:             3,
		RetryBackoff:           20 * time.Millisecond,
		RetryableStatusCodes:   []int{500, 502, 503, 504},
		WindowSize:             time.Minute,
		MinimumRequiredCalls:   10,
		FailureRateThreshold:   0.9,
		PermittedCallsHalfOpen: 3,
		OpenStateTimeout:       10 * time.Second,
	}, newLogger(), "test_service")

	resp, err := client.R().Get(server.URL + "/test")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, int32(3), atomic.LoadInt32(&requestCount), "Должно быть 3 запроса: 2 неудачных + 1 успешный")
}

func TestNonRetryableStatus(t *testing.T) {
	var requestCount int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&requestCount, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := httputil.CreateResilientHTTPClient(httputil.Settings{
		Timeout:                5 * time.Second,
		RetryCount:             3,
		RetryBackoff:           20 * time.Millisecond,
		RetryableStatusCodes:   []int{500, 502, 503, 504, 429},
		WindowSize:             time.Minute,
		MinimumRequiredCalls:   10,
		FailureRateThreshold:   0.9,
		PermittedCallsHalfOpen: 3,
		OpenStateTimeout:       10 * time.Second,
	}, newLogger(), "test_service")

	resp, err := client.R().Get(server.URL + "/test")

	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
	assert.Equal(t, int32(1), atomic.LoadInt32(&requestCount), "Повтор для 401 не выполняется")
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{
		ExternalRequestTimeout:     3 * time.Second,
		RetryCount:                 2,
		CBSlidingWindowSize:        30,
		CBMinimumRequiredCalls:     5,
		CBFailureRateThreshold:     50,
		CBPermittedCallsInHalfOpen: 2,
		CBWaitDurationInOpenState:  time.Minute,
	}

	settings := httputil.SettingsFromConfig(cfg)

	assert.Equal(t, 3*time.Second, settings.Timeout)
	assert.Equal(t, 30*time.Second, settings.WindowSize)
	assert.Equal(t, uint32(5), settings.MinimumRequiredCalls)
	assert.InDelta(t, 0.5, settings.FailureRateThreshold, 1e-9)
	assert.Equal(t, uint32(2), settings.PermittedCallsHalfOpen)
}
