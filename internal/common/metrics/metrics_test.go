package metrics_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
)

func TestRecordHTTPRequest(t *testing.T) {
	// Arrange
	service := "test-service"
	method := "GET"
	endpoint := "/test"
	statusCode := 200
	duration := 100 * time.Millisecond

	// Act
	metrics.RecordHTTPRequest(service, method, endpoint, statusCode, duration)

	// Assert
	counterValue := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(service, method, endpoint, "success"))
	assert.Equal(t, float64(1), counterValue)

	assert.NotNil(t, metrics.HTTPRequestDuration)
}

func TestRecordHTTPRequestError(t *testing.T) {
	// Arrange
	service := "test-service"
	method := "POST"
	endpoint := "/error"
	statusCode := 500
	duration := 50 * time.Millisecond

	// Act
	metrics.RecordHTTPRequest(service, method, endpoint, statusCode, duration)

	// Assert
	counterValue := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(service, method, endpoint, "error"))
	assert.Equal(t, float64(1), counterValue)
}

func TestRecordUserMessage(t *testing.T) {
	messageTypes := []string{"command_test", "message_test"}

	for i, messageType := range messageTypes {
		initial := testutil.ToFloat64(metrics.UserMessagesTotal.WithLabelValues(messageType))

		metrics.RecordUserMessage(messageType)

		final := testutil.ToFloat64(metrics.UserMessagesTotal.WithLabelValues(messageType))
		assert.Equal(t, initial+1, final, "Iteration %d", i)
	}
}

func TestRecordCommandInvoked(t *testing.T) {
	initialChat := testutil.ToFloat64(metrics.CommandsInvokedTotal.WithLabelValues(metrics.SourceChat))
	initialScheduler := testutil.ToFloat64(metrics.CommandsInvokedTotal.WithLabelValues(metrics.SourceScheduler))

	metrics.RecordCommandInvoked(metrics.SourceChat)
	metrics.RecordCommandInvoked(metrics.SourceScheduler)
	metrics.RecordCommandInvoked(metrics.SourceScheduler)

	assert.Equal(t, initialChat+1, testutil.ToFloat64(metrics.CommandsInvokedTotal.WithLabelValues(metrics.SourceChat)))
	assert.Equal(t, initialScheduler+2, testutil.ToFloat64(metrics.CommandsInvokedTotal.WithLabelValues(metrics.SourceScheduler)))
}

func TestRecordPointsGranted(t *testing.T) {
	initial := testutil.ToFloat64(metrics.PointsGrantedTotal.WithLabelValues("timed_test"))

	metrics.RecordPointsGranted("timed_test", 5)

	assert.Equal(t, initial+5, testutil.ToFloat64(metrics.PointsGrantedTotal.WithLabelValues("timed_test")))
}

func TestMetricsExist(t *testing.T) {
	// Arrange
	metrics.RecordPersistenceFailure("test")
	metrics.RecordTimerSleep(10 * time.Second)
	metrics.RecordUserMessage("exist_test")
	metrics.RecordCommandInvoked(metrics.SourceChat)
	metrics.CommandsDeniedTotal.Add(0)
	metrics.CooldownRejectionsTotal.Add(0)

	// Act
	metricFamilies, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	metricNames := make(map[string]bool)
	for _, mf := range metricFamilies {
		metricNames[*mf.Name] = true
	}

	// Assert
	expectedMetrics := []string{
		"chat_bot_bot_user_messages_total",
		"chat_bot_bot_commands_invoked_total",
		"chat_bot_bot_commands_denied_total",
		"chat_bot_bot_cooldown_rejections_total",
		"chat_bot_bot_persistence_failures_total",
		"chat_bot_bot_timer_sleep_seconds",
	}

	for _, metricName := range expectedMetrics {
		assert.True(t, metricNames[metricName], "Метрика %s должна быть зарегистрирована", metricName)
	}
}

func TestMetricsServer_RoutesAndMiddleware(t *testing.T) {
	// Arrange
	var order []string

	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	server := metrics.NewMetricsServer(0, slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics.WithRoute("/commands", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("[]"))
		})),
		metrics.WithMiddleware(mw("first")),
		metrics.WithMiddleware(mw("second")),
	)

	// Act
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/commands", http.NoBody))

	health := httptest.NewRecorder()
	server.Handler().ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	// Assert
	assert.Equal(t, "[]", rec.Body.String())
	assert.Equal(t, "OK", health.Body.String())
	assert.Equal(t, []string{"first", "second", "first", "second"}, order)
}
