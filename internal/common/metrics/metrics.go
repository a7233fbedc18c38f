package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "chat_bot"

	BotSubsystem    = "bot"
	PointsSubsystem = "points"
)

const (
	SourceChat      = "chat"
	SourceScheduler = "scheduler"
)

// Общие метрики для всех сервисов.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Бот метрики.
var (
	UserMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "user_messages_total",
			Help:      "Total number of chat messages processed",
		},
		[]string{"message_type"},
	)

	CommandsInvokedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "commands_invoked_total",
			Help:      "Total number of successful command invocations",
		},
		[]string{"source"},
	)

	CommandsDeniedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "commands_denied_total",
			Help:      "Total number of invocations rejected by authorization",
		},
	)

	CooldownRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "cooldown_rejections_total",
			Help:      "Total number of invocations silently rejected by cooldown",
		},
	)

	PersistenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "persistence_failures_total",
			Help:      "Total number of failed command store flushes",
		},
		[]string{"operation"},
	)

	TimerSleepSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "timer_sleep_seconds",
			Help:      "Sleep chosen by the timer loop between cycles",
			Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1500, 3600},
		},
	)

	ChatEventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: BotSubsystem,
			Name:      "chat_events_processed_total",
			Help:      "Total number of chat events consumed from the message broker",
		},
		[]string{"status"},
	)
)

// Метрики очков.
var (
	PointsGrantedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: PointsSubsystem,
			Name:      "granted_total",
			Help:      "Total number of points granted",
		},
		[]string{"reason"},
	)
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := "success"
	if statusCode >= 400 {
		status = "error"
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordUserMessage(messageType string) {
	UserMessagesTotal.WithLabelValues(messageType).Inc()
}

func RecordCommandInvoked(source string) {
	CommandsInvokedTotal.WithLabelValues(source).Inc()
}

func RecordPersistenceFailure(operation string) {
	PersistenceFailuresTotal.WithLabelValues(operation).Inc()
}

func RecordTimerSleep(d time.Duration) {
	TimerSleepSeconds.Observe(d.Seconds())
}

func RecordPointsGranted(reason string, amount int) {
	PointsGrantedTotal.WithLabelValues(reason).Add(float64(amount))
}

func RecordChatEvent(status string) {
	ChatEventsProcessed.WithLabelValues(status).Inc()
}
