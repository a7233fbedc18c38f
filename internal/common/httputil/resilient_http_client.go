package httputil

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
	"github.com/Matthew11K/TwitchBot/internal/config"
	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
)

// Settings описывает параметры таймаута, повторов и circuit breaker внешнего клиента.
type Settings struct {
	Timeout              time.Duration
	RetryCount           int
	RetryBackoff         time.Duration
	RetryableStatusCodes []int

	WindowSize             time.Duration
	MinimumRequiredCalls   uint32
	FailureRateThreshold   float64
	PermittedCallsHalfOpen uint32
	OpenStateTimeout       time.Duration
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Timeout:                cfg.ExternalRequestTimeout,
		RetryCount:             cfg.RetryCount,
		RetryBackoff:           cfg.RetryBackoff,
		RetryableStatusCodes:   cfg.RetryableStatusCodes,
		WindowSize:             time.Duration(cfg.CBSlidingWindowSize) * time.Second,
		MinimumRequiredCalls:   uint32(cfg.CBMinimumRequiredCalls),     //nolint:gosec // G115: Значение из конфига
		FailureRateThreshold:   float64(cfg.CBFailureRateThreshold) / 100.0,
		PermittedCallsHalfOpen: uint32(cfg.CBPermittedCallsInHalfOpen), //nolint:gosec // G115: Значение из конфига
		OpenStateTimeout:       cfg.CBWaitDurationInOpenState,
	}
}

// CreateResilientHTTPClient собирает resty-клиент с повторами и circuit breaker.
// Каждый ответ учитывается в HTTP-метриках с меткой serviceName.
func CreateResilientHTTPClient(settings Settings, logger *slog.Logger, serviceName string) *resty.Client {
	client := resty.New()

	client.SetTimeout(settings.Timeout)

	client.SetRetryCount(settings.RetryCount)
	client.SetRetryWaitTime(settings.RetryBackoff)
	client.SetRetryMaxWaitTime(settings.RetryBackoff * 5)

	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return !errors.Is(err, gobreaker.ErrOpenState)
		}

		for _, status := range settings.RetryableStatusCodes {
			if r.StatusCode() == status {
				return true
			}
		}

		return false
	})

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        serviceName + "_circuit_breaker",
		MaxRequests: settings.PermittedCallsHalfOpen,
		Interval:    settings.WindowSize,
		Timeout:     settings.OpenStateTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= settings.MinimumRequiredCalls && failureRatio >= settings.FailureRateThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("Состояние circuit breaker изменилось",
					"name", name,
					"from", from.String(),
					"to", to.String(),
				)
			}
		},
	})

	client.SetTransport(&CircuitBreakerTransport{
		breaker:           breaker,
		originalTransport: http.DefaultTransport,
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		metrics.RecordHTTPRequest(serviceName, resp.Request.Method, resp.Request.RawRequest.URL.Path, resp.StatusCode(), resp.Time())

		if logger != nil && resp.Request.Attempt > 1 {
			logger.Info("Повторная попытка HTTP-запроса",
				"service", serviceName,
				"url", resp.Request.URL,
				"attempt", resp.Request.Attempt,
				"status", resp.StatusCode(),
			)
		}

		return nil
	})

	return client
}

// CircuitBreakerTransport считает ответы 5xx отказами и не пропускает запросы,
// пока breaker открыт.
type CircuitBreakerTransport struct {
	breaker           *gobreaker.CircuitBreaker
	originalTransport http.RoundTripper
}

func (t *CircuitBreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	result, err := t.breaker.Execute(func() (interface{}, error) {
		resp, err := t.originalTransport.RoundTrip(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, &domainerrors.HTTPError{StatusCode: resp.StatusCode}
		}

		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*http.Response), nil
}
