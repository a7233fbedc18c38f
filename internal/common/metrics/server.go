package metrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerOption func(*serverOptions)

type serverOptions struct {
	routes      map[string]http.Handler
	middlewares []func(http.Handler) http.Handler
}

// WithRoute добавляет обработчик рядом с /metrics и /health.
func WithRoute(pattern string, handler http.Handler) ServerOption {
	return func(o *serverOptions) {
		o.routes[pattern] = handler
	}
}

// WithMiddleware оборачивает все маршруты сервера. Первый переданный
// middleware выполняется первым.
func WithMiddleware(mw func(http.Handler) http.Handler) ServerOption {
	return func(o *serverOptions) {
		o.middlewares = append(o.middlewares, mw)
	}
}

//nolint:revive // Имя MetricsServer используется для ясности
type MetricsServer struct {
	server *http.Server
	logger *slog.Logger
	port   int
}

func NewMetricsServer(port int, logger *slog.Logger, opts ...ServerOption) *MetricsServer {
	options := &serverOptions{routes: make(map[string]http.Handler)}
	for _, opt := range opts {
		opt(options)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	for pattern, handler := range options.routes {
		mux.Handle(pattern, handler)
	}

	var handler http.Handler = mux
	for i := len(options.middlewares) - 1; i >= 0; i-- {
		handler = options.middlewares[i](handler)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return &MetricsServer{
		server: server,
		logger: logger,
		port:   port,
	}
}

func (s *MetricsServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *MetricsServer) Start(ctx context.Context) error {
	s.logger.Info("Запуск HTTP-сервера бота",
		"port", s.port,
		"endpoint", "/metrics",
	)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Ошибка при остановке HTTP-сервера", "error", err)
		} else {
			s.logger.Info("HTTP-сервер успешно остановлен")
		}
	}()

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ошибка запуска HTTP-сервера: %w", err)
	}

	return nil
}
