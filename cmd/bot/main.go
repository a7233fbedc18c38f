package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/multierr"

	"github.com/Matthew11K/TwitchBot/internal/bot/builtin"
	"github.com/Matthew11K/TwitchBot/internal/bot/clients/helix"
	"github.com/Matthew11K/TwitchBot/internal/bot/clients/kafka"
	"github.com/Matthew11K/TwitchBot/internal/bot/command"
	bothandler "github.com/Matthew11K/TwitchBot/internal/bot/handler"
	"github.com/Matthew11K/TwitchBot/internal/bot/registry"
	"github.com/Matthew11K/TwitchBot/internal/bot/repository"
	botservice "github.com/Matthew11K/TwitchBot/internal/bot/service"
	"github.com/Matthew11K/TwitchBot/internal/bot/settings"
	"github.com/Matthew11K/TwitchBot/internal/bot/twitch"
	"github.com/Matthew11K/TwitchBot/internal/common/httputil"
	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
	"github.com/Matthew11K/TwitchBot/internal/common/middleware"
	"github.com/Matthew11K/TwitchBot/internal/config"
	"github.com/Matthew11K/TwitchBot/internal/database"
	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
	"github.com/Matthew11K/TwitchBot/internal/points"
	"github.com/Matthew11K/TwitchBot/internal/scheduler"
	"github.com/Matthew11K/TwitchBot/pkg"
)

const kafkaConsumerGroup = "chat-bot-group"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска бота: %v\n", err)
		os.Exit(1)
	}
}

// transport принимает сообщения чата и отправляет ответы бота.
type transport interface {
	command.Sender
	Run(ctx context.Context, handler *botservice.BotService) error
	io.Closer
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() (err error) {
	cfg := config.LoadConfig()
	appLogger := pkg.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	if db != nil {
		defer db.Close()
	}

	commandRepo, err := repository.NewFactory(db, cfg, appLogger).CreateCommandRepository()
	if err != nil {
		return fmt.Errorf("ошибка создания репозитория команд: %w", err)
	}

	var (
		ledger      *points.Ledger
		pointsStore points.Store
	)

	if cfg.PointsEnabled {
		pointsStore, err = openPointsStore(cfg, appLogger)
		if err != nil {
			return err
		}

		if closer, ok := pointsStore.(io.Closer); ok {
			defer closer.Close()
		}

		ledger = points.NewLedger(pointsStore, models.PointSystemSettings{
			UserJoinAmount:   cfg.PointsJoinAmount,
			UserTimedAmount:  cfg.PointsTimedAmount,
			PointGivingDelay: cfg.PointsGivingDelay,
		}, appLogger)
	}

	var registryOpts []registry.Option
	if ledger != nil {
		registryOpts = append(registryOpts, registry.WithPoints(ledger))
	}

	reg := registry.New(commandRepo, appLogger, registryOpts...)

	if err := reg.Load(ctx); err != nil {
		return fmt.Errorf("не удалось загрузить пользовательские команды: %w", err)
	}

	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if flushErr := reg.Flush(flushCtx); flushErr != nil {
			appLogger.Error("Ошибка сохранения команд при остановке", "error", flushErr)
			err = multierr.Append(err, flushErr)
		}
	}()

	timerSettings := settings.NewStore(cfg.SettingsFile, models.TimerSettings{
		Interval: cfg.TimedMessagesInterval,
		Enabled:  cfg.TimedCommandsEnabled,
	}, appLogger)

	if err := timerSettings.Load(); err != nil {
		return fmt.Errorf("не удалось загрузить настройки таймеров: %w", err)
	}

	var builtinOpts []builtin.Option
	if ledger != nil {
		builtinOpts = append(builtinOpts, builtin.WithPoints(ledger))
	}

	reg.AddBuiltin(builtin.New(reg, timerSettings, cfg.DefaultCustomCooldown, appLogger, builtinOpts...).Commands()...)

	chat, err := openTransport(cfg, appLogger)
	if err != nil {
		return err
	}

	defer chat.Close()

	var serviceOpts []botservice.Option
	if ledger != nil {
		serviceOpts = append(serviceOpts, botservice.WithFirstMessageHandler(ledger))
	}

	botService := botservice.NewBotService(reg, chat, appLogger, serviceOpts...)

	var timerOpts []scheduler.TimerOption

	if cfg.TimersOnlyWhenLive {
		resilientClient := httputil.CreateResilientHTTPClient(httputil.SettingsFromConfig(cfg), appLogger, "twitch_helix")
		timerOpts = append(timerOpts, scheduler.WithLiveChecker(
			helix.NewClient(resilientClient, cfg.HelixBaseURL, cfg.TwitchClientID, cfg.TwitchOAuthToken, cfg.TwitchChannel),
		))
	}

	timerLoop := scheduler.NewTimerLoop(reg, timerSettings, chat, cfg.TimerIdleInterval, appLogger, timerOpts...)

	if ledger != nil {
		pointScheduler := scheduler.NewScheduler(ledger, cfg.PointsGivingDelay, appLogger)
		pointScheduler.Start()

		defer pointScheduler.Stop()
	}

	rateLimiter := middleware.NewRateLimiterMiddleware(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow, appLogger)
	httpServer := metrics.NewMetricsServer(cfg.BotMetricsPort, appLogger,
		metrics.WithRoute("/commands", bothandler.NewCommandsHandler(reg, timerSettings, appLogger)),
		metrics.WithMiddleware(middleware.NewMetricsMiddleware("bot_api", "/metrics").Middleware),
		metrics.WithMiddleware(rateLimiter.Middleware),
	)

	errCh := make(chan error, 3)

	go func() {
		errCh <- httpServer.Start(ctx)
	}()

	go func() {
		errCh <- timerLoop.Run(ctx)
	}()

	go func() {
		errCh <- chat.Run(ctx, botService)
	}()

	appLogger.Info("Бот запущен",
		"transport", cfg.MessageTransport,
		"commandStorage", cfg.CommandStorage,
		"pointsEnabled", cfg.PointsEnabled,
	)

	select {
	case <-ctx.Done():
		appLogger.Info("Получен сигнал завершения")
	case runErr := <-errCh:
		if runErr != nil && ctx.Err() == nil {
			appLogger.Error("Компонент бота завершился с ошибкой", "error", runErr)
			err = runErr
		}
	}

	stop()

	return err
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*database.PostgresDB, error) {
	if cfg.CommandStorage != config.SQLStorage && cfg.CommandStorage != config.SquirrelStorage {
		return nil, nil
	}

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return nil, err
	}

	db, err := database.NewPostgresDB(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	return db, nil
}

func openPointsStore(cfg *config.Config, logger *slog.Logger) (points.Store, error) {
	switch cfg.PointsStorage {
	case config.FileStorage:
		store, err := points.NewFileStore(cfg.UserInfoFile)
		if err != nil {
			return nil, fmt.Errorf("не удалось загрузить очки пользователей: %w", err)
		}

		return store, nil
	case config.RedisStorage:
		store, err := points.NewRedisStore(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к Redis: %w", err)
		}

		return store, nil
	default:
		return nil, &domainerrors.ErrUnknownStorageType{StorageType: string(cfg.PointsStorage)}
	}
}

type twitchTransport struct {
	*twitch.Client
}

func (t twitchTransport) Run(ctx context.Context, handler *botservice.BotService) error {
	return t.Client.Run(ctx, handler)
}

func (twitchTransport) Close() error {
	return nil
}

type kafkaTransport struct {
	*kafka.Producer
	consumer *kafka.Consumer
}

func (t *kafkaTransport) Run(ctx context.Context, handler *botservice.BotService) error {
	t.consumer.Start(ctx, handler)

	return nil
}

func (t *kafkaTransport) Close() error {
	return multierr.Append(t.consumer.Close(), t.Producer.Close())
}

func openTransport(cfg *config.Config, logger *slog.Logger) (transport, error) {
	switch cfg.MessageTransport {
	case config.TwitchTransport:
		return twitchTransport{twitch.NewClient(cfg.TwitchUsername, cfg.TwitchOAuthToken, cfg.TwitchChannel, logger)}, nil
	case config.KafkaTransport:
		brokers := strings.Split(cfg.KafkaBrokers, ",")

		return &kafkaTransport{
			Producer: kafka.NewProducer(brokers, cfg.TopicOutgoingMessages, logger),
			consumer: kafka.NewConsumer(brokers, kafkaConsumerGroup, cfg.TopicChatMessages, cfg.TopicDeadLetterQueue, logger),
		}, nil
	default:
		return nil, &domainerrors.ErrUnknownTransport{Transport: string(cfg.MessageTransport)}
	}
}
