package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/Matthew11K/TwitchBot/internal/bot/command"
	"github.com/Matthew11K/TwitchBot/internal/bot/registry"
	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

type TimerRegistry interface {
	Tick(ctx context.Context, sender command.Sender, interval time.Duration) (registry.TickResult, error)
}

type SettingsProvider interface {
	Current() models.TimerSettings
}

type LiveChecker interface {
	IsLive(ctx context.Context) (bool, error)
}

type TimerOption func(*TimerLoop)

func WithLiveChecker(live LiveChecker) TimerOption {
	return func(l *TimerLoop) {
		l.live = live
	}
}

// WithWait подменяет ожидание между циклами. wait возвращает false, если
// ожидание прервано отменой контекста.
func WithWait(wait func(ctx context.Context, d time.Duration) bool) TimerOption {
	return func(l *TimerLoop) {
		l.wait = wait
	}
}

// TimerLoop раз в глобальный интервал вызывает одну таймерную команду,
// самую давнюю по времени последнего вызова.
type TimerLoop struct {
	registry TimerRegistry
	settings SettingsProvider
	sender   command.Sender
	live     LiveChecker
	idle     time.Duration
	wait     func(ctx context.Context, d time.Duration) bool
	logger   *slog.Logger
}

func NewTimerLoop(
	reg TimerRegistry,
	settings SettingsProvider,
	sender command.Sender,
	idle time.Duration,
	logger *slog.Logger,
	opts ...TimerOption,
) *TimerLoop {
	l := &TimerLoop{
		registry: reg,
		settings: settings,
		sender:   sender,
		idle:     idle,
		wait:     sleepContext,
		logger:   logger,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

func (l *TimerLoop) Run(ctx context.Context) error {
	l.logger.Info("Запуск цикла таймерных команд", "idle", l.idle.String())

	for {
		sleep := l.Cycle(ctx)
		metrics.RecordTimerSleep(sleep)

		if !l.wait(ctx, sleep) {
			l.logger.Info("Цикл таймерных команд остановлен")
			return ctx.Err()
		}
	}
}

// Cycle выполняет один такт и возвращает длительность сна до следующего.
func (l *TimerLoop) Cycle(ctx context.Context) time.Duration {
	current := l.settings.Current()
	if !current.Enabled || current.Interval <= 0 {
		return l.idle
	}

	if l.live != nil {
		live, err := l.live.IsLive(ctx)
		if err != nil {
			l.logger.Warn("Не удалось получить статус трансляции", "error", err)
			return l.idle
		}

		if !live {
			return l.idle
		}
	}

	result, err := l.registry.Tick(ctx, l.sender, current.Interval)
	if err != nil {
		l.logger.Error("Ошибка в такте таймерных команд", "trigger", result.Fired, "error", err)
	}

	if result.Fired != "" {
		l.logger.Info("Таймерная команда вызвана", "trigger", result.Fired, "next_in", result.Sleep.String())
	}

	if !result.HasTimers || result.Sleep <= 0 {
		return l.idle
	}

	return result.Sleep
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
