package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

type PointGranter interface {
	GrantTimed(ctx context.Context) (int, error)
}

// Scheduler периодически начисляет очки зрителям.
type Scheduler struct {
	scheduler *gocron.Scheduler
	granter   PointGranter
	logger    *slog.Logger
	interval  time.Duration
}

func NewScheduler(granter PointGranter, interval time.Duration, logger *slog.Logger) *Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.WaitForScheduleAll()

	return &Scheduler{
		scheduler: scheduler,
		granter:   granter,
		logger:    logger,
		interval:  interval,
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("Запуск планировщика начисления очков",
		"interval", s.interval.String(),
	)

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx := context.Background()

		granted, err := s.granter.GrantTimed(ctx)
		if err != nil {
			s.logger.Error("Ошибка при начислении очков",
				"error", err,
			)

			return
		}

		if granted > 0 {
			s.logger.Info("Очки начислены по таймеру", "users", granted)
		}
	})

	if err != nil {
		s.logger.Error("Ошибка при настройке планировщика",
			"error", err,
		)

		return
	}

	s.scheduler.StartAsync()
}

func (s *Scheduler) Stop() {
	s.logger.Info("Остановка планировщика начисления очков")
	s.scheduler.Stop()
}
