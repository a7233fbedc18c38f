package registry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Matthew11K/TwitchBot/internal/bot/command"
	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
)

// TickResult описывает один такт планировщика таймеров.
type TickResult struct {
	Fired     string
	Sleep     time.Duration
	HasTimers bool
}

// Tick выбирает самую давно вызванную таймерную команду и вызывает её без
// сообщения, если с её последнего вызова прошло не меньше interval. При
// равенстве побеждает первая по порядку: встроенные, затем пользовательские.
func (r *Registry) Tick(ctx context.Context, sender command.Sender, interval time.Duration) (TickResult, error) {
	ctx, span := r.tracer.Start(ctx, "Registry.Tick")
	defer span.End()

	inv := command.NewInvocation(nil, sender)

	result, err := r.tickLocked(ctx, inv, interval)

	r.runDeferred(ctx, inv)

	span.SetAttributes(
		attribute.String("fired", result.Fired),
		attribute.String("sleep", result.Sleep.String()),
	)

	if err != nil {
		span.RecordError(err)
	}

	return result, err
}

func (r *Registry) tickLocked(ctx context.Context, inv *command.Invocation, interval time.Duration) (TickResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var oldest *command.Command

	for _, group := range [][]*command.Command{r.builtins, r.customs} {
		for _, cmd := range group {
			if !cmd.IsTimer {
				continue
			}

			if oldest == nil || cmd.LastInvoked.Before(oldest.LastInvoked) {
				oldest = cmd
			}
		}
	}

	if oldest == nil {
		return TickResult{}, nil
	}

	now := r.now()

	if dueAt := oldest.LastInvoked.Add(interval); dueAt.After(now) {
		return TickResult{Sleep: dueAt.Sub(now), HasTimers: true}, nil
	}

	result := TickResult{Fired: oldest.Label(), Sleep: interval, HasTimers: true}

	if err := oldest.Invoke(ctx, inv, r.points, now); err != nil {
		r.logger.Error("Ошибка при вызове таймерной команды", "trigger", result.Fired, "error", err)
		return result, err
	}

	metrics.RecordCommandInvoked(metrics.SourceScheduler)

	return result, nil
}
