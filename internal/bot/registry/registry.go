package registry

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Matthew11K/TwitchBot/internal/bot/command"
	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

const tracerName = "github.com/Matthew11K/TwitchBot/internal/bot/registry"

// CommandRepository хранит пользовательские команды целиком, в порядке добавления.
type CommandRepository interface {
	Load(ctx context.Context) ([]models.CommandRecord, error)
	Save(ctx context.Context, records []models.CommandRecord) error
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

func WithPoints(points command.PointsReader) Option {
	return func(r *Registry) {
		r.points = points
	}
}

// Registry хранит встроенные и пользовательские команды. Один мьютекс
// охраняет состав и состояние команд на всё время диспетчеризации или
// такта планировщика, включая действие команды.
type Registry struct {
	mu       sync.Mutex
	builtins []*command.Command
	customs  []*command.Command

	repo   CommandRepository
	points command.PointsReader
	now    func() time.Time
	logger *slog.Logger
	tracer trace.Tracer
}

func New(repo CommandRepository, logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		repo:   repo,
		now:    time.Now,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Load заменяет пользовательские команды сохранёнными. Любая повреждённая
// запись делает загрузку неуспешной целиком.
func (r *Registry) Load(ctx context.Context) error {
	records, err := r.repo.Load(ctx)
	if err != nil {
		var malformed *domainerrors.ErrMalformedPersistedState
		if errors.As(err, &malformed) {
			return err
		}

		return &domainerrors.ErrMalformedPersistedState{Source: "commands", Cause: err}
	}

	customs := make([]*command.Command, 0, len(records))

	for _, rec := range records {
		cmd, err := command.FromRecord(rec)
		if err != nil {
			return &domainerrors.ErrMalformedPersistedState{Source: "commands", Cause: err}
		}

		customs = append(customs, cmd)
	}

	r.mu.Lock()
	r.customs = customs
	r.mu.Unlock()

	r.logger.Info("Пользовательские команды загружены", "count", len(customs))

	return nil
}

func (r *Registry) AddBuiltin(cmds ...*command.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.builtins = append(r.builtins, cmds...)
}

// Dispatch вызывает первую команду, чей триггер совпал с текстом сообщения.
// Возвращает, нашлась ли такая команда.
func (r *Registry) Dispatch(ctx context.Context, msg *models.ChatMessage, sender command.Sender) (bool, error) {
	ctx, span := r.tracer.Start(ctx, "Registry.Dispatch")
	defer span.End()

	inv := command.NewInvocation(msg, sender)

	matched, err := r.dispatchLocked(ctx, msg, inv)

	r.runDeferred(ctx, inv)

	span.SetAttributes(attribute.Bool("matched", matched))

	if err != nil {
		span.RecordError(err)
	}

	return matched, err
}

func (r *Registry) dispatchLocked(ctx context.Context, msg *models.ChatMessage, inv *command.Invocation) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cmd := r.matchLocked(msg.Text)
	if cmd == nil {
		return false, nil
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("trigger", cmd.Label()))

	err := cmd.Invoke(ctx, inv, r.points, r.now())

	switch {
	case err == nil:
		metrics.RecordCommandInvoked(metrics.SourceChat)
	case errors.Is(err, &domainerrors.ErrAuthorizationDenied{}):
		metrics.CommandsDeniedTotal.Inc()
	case errors.Is(err, &domainerrors.ErrCooldownActive{}):
		metrics.CooldownRejectionsTotal.Inc()
	}

	return true, err
}

func (r *Registry) matchLocked(text string) *command.Command {
	for _, cmd := range r.builtins {
		if cmd.Trigger.Matches(text) {
			return cmd
		}
	}

	for _, cmd := range r.customs {
		if cmd.Trigger.Matches(text) {
			return cmd
		}
	}

	return nil
}

func (r *Registry) runDeferred(ctx context.Context, inv *command.Invocation) {
	for _, fn := range inv.TakeDeferred() {
		fn(ctx)
	}
}

// Add добавляет пользовательскую команду и сразу сохраняет список.
// Ошибка сохранения не откатывает добавление.
func (r *Registry) Add(ctx context.Context, cmd *command.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.clashLocked(cmd); existing != nil {
		return &domainerrors.ErrTriggerClash{Trigger: cmd.Label(), Existing: existing.Label()}
	}

	r.customs = append(r.customs, cmd)

	r.logger.Info("Команда добавлена", "trigger", cmd.Label())

	return r.flushLocked(ctx, "add")
}

func (r *Registry) clashLocked(cmd *command.Command) *command.Command {
	label, hasLabel := cmd.Trigger.ListLabel()

	for _, group := range [][]*command.Command{r.builtins, r.customs} {
		for _, existing := range group {
			if hasLabel && existing.Trigger.Matches(label) {
				return existing
			}

			if existingLabel, ok := existing.Trigger.ListLabel(); ok && cmd.Trigger.Matches(existingLabel) {
				return existing
			}
		}
	}

	return nil
}

// Remove удаляет первую пользовательскую команду, чей триггер совпал со словом.
func (r *Registry) Remove(ctx context.Context, word string) (*command.Command, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findCustomLocked(word)
	if idx < 0 {
		return nil, &domainerrors.ErrUnknownTrigger{Trigger: word}
	}

	removed := r.customs[idx]
	r.customs = append(r.customs[:idx:idx], r.customs[idx+1:]...)

	r.logger.Info("Команда удалена", "trigger", removed.Label())

	return removed, r.flushLocked(ctx, "remove")
}

// Update изменяет пользовательскую команду на месте, сохраняя её позицию и состояние.
func (r *Registry) Update(ctx context.Context, word string, mutate func(cmd *command.Command)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.findCustomLocked(word)
	if idx < 0 {
		return &domainerrors.ErrUnknownTrigger{Trigger: word}
	}

	mutate(r.customs[idx])

	r.logger.Info("Команда изменена", "trigger", r.customs[idx].Label())

	return r.flushLocked(ctx, "update")
}

func (r *Registry) findCustomLocked(word string) int {
	for i, cmd := range r.customs {
		if cmd.Trigger.Matches(word) {
			return i
		}
	}

	return -1
}

// ListVisibleTo возвращает отсортированные метки команд, доступных вызывающему.
func (r *Registry) ListVisibleTo(ctx context.Context, caller models.Caller) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var labels []string

	for _, group := range [][]*command.Command{r.builtins, r.customs} {
		for _, cmd := range group {
			label, ok := cmd.Trigger.ListLabel()
			if !ok {
				continue
			}

			if cmd.Authenticator.Authorize(ctx, caller, r.points) {
				labels = append(labels, label)
			}
		}
	}

	sort.Strings(labels)

	return labels
}

// Entry описывает команду для административного API.
type Entry struct {
	Trigger       string    `json:"trigger"`
	Builtin       bool      `json:"builtin"`
	Authenticator string    `json:"authenticator"`
	Cooldown      string    `json:"cooldown,omitempty"`
	IsTimer       bool      `json:"isTimer"`
	LastInvoked   time.Time `json:"lastInvoked"`
	Response      string    `json:"response,omitempty"`
}

func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]Entry, 0, len(r.builtins)+len(r.customs))

	for _, group := range []struct {
		cmds    []*command.Command
		builtin bool
	}{{r.builtins, true}, {r.customs, false}} {
		for _, cmd := range group.cmds {
			entry := Entry{
				Trigger:       cmd.Label(),
				Builtin:       group.builtin,
				Authenticator: cmd.Authenticator.Tag(),
				IsTimer:       cmd.IsTimer,
				LastInvoked:   cmd.LastInvoked,
				Response:      cmd.Response,
			}

			if cmd.Cooldown > 0 {
				entry.Cooldown = cmd.Cooldown.String()
			}

			entries = append(entries, entry)
		}
	}

	return entries
}

// Flush сохраняет пользовательские команды вместе с временем последнего вызова.
func (r *Registry) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.flushLocked(ctx, "flush")
}

func (r *Registry) flushLocked(ctx context.Context, operation string) error {
	records := make([]models.CommandRecord, 0, len(r.customs))

	for _, cmd := range r.customs {
		rec, err := command.ToRecord(cmd)
		if err != nil {
			r.logger.Error("Команда не может быть сохранена", "trigger", cmd.Label(), "error", err)
			continue
		}

		records = append(records, rec)
	}

	if err := r.repo.Save(ctx, records); err != nil {
		metrics.RecordPersistenceFailure(operation)
		r.logger.Error("Ошибка сохранения команд", "operation", operation, "error", err)

		return &domainerrors.ErrPersistenceFailure{Operation: operation, Cause: err}
	}

	return nil
}
