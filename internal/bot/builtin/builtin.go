package builtin

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Matthew11K/TwitchBot/internal/bot/command"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

const (
	listCooldown   = 30 * time.Second
	pointsCooldown = 10 * time.Second
)

// Registry описывает операции реестра, которые встроенные команды выполняют
// отложенно, после освобождения его блокировки.
type Registry interface {
	Add(ctx context.Context, cmd *command.Command) error
	Remove(ctx context.Context, word string) (*command.Command, error)
	Update(ctx context.Context, word string, mutate func(cmd *command.Command)) error
	ListVisibleTo(ctx context.Context, caller models.Caller) []string
}

type TimerSettings interface {
	Current() models.TimerSettings
	SetInterval(interval time.Duration) error
	SetEnabled(enabled bool) error
}

type Option func(*Set)

// WithPoints включает команду !points.
func WithPoints(points command.PointsReader) Option {
	return func(s *Set) {
		s.points = points
	}
}

// Set собирает встроенные команды бота.
type Set struct {
	registry        Registry
	timers          TimerSettings
	points          command.PointsReader
	defaultCooldown time.Duration
	logger          *slog.Logger
}

func New(reg Registry, timers TimerSettings, defaultCooldown time.Duration, logger *slog.Logger, opts ...Option) *Set {
	s := &Set{
		registry:        reg,
		timers:          timers,
		defaultCooldown: defaultCooldown,
		logger:          logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Set) Commands() []*command.Command {
	cmds := []*command.Command{
		native("!add", command.ModOrBroadcaster, 0, s.add),
		native("!edit", command.ModOrBroadcaster, 0, s.edit),
		native("!remove", command.ModOrBroadcaster, 0, s.remove),
		native("!list", command.Pleb, listCooldown, s.list),
		native("!interval", command.Broadcaster, 0, s.interval),
		native("!setinterval", command.Broadcaster, 0, s.setInterval),
		native("!enabletimer", command.Broadcaster, 0, s.toggleTimer(true)),
		native("!disabletimer", command.Broadcaster, 0, s.toggleTimer(false)),
		native("!setUserLevel", command.ModOrBroadcaster, 0, s.setUserLevel),
		native("!enable", command.Broadcaster, 0, s.setTimersEnabled(true)),
		native("!disable", command.Broadcaster, 0, s.setTimersEnabled(false)),
	}

	if s.points != nil {
		cmds = append(cmds, native("!points", command.Pleb, pointsCooldown, s.myPoints))
	}

	return cmds
}

func native(word string, auth command.Authenticator, cooldown time.Duration, handler command.Handler) *command.Command {
	cmd := command.NewNative(command.StartsWithWord(word), handler)
	cmd.Authenticator = auth
	cmd.Cooldown = cooldown

	return cmd
}

// splitArgs делит текст на не более чем n частей по пробелам; последняя
// часть сохраняет внутренние пробелы.
func splitArgs(text string, n int) []string {
	var parts []string

	rest := strings.TrimSpace(text)

	for len(parts) < n-1 && rest != "" {
		idx := strings.IndexFunc(rest, isSpace)
		if idx < 0 {
			break
		}

		parts = append(parts, rest[:idx])
		rest = strings.TrimLeftFunc(rest[idx:], isSpace)
	}

	if rest != "" {
		parts = append(parts, rest)
	}

	return parts
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
