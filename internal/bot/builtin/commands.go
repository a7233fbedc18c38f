package builtin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Matthew11K/TwitchBot/internal/bot/command"
	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
)

func (s *Set) add(ctx context.Context, inv *command.Invocation) error {
	user := inv.Username()

	parts := splitArgs(inv.Message.Text, 3)
	if len(parts) != 3 {
		return inv.Reply(ctx, fmt.Sprintf("@%s Синтаксис: !add <триггер> <сообщение>", user))
	}

	word, response := parts[1], parts[2]

	if command.IsControlDirective(response) {
		return inv.Reply(ctx, command.HijackWarning(user))
	}

	cmd := command.NewEcho(command.StartsWithWord(word), response)
	cmd.Cooldown = s.defaultCooldown

	inv.Defer(func(ctx context.Context) {
		err := s.registry.Add(ctx, cmd)

		var clash *domainerrors.ErrTriggerClash

		switch {
		case errors.As(err, &clash):
			s.reply(ctx, inv, fmt.Sprintf("@%s Эта команда конфликтует с другой командой!", user))
			return
		case err != nil:
			s.logger.Error("Команда добавлена, но не сохранена", "trigger", word, "error", err)
		}

		s.reply(ctx, inv, fmt.Sprintf("@%s Команда %s добавлена!", user, word))
	})

	return nil
}

func (s *Set) edit(ctx context.Context, inv *command.Invocation) error {
	user := inv.Username()

	parts := splitArgs(inv.Message.Text, 3)
	if len(parts) != 3 {
		return inv.Reply(ctx, fmt.Sprintf("@%s Синтаксис: !edit <триггер> <новое_сообщение>", user))
	}

	word, response := parts[1], parts[2]

	if command.IsControlDirective(response) {
		return inv.Reply(ctx, command.HijackWarning(user))
	}

	inv.Defer(func(ctx context.Context) {
		err := s.registry.Update(ctx, word, func(cmd *command.Command) {
			cmd.Response = response
		})
		if s.replyUnknown(ctx, inv, word, err) {
			return
		}

		s.reply(ctx, inv, fmt.Sprintf("@%s Команда \"%s\" успешно изменена.", user, word))
	})

	return nil
}

func (s *Set) remove(ctx context.Context, inv *command.Invocation) error {
	user := inv.Username()

	parts := splitArgs(inv.Message.Text, 2)
	if len(parts) != 2 {
		return inv.Reply(ctx, fmt.Sprintf("@%s Синтаксис: !remove <триггер>", user))
	}

	word := parts[1]

	inv.Defer(func(ctx context.Context) {
		_, err := s.registry.Remove(ctx, word)
		if s.replyUnknown(ctx, inv, word, err) {
			return
		}

		s.reply(ctx, inv, fmt.Sprintf("@%s Команда %s удалена!", user, word))
	})

	return nil
}

func (s *Set) list(_ context.Context, inv *command.Invocation) error {
	user := inv.Username()
	caller := inv.Message.Caller()

	inv.Defer(func(ctx context.Context) {
		labels := s.registry.ListVisibleTo(ctx, caller)
		s.reply(ctx, inv, fmt.Sprintf("@%s Доступные команды: %s", user, strings.Join(labels, " ")))
	})

	return nil
}

func (s *Set) interval(ctx context.Context, inv *command.Invocation) error {
	minutes := int(s.timers.Current().Interval / time.Minute)

	return inv.Reply(ctx, fmt.Sprintf("@%s Интервал таймерных команд: %d мин.", inv.Username(), minutes))
}

func (s *Set) setInterval(ctx context.Context, inv *command.Invocation) error {
	user := inv.Username()

	parts := splitArgs(inv.Message.Text, 2)
	if len(parts) != 2 {
		return inv.Reply(ctx, fmt.Sprintf("@%s Синтаксис: !setinterval <минуты>", user))
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes <= 0 {
		return inv.Reply(ctx, fmt.Sprintf("@%s \"%s\" не является положительным целым числом!", user, parts[1]))
	}

	if err := s.timers.SetInterval(time.Duration(minutes) * time.Minute); err != nil {
		s.logger.Error("Интервал изменён, но не сохранён", "error", err)
	}

	return inv.Reply(ctx, fmt.Sprintf("@%s Интервал таймерных команд установлен: %d мин.", user, minutes))
}

func (s *Set) toggleTimer(enabled bool) command.Handler {
	name, done := "!disabletimer", "больше не таймерная"
	if enabled {
		name, done = "!enabletimer", "теперь таймерная"
	}

	return func(ctx context.Context, inv *command.Invocation) error {
		user := inv.Username()

		parts := splitArgs(inv.Message.Text, 2)
		if len(parts) != 2 {
			return inv.Reply(ctx, fmt.Sprintf("@%s Синтаксис: %s <триггер>", user, name))
		}

		word := parts[1]

		inv.Defer(func(ctx context.Context) {
			err := s.registry.Update(ctx, word, func(cmd *command.Command) {
				cmd.IsTimer = enabled
			})
			if s.replyUnknown(ctx, inv, word, err) {
				return
			}

			s.reply(ctx, inv, fmt.Sprintf("@%s Команда %s %s.", user, word, done))
		})

		return nil
	}
}

func (s *Set) setUserLevel(ctx context.Context, inv *command.Invocation) error {
	user := inv.Username()

	parts := splitArgs(inv.Message.Text, 3)
	if len(parts) != 3 {
		return inv.Reply(ctx, fmt.Sprintf("@%s Синтаксис: !setUserLevel <триггер> <pleb|mod|broadcaster|modOrBroadcaster>", user))
	}

	word, level := parts[1], parts[2]

	auth, err := command.ParseAuthenticator(level)
	if err != nil {
		return inv.Reply(ctx, fmt.Sprintf("@%s \"%s\" не является уровнем доступа. Допустимо: pleb, mod, broadcaster, modOrBroadcaster.", user, level))
	}

	inv.Defer(func(ctx context.Context) {
		err := s.registry.Update(ctx, word, func(cmd *command.Command) {
			cmd.Authenticator = auth
		})
		if s.replyUnknown(ctx, inv, word, err) {
			return
		}

		s.reply(ctx, inv, fmt.Sprintf("@%s Уровень доступа команды \"%s\" изменён на \"%s\"", user, word, level))
	})

	return nil
}

func (s *Set) setTimersEnabled(enabled bool) command.Handler {
	state := "выключены"
	if enabled {
		state = "включены"
	}

	return func(ctx context.Context, inv *command.Invocation) error {
		if err := s.timers.SetEnabled(enabled); err != nil {
			s.logger.Error("Настройка таймеров изменена, но не сохранена", "error", err)
		}

		return inv.Reply(ctx, fmt.Sprintf("@%s Таймерные команды %s.", inv.Username(), state))
	}
}

func (s *Set) myPoints(ctx context.Context, inv *command.Invocation) error {
	balance, err := s.points.PointsOf(ctx, inv.Message.UserID)
	if err != nil {
		return fmt.Errorf("ошибка получения очков: %w", err)
	}

	return inv.Reply(ctx, fmt.Sprintf("@%s У тебя %d очков.", inv.Username(), balance))
}

// replyUnknown отвечает пользователю, если триггер не найден. Возвращает true,
// если дальнейший ответ не нужен.
func (s *Set) replyUnknown(ctx context.Context, inv *command.Invocation, word string, err error) bool {
	if err == nil {
		return false
	}

	var unknown *domainerrors.ErrUnknownTrigger
	if errors.As(err, &unknown) {
		s.reply(ctx, inv, fmt.Sprintf("@%s Неизвестный триггер: \"%s\"", inv.Username(), word))
		return true
	}

	s.logger.Error("Изменение команды применено, но не сохранено", "trigger", word, "error", err)

	return false
}

func (s *Set) reply(ctx context.Context, inv *command.Invocation, text string) {
	if err := inv.Reply(ctx, text); err != nil {
		s.logger.Error("Ошибка отправки ответа", "error", err)
	}
}
