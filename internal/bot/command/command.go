package command

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

const denialFormat = "@%s Ах, ах, ах! Ты не сказал волшебное слово! Ах, ах, ах!"

type Handler func(ctx context.Context, inv *Invocation) error

// Command связывает триггер, проверку прав, перезарядку и действие.
// Команда без Handler отвечает шаблоном Response.
type Command struct {
	Trigger              Trigger
	Authenticator        Authenticator
	Cooldown             time.Duration
	ModOverridesCooldown bool
	IsTimer              bool
	LastInvoked          time.Time
	Response             string
	Handler              Handler
}

func NewEcho(trigger Trigger, response string) *Command {
	return &Command{
		Trigger:              trigger,
		Authenticator:        Pleb,
		ModOverridesCooldown: true,
		Response:             response,
	}
}

func NewNative(trigger Trigger, handler Handler) *Command {
	return &Command{
		Trigger:              trigger,
		Authenticator:        Pleb,
		ModOverridesCooldown: true,
		Handler:              handler,
	}
}

func (c *Command) IsEcho() bool {
	return c.Handler == nil
}

func (c *Command) Label() string {
	label, _ := c.Trigger.ListLabel()
	return label
}

// CooldownRemaining возвращает 0, если перезарядка не мешает вызову.
func (c *Command) CooldownRemaining(now time.Time) time.Duration {
	if c.Cooldown <= 0 || c.LastInvoked.IsZero() {
		return 0
	}

	readyAt := c.LastInvoked.Add(c.Cooldown)
	if !now.Before(readyAt) {
		return 0
	}

	return readyAt.Sub(now)
}

func (c *Command) cooldownOverridden(caller models.Caller) bool {
	return caller.IsBroadcaster || (caller.IsModerator && c.ModOverridesCooldown)
}

// Invoke проходит проверку прав и перезарядки для вызова из чата.
// Вызов планировщиком (inv.Message == nil) выполняется без проверок.
func (c *Command) Invoke(ctx context.Context, inv *Invocation, points PointsReader, now time.Time) error {
	if inv.Message == nil {
		return c.fire(ctx, inv, now)
	}

	caller := inv.Message.Caller()

	if !c.Authenticator.Authorize(ctx, caller, points) {
		denied := &domainerrors.ErrAuthorizationDenied{Trigger: c.Label(), UserID: caller.UserID}

		return multierr.Append(denied, inv.Reply(ctx, fmt.Sprintf(denialFormat, inv.Message.Username)))
	}

	if !c.cooldownOverridden(caller) {
		if remaining := c.CooldownRemaining(now); remaining > 0 {
			return &domainerrors.ErrCooldownActive{Trigger: c.Label(), Remaining: remaining.Round(time.Second).String()}
		}
	}

	return c.fire(ctx, inv, now)
}

func (c *Command) fire(ctx context.Context, inv *Invocation, now time.Time) error {
	if now.After(c.LastInvoked) {
		c.LastInvoked = now
	}

	if c.Handler != nil {
		return c.Handler(ctx, inv)
	}

	return inv.Reply(ctx, Expand(c.Response, inv.Message))
}
