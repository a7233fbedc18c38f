package command

import (
	"context"

	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

// Sender отправляет сообщение в чат.
type Sender interface {
	SendMessage(ctx context.Context, text string) error
}

// Invocation описывает контекст одного вызова команды. Message равен nil,
// если команду запустил планировщик.
type Invocation struct {
	Message *models.ChatMessage

	sender   Sender
	deferred []func(ctx context.Context)
}

func NewInvocation(message *models.ChatMessage, sender Sender) *Invocation {
	return &Invocation{
		Message: message,
		sender:  sender,
	}
}

func (i *Invocation) Reply(ctx context.Context, text string) error {
	if text == "" || i.sender == nil {
		return nil
	}

	return i.sender.SendMessage(ctx, text)
}

func (i *Invocation) Username() string {
	if i.Message == nil {
		return ""
	}

	return i.Message.Username
}

// Defer откладывает fn до освобождения блокировки реестра.
// Обработчики не должны вызывать реестр напрямую.
func (i *Invocation) Defer(fn func(ctx context.Context)) {
	i.deferred = append(i.deferred, fn)
}

func (i *Invocation) TakeDeferred() []func(ctx context.Context) {
	deferred := i.deferred
	i.deferred = nil

	return deferred
}
