package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Matthew11K/TwitchBot/internal/bot/command"
	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

const (
	messageTypeCommand = "command"
	messageTypeMessage = "message"
)

type Dispatcher interface {
	Dispatch(ctx context.Context, msg *models.ChatMessage, sender command.Sender) (bool, error)
}

type FirstMessageHandler interface {
	HandleFirstMessage(ctx context.Context, userID string) error
}

type Option func(*BotService)

// WithFirstMessageHandler подключает начисление очков за первое сообщение.
func WithFirstMessageHandler(h FirstMessageHandler) Option {
	return func(s *BotService) {
		s.firstMessage = h
	}
}

type BotService struct {
	dispatcher   Dispatcher
	sender       command.Sender
	firstMessage FirstMessageHandler
	logger       *slog.Logger
}

func NewBotService(dispatcher Dispatcher, sender command.Sender, logger *slog.Logger, opts ...Option) *BotService {
	s := &BotService{
		dispatcher: dispatcher,
		sender:     sender,
		logger:     logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// HandleChat обрабатывает входящее сообщение чата. Отказ в доступе и
// перезарядка являются штатными исходы и ошибкой не считаются.
func (s *BotService) HandleChat(ctx context.Context, msg *models.ChatMessage) error {
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		return &domainerrors.ErrMissingTextInEvent{}
	}

	matched, err := s.dispatcher.Dispatch(ctx, msg, s.sender)

	if matched {
		metrics.RecordUserMessage(messageTypeCommand)
	} else {
		metrics.RecordUserMessage(messageTypeMessage)
	}

	if s.firstMessage != nil && msg.UserID != "" {
		if pointsErr := s.firstMessage.HandleFirstMessage(ctx, msg.UserID); pointsErr != nil {
			s.logger.Error("Ошибка начисления очков за первое сообщение",
				"error", pointsErr,
				"userID", msg.UserID,
			)
		}
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, &domainerrors.ErrAuthorizationDenied{}):
		s.logger.Info("Отказано в доступе к команде",
			"user", msg.Username,
			"text", msg.Text,
		)

		return nil
	case errors.Is(err, &domainerrors.ErrCooldownActive{}):
		s.logger.Debug("Команда на перезарядке",
			"user", msg.Username,
			"error", err,
		)

		return nil
	case errors.Is(err, &domainerrors.ErrPersistenceFailure{}):
		s.logger.Error("Состояние команд не сохранено", "error", err)

		return nil
	default:
		s.logger.Error("Ошибка выполнения команды",
			"error", err,
			"text", msg.Text,
		)

		return err
	}
}
