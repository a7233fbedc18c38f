package twitch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gempir/go-twitch-irc/v4"

	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

type ChatHandler interface {
	HandleChat(ctx context.Context, msg *models.ChatMessage) error
}

// Client подключается к IRC-чату одного канала, передаёт сообщения
// обработчику и отправляет ответы бота.
type Client struct {
	irc     *twitch.Client
	channel string
	logger  *slog.Logger
}

func NewClient(username, oauthToken, channel string, logger *slog.Logger) *Client {
	token := oauthToken
	if !strings.HasPrefix(token, "oauth:") {
		token = "oauth:" + token
	}

	return &Client{
		irc:     twitch.NewClient(username, token),
		channel: strings.ToLower(strings.TrimPrefix(channel, "#")),
		logger:  logger,
	}
}

func (c *Client) SendMessage(_ context.Context, text string) error {
	if text == "" {
		return nil
	}

	c.irc.Say(c.channel, text)

	return nil
}

// Run подключается к чату, передаёт сообщения handler и блокируется до
// отмены ctx или ошибки соединения.
func (c *Client) Run(ctx context.Context, handler ChatHandler) error {
	c.irc.OnPrivateMessage(func(m twitch.PrivateMessage) {
		if err := handler.HandleChat(ctx, ToChatMessage(m)); err != nil {
			c.logger.Error("Ошибка обработки сообщения чата",
				"error", err,
				"user", m.User.Name,
			)
		}
	})

	c.irc.OnConnect(func() {
		c.logger.Info("Подключено к чату", "channel", c.channel)
		c.irc.Join(c.channel)
	})

	c.irc.OnReconnectMessage(func(message twitch.ReconnectMessage) {
		c.logger.Warn("Сервер запросил переподключение", "message", message.Raw)
	})

	c.irc.OnNoticeMessage(func(msg twitch.NoticeMessage) {
		c.logger.Warn("Уведомление чата", "msgID", msg.MsgID, "message", msg.Message)
	})

	errCh := make(chan error, 1)

	go func() {
		errCh <- c.irc.Connect()
	}()

	select {
	case <-ctx.Done():
		_ = c.irc.Disconnect()
		<-errCh

		return nil
	case err := <-errCh:
		return fmt.Errorf("ошибка подключения к чату: %w", err)
	}
}

// ToChatMessage переводит IRC-сообщение в транспортно-независимое.
func ToChatMessage(m twitch.PrivateMessage) *models.ChatMessage {
	sentAt := m.Time
	if sentAt.IsZero() {
		sentAt = time.Now().UTC()
	}

	username := m.User.DisplayName
	if username == "" {
		username = m.User.Name
	}

	return &models.ChatMessage{
		Text:          m.Message,
		UserID:        m.User.ID,
		Username:      username,
		IsModerator:   m.User.Badges["moderator"] > 0,
		IsBroadcaster: m.User.Badges["broadcaster"] > 0,
		SentAt:        sentAt.UTC(),
	}
}
