package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/multierr"

	"github.com/Matthew11K/TwitchBot/internal/common/metrics"
	boterrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

const (
	statusProcessed = "processed"
	statusDLQ       = "dlq"
	statusFailed    = "failed"
)

type ChatHandler interface {
	HandleChat(ctx context.Context, msg *models.ChatMessage) error
}

// MessageWriter описывает часть kafka.Writer, которой пользуются консьюмер и продюсер.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type ConsumerOption func(*Consumer)

func WithDLQWriter(w MessageWriter) ConsumerOption {
	return func(c *Consumer) {
		c.dlqWriter = w
	}
}

type Consumer struct {
	reader    *kafka.Reader
	dlqWriter MessageWriter
	logger    *slog.Logger
	chatTopic string
	dlqTopic  string
}

func NewConsumer(
	brokers []string,
	groupID string,
	chatTopic string,
	dlqTopic string,
	logger *slog.Logger,
	opts ...ConsumerOption,
) *Consumer {
	c := &Consumer{
		logger:    logger,
		chatTopic: chatTopic,
		dlqTopic:  dlqTopic,
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(brokers) > 0 {
		c.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			GroupID:        groupID,
			Topic:          chatTopic,
			MinBytes:       1,
			MaxBytes:       10e6,
			CommitInterval: 1 * time.Second,
			Logger:         kafka.LoggerFunc(logger.Debug),
			ErrorLogger:    kafka.LoggerFunc(logger.Error),
		})
	}

	if c.dlqWriter == nil {
		c.dlqWriter = newWriter(brokers, dlqTopic, logger)
	}

	return c
}

func newWriter(brokers []string, topic string, logger *slog.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}
}

// Start читает события чата и передаёт их handler, пока не отменён ctx.
// Блокирует вызывающего.
func (c *Consumer) Start(ctx context.Context, handler ChatHandler) {
	c.logger.Info("Запуск потребления сообщений чата из Kafka",
		"topic", c.chatTopic,
	)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Остановка потребления сообщений из Kafka")
				return
			}

			c.logger.Error("Ошибка при чтении сообщения из Kafka",
				"error", err,
			)

			continue
		}

		c.logger.Debug("Получено сообщение из Kafka",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)

		if err := c.ProcessMessage(ctx, handler, msg.Value); err != nil {
			c.logger.Error("Ошибка при обработке сообщения",
				"error", err,
			)
		}
	}
}

// ProcessMessage разбирает событие чата и передаёт его обработчику.
// Неразборчивые события уходят в DLQ.
func (c *Consumer) ProcessMessage(ctx context.Context, handler ChatHandler, value []byte) error {
	var chatMessage models.ChatMessage

	if err := json.Unmarshal(value, &chatMessage); err != nil {
		c.toDLQ(ctx, value, fmt.Sprintf("Ошибка десериализации: %s", err))

		return fmt.Errorf("ошибка при десериализации сообщения: %w", err)
	}

	if strings.TrimSpace(chatMessage.Text) == "" {
		newErr := &boterrors.ErrMissingTextInEvent{}

		c.toDLQ(ctx, value, newErr.Error())

		return newErr
	}

	if err := handler.HandleChat(ctx, &chatMessage); err != nil {
		metrics.RecordChatEvent(statusFailed)

		return fmt.Errorf("ошибка при обработке сообщения чата: %w", err)
	}

	metrics.RecordChatEvent(statusProcessed)

	return nil
}

func (c *Consumer) toDLQ(ctx context.Context, message []byte, errMsg string) {
	metrics.RecordChatEvent(statusDLQ)

	if err := c.sendToDLQ(ctx, message, errMsg); err != nil {
		c.logger.Error("Ошибка при отправке сообщения в DLQ",
			"error", err,
		)
	}
}

func (c *Consumer) sendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	c.logger.Info("Отправка сообщения в DLQ",
		"error", errMsg,
		"topic", c.dlqTopic,
	)

	err := c.dlqWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("ошибка при отправке сообщения в DLQ: %w", err)
	}

	return nil
}

func (c *Consumer) Close() error {
	var readerErr error

	if c.reader != nil {
		readerErr = c.reader.Close()
	}

	return multierr.Append(readerErr, c.dlqWriter.Close())
}
