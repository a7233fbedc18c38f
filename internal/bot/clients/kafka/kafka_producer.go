package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// OutgoingMessage описывает ответ бота, публикуемый в топик исходящих сообщений.
type OutgoingMessage struct {
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

type ProducerOption func(*Producer)

func WithWriter(w MessageWriter) ProducerOption {
	return func(p *Producer) {
		p.writer = w
	}
}

type Producer struct {
	writer MessageWriter
	topic  string
	now    func() time.Time
	logger *slog.Logger
}

func NewProducer(brokers []string, topic string, logger *slog.Logger, opts ...ProducerOption) *Producer {
	p := &Producer{
		topic:  topic,
		now:    time.Now,
		logger: logger,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.writer == nil {
		p.writer = newWriter(brokers, topic, logger)
	}

	return p
}

func (p *Producer) SendMessage(ctx context.Context, text string) error {
	payload, err := json.Marshal(OutgoingMessage{Text: text, SentAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("ошибка сериализации исходящего сообщения: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: payload}); err != nil {
		return fmt.Errorf("ошибка отправки сообщения в топик %s: %w", p.topic, err)
	}

	p.logger.Debug("Сообщение отправлено в Kafka", "topic", p.topic)

	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
