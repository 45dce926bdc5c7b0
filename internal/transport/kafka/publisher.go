package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Varuno8/littlewisewebsite/internal/model"

	"github.com/segmentio/kafka-go"
)

var ErrPublishFailed = errors.New("event publish failed")

const defaultWriteTimeout = 5 * time.Second

// Publisher отправляет события заказов в долговечную шину
// шина обеспечивает at-least-once доставку downstream-консьюмерам
// (оплата, доставка, уведомления), сервис только передаёт событие
type Publisher struct {
	writer  *kafka.Writer
	timeout time.Duration
	log     *slog.Logger
}

// NewPublisher создаёт новый экземпляр издателя событий
func NewPublisher(brokers []string, topic string, timeout time.Duration, log *slog.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		// событие считается переданным только после подтверждения всех реплик
		RequiredAcks: kafka.RequireAll,
	}

	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	return &Publisher{
		writer:  writer,
		timeout: timeout,
		log:     log,
	}
}

// Publish передаёт событие о созданном заказе в шину
// отказ или таймаут шины возвращаются как ErrPublishFailed:
// воркфлоу обязан прервать оформление до очистки корзины
func (p *Publisher) Publish(ctx context.Context, event model.OrderCreatedEvent) error {
	const op = "transport.kafka.Publisher.Publish"

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: failed to marshal event: %w", op, err)
	}

	// ограничиваем ожидание подтверждения, зависшая шина — это отказ публикации
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		// ключ — идентификатор заказа, чтобы ретраи попадали в ту же партицию
		Key:   []byte(event.OrderUID),
		Value: payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(model.EventOrderCreated)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrPublishFailed, err)
	}

	p.log.Info("order event published",
		slog.String("order_uid", event.OrderUID),
		slog.String("event_id", event.EventID),
	)
	return nil
}

// Close закрывает писателя при завершении процесса
func (p *Publisher) Close() error {
	return p.writer.Close()
}
