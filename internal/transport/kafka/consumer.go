package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/Varuno8/littlewisewebsite/internal/model"

	"github.com/segmentio/kafka-go"
)

// UserEventApplier — это интерфейс, который абстрагирует консьюмер
// от конкретной реализации сервисного слоя
type UserEventApplier interface {
	ApplyUserEvent(ctx context.Context, event model.UserEvent) error
}

// Consumer читает события жизненного цикла пользователей из шины
// identity-провайдера и синхронизирует локальные записи покупателей
type Consumer struct {
	reader  *kafka.Reader
	service UserEventApplier
	log     *slog.Logger
}

// NewConsumer создает новый экземпляр консьюмера
func NewConsumer(brokers []string, topic, groupID string, service UserEventApplier, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
	})

	return &Consumer{
		reader:  reader,
		service: service,
		log:     log,
	}
}

// Run запускает цикл чтения сообщений из Kafka
// эта функция блокирующая, поэтому она запускается в отдельной горутине
func (c *Consumer) Run(ctx context.Context) {
	log := c.log.With(slog.String("component", "kafka_consumer"))
	log.Info("identity consumer started")

	for {
		// проверка на отмену контекста
		select {
		case <-ctx.Done():
			log.Info("context cancelled, stopping consumer")
			return
		default:
			// FetchMessage блокирует до тех пор, пока не придет новое сообщение или не возникнет ошибка
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				// если контекст был отменен во время ожидания, это нормальное завершение
				if errors.Is(err, context.Canceled) {
					return
				}
				// если ридер был закрыт, тоже выходим
				if errors.Is(err, io.EOF) {
					log.Info("kafka reader closed")
					return
				}
				log.Error("failed to fetch message", slog.String("error", err.Error()))
				continue // пробуем снова
			}

			log.Info("received message", slog.String("topic", msg.Topic), slog.Int("partition", msg.Partition), slog.Int64("offset", msg.Offset))

			// 1. Пытаемся обработать
			if err := c.handleMessage(ctx, msg); err != nil {
				log.Error("failed to handle message", slog.String("error", err.Error()))
				// сообщение НЕ подтверждаем — пусть Kafka отдаст его снова
				continue
			}

			// подтверждаем получение сообщения ПОСЛЕ успешной обработки,
			// upsert идемпотентен, так что повторная доставка безопасна
			// 2. Всё прошло — фиксируем offset
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				log.Error("failed to commit message", slog.String("error", err.Error()))
			}
		}
	}
}

// handleMessage парсит и применяет одно событие
func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) error {
	var event model.UserEvent

	// распарсим JSON
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// сообщение невалидно. Логируем и пропускаем —
		// перечитывать его бессмысленно
		c.log.Warn("failed to unmarshal message, skipping", slog.String("error", err.Error()))
		return nil
	}

	// валидация данных
	if err := event.Validate(); err != nil {
		// данные не прошли валидацию (например, отсутствуют обязательные поля)
		// логируем и пропускаем, повторная доставка не поможет
		c.log.Warn("message validation failed, skipping",
			slog.String("error", err.Error()),
			slog.String("user_id", event.User.ID),
		)
		return nil
	}

	// передаём событие в сервисный слой для применения к хранилищу
	if err := c.service.ApplyUserEvent(ctx, event); err != nil {
		// ошибка хранилища может быть временной,
		// возвращаем её, чтобы сообщение пришло повторно
		c.log.Error("failed to apply user event",
			slog.String("error", err.Error()),
			slog.String("user_id", event.User.ID),
		)
		return err
	}

	c.log.Info("user event processed", slog.String("user_id", event.User.ID), slog.String("type", event.Type))
	return nil
}

// graceful shutdown консьюмера
func (c *Consumer) Close() error {
	c.log.Info("closing kafka consumer")
	return c.reader.Close()
}
