package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Varuno8/littlewisewebsite/internal/model"

	"github.com/google/uuid"
)

var ErrInvalidRequest = errors.New("invalid request")

// CheckoutResult — итог оформления заказа
// CartCleared=false при nil-ошибке означает деградированный успех:
// заказ принят и опубликован, но корзина ещё не очищена
type CheckoutResult struct {
	OrderUID    string
	Total       int64
	CartCleared bool
}

// CheckoutService оркестрирует оформление заказа:
// валидация -> соединение -> расчёт -> публикация -> очистка корзины
type CheckoutService struct {
	db        ConnAcquirer
	pricing   Pricer
	publisher EventPublisher
	carts     CartMutator
	log       *slog.Logger
}

// NewCheckoutService создаёт новый экземпляр сервиса оформления заказов
// он принимает интерфейсы, а не конкретные типы, для гибкости и тестируемости
func NewCheckoutService(db ConnAcquirer, pricing Pricer, publisher EventPublisher, carts CartMutator, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		db:        db,
		pricing:   pricing,
		publisher: publisher,
		carts:     carts,
		log:       log,
	}
}

// SubmitOrder проводит один запрос на оформление заказа через весь конвейер
//
// порядок шагов — ключевой инвариант корректности: событие публикуется
// строго до очистки корзины. Опубликованный, но не очищенный заказ допустим
// (downstream переживёт дубликат при повторной отправке, доставка at-least-once),
// а очищенная без публикации корзина — молча потерянный заказ
func (s *CheckoutService) SubmitOrder(ctx context.Context, req model.CheckoutRequest) (CheckoutResult, error) {
	const op = "service.CheckoutService.SubmitOrder"
	log := s.log.With(slog.String("op", op), slog.String("user_id", req.UserID))

	// 1. Валидация: до её прохождения никаких побочных эффектов
	if err := req.Validate(); err != nil {
		return CheckoutResult{}, fmt.Errorf("%s: %w: %v", op, ErrInvalidRequest, err)
	}

	// 2. Берём соединение до обращений к каталогу:
	// недоступное хранилище проваливает запрос, ничего не изменив
	if _, err := s.db.Acquire(ctx); err != nil {
		log.Error("failed to acquire database connection", slog.String("error", err.Error()))
		return CheckoutResult{}, fmt.Errorf("%s: %w", op, err)
	}

	// 3. Расчёт стоимости по текущим ценам каталога
	totals, err := s.pricing.ComputeTotal(ctx, req.Items)
	if err != nil {
		log.Error("failed to compute order total", slog.String("error", err.Error()))
		return CheckoutResult{}, fmt.Errorf("%s: %w", op, err)
	}

	order := model.PricedOrder{
		OrderUID:  uuid.NewString(),
		UserID:    req.UserID,
		Address:   req.Address,
		Items:     req.Items,
		Subtotal:  totals.Subtotal,
		Tax:       totals.Tax,
		Total:     totals.Total,
		CreatedAt: time.Now().UTC(),
	}
	log = log.With(slog.String("order_uid", order.OrderUID))

	// 4. Публикуем событие; при неудаче корзина остаётся нетронутой,
	// покупатель может безопасно повторить запрос
	if err := s.publisher.Publish(ctx, model.NewOrderCreatedEvent(order)); err != nil {
		log.Error("failed to publish order event", slog.String("error", err.Error()))
		return CheckoutResult{}, fmt.Errorf("%s: %w", op, err)
	}

	// 5. Очистка корзины — только после успешной публикации
	if err := s.carts.ClearCart(ctx, req.UserID); err != nil {
		// событие уже долговечно опубликовано, заказ принят;
		// очистка идемпотентна и может быть повторена отдельно,
		// повторная публикация события здесь недопустима
		log.Warn("order published but cart clear failed", slog.String("error", err.Error()))
		return CheckoutResult{OrderUID: order.OrderUID, Total: order.Total, CartCleared: false}, nil
	}

	log.Info("order submitted", slog.Int64("total", order.Total))
	return CheckoutResult{OrderUID: order.OrderUID, Total: order.Total, CartCleared: true}, nil
}
