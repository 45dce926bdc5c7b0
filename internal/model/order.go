package model

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// LineItem представляет одну позицию корзины в запросе на оформление заказа
type LineItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest — входящий запрос на оформление заказа
// теги validate используются для проверки корректности данных при получении
// UserID не приходит в теле запроса, его подставляет транспортный слой
// из доверенного заголовка identity-провайдера
type CheckoutRequest struct {
	UserID  string     `json:"-"`
	Address Address    `json:"address" validate:"required"`
	Items   []LineItem `json:"items" validate:"required,gt=0,dive"`
}

// PricedOrder — заказ после расчёта стоимости
// Subtotal, Tax и Total хранятся в минимальных единицах валюты (целые числа),
// чтобы избежать ошибок округления с плавающей точкой
type PricedOrder struct {
	OrderUID  string
	UserID    string
	Address   Address
	Items     []LineItem
	Subtotal  int64
	Tax       int64
	Total     int64
	CreatedAt time.Time
}

// Totals — результат расчёта стоимости заказа
type Totals struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

// EventOrderCreated — имя события, под которым заказ уходит в шину
const EventOrderCreated = "order.created"

// OrderCreatedEvent — неизменяемая wire-форма заказа для шины событий
// дальнейшая обработка (оплата, доставка, уведомления) происходит
// в downstream-консьюмерах и не входит в этот сервис
type OrderCreatedEvent struct {
	EventID   string     `json:"event_id"`
	OrderUID  string     `json:"order_uid"`
	UserID    string     `json:"user_id"`
	Address   Address    `json:"address"`
	Items     []LineItem `json:"items"`
	Subtotal  int64      `json:"subtotal"`
	Tax       int64      `json:"tax"`
	Total     int64      `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewOrderCreatedEvent собирает wire-форму заказа для шины событий
// после конструирования событие не изменяется
func NewOrderCreatedEvent(order PricedOrder) OrderCreatedEvent {
	return OrderCreatedEvent{
		EventID:   uuid.NewString(),
		OrderUID:  order.OrderUID,
		UserID:    order.UserID,
		Address:   order.Address,
		Items:     order.Items,
		Subtotal:  order.Subtotal,
		Tax:       order.Tax,
		Total:     order.Total,
		CreatedAt: order.CreatedAt,
	}
}

var validate = validator.New()

// Validate проверяет корректность запроса на основе тегов validate
func (r *CheckoutRequest) Validate() error {
	return validate.Struct(r)
}
