package service

import (
	"context"

	"github.com/Varuno8/littlewisewebsite/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnAcquirer определяет контракт ленивого кэша подключения к хранилищу
// компоненты одалживают соединение на время вызова и никогда не хранят его
type ConnAcquirer interface {
	Acquire(ctx context.Context) (*pgxpool.Pool, error)
}

// CatalogReader определяет контракт чтения текущих цен каталога
type CatalogReader interface {
	PriceOf(ctx context.Context, productID string) (model.ProductPrice, error)
}

// Pricer определяет контракт расчёта стоимости заказа
type Pricer interface {
	ComputeTotal(ctx context.Context, items []model.LineItem) (model.Totals, error)
}

// EventPublisher определяет контракт передачи события в долговечную шину
// шина гарантирует at-least-once доставку downstream-консьюмерам
type EventPublisher interface {
	Publish(ctx context.Context, event model.OrderCreatedEvent) error
}

// CartMutator определяет контракт очистки корзины покупателя
type CartMutator interface {
	ClearCart(ctx context.Context, userID string) error
}

// UserStore определяет контракт хранилища покупателей
type UserStore interface {
	GetCart(ctx context.Context, userID string) (model.CartItems, error)
	GetAddresses(ctx context.Context, userID string) ([]model.Address, error)
	UpsertUser(ctx context.Context, user model.User) error
	DeleteUser(ctx context.Context, userID string) error
}
