package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/Varuno8/littlewisewebsite/internal/model"
	"github.com/Varuno8/littlewisewebsite/internal/repository/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

type mockDB struct {
	err      error
	acquires int
}

func (m *mockDB) Acquire(ctx context.Context) (*pgxpool.Pool, error) {
	m.acquires++
	if m.err != nil {
		return nil, m.err
	}
	return &pgxpool.Pool{}, nil
}

type mockPublisher struct {
	mu     sync.Mutex
	err    error
	events []model.OrderCreatedEvent
}

func (m *mockPublisher) Publish(ctx context.Context, event model.OrderCreatedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// mockCarts хранит корзину одного покупателя, как это делает таблица users
type mockCarts struct {
	mu     sync.Mutex
	err    error
	cart   model.CartItems
	clears int
}

func (m *mockCarts) ClearCart(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.clears++
	m.cart = model.CartItems{}
	return nil
}

func validAddress() model.Address {
	return model.Address{
		FullName:    "Ivan Ivanov",
		PhoneNumber: "+79990000000",
		Pincode:     "101000",
		Area:        "Mira street 15",
		City:        "Moscow",
		State:       "Moscow Region",
	}
}

func newCheckoutFixture(catalog *mockCatalog) (*CheckoutService, *mockDB, *mockPublisher, *mockCarts) {
	db := &mockDB{}
	publisher := &mockPublisher{}
	carts := &mockCarts{cart: model.CartItems{"p1": 2, "p2": 1}}
	log := slog.New(slog.DiscardHandler)

	svc := NewCheckoutService(db, NewPricingService(catalog), publisher, carts, log)
	return svc, db, publisher, carts
}

func defaultCatalog() *mockCatalog {
	return &mockCatalog{prices: map[string]model.ProductPrice{
		"p1": {Price: 120, OfferPrice: 100},
		"p2": {Price: 60, OfferPrice: 50},
	}}
}

func TestSubmitOrder_Success(t *testing.T) {
	catalog := defaultCatalog()
	svc, _, publisher, carts := newCheckoutFixture(catalog)

	req := model.CheckoutRequest{
		UserID:  "user-1",
		Address: validAddress(),
		Items: []model.LineItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	}

	result, err := svc.SubmitOrder(context.Background(), req)
	require.NoError(t, err)
	require.True(t, result.CartCleared)
	require.NotEmpty(t, result.OrderUID)
	require.Equal(t, int64(255), result.Total)

	require.Len(t, publisher.events, 1)
	event := publisher.events[0]
	require.Equal(t, "user-1", event.UserID)
	require.Equal(t, result.OrderUID, event.OrderUID)
	require.Equal(t, int64(250), event.Subtotal)
	require.Equal(t, int64(5), event.Tax)
	require.Equal(t, int64(255), event.Total)
	require.NotEmpty(t, event.EventID)
	require.False(t, event.CreatedAt.IsZero())

	// корзина очищена, но поле присутствует
	require.NotNil(t, carts.cart)
	require.Empty(t, carts.cart)
	require.Equal(t, 1, carts.clears)
}

func TestSubmitOrder_InvalidRequestHasNoSideEffects(t *testing.T) {
	tests := []struct {
		name string
		req  model.CheckoutRequest
	}{
		{
			name: "empty items",
			req:  model.CheckoutRequest{UserID: "user-1", Address: validAddress()},
		},
		{
			name: "absent address",
			req: model.CheckoutRequest{
				UserID: "user-1",
				Items:  []model.LineItem{{ProductID: "p1", Quantity: 1}},
			},
		},
		{
			name: "zero quantity",
			req: model.CheckoutRequest{
				UserID:  "user-1",
				Address: validAddress(),
				Items:   []model.LineItem{{ProductID: "p1", Quantity: 0}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := defaultCatalog()
			svc, db, publisher, carts := newCheckoutFixture(catalog)

			_, err := svc.SubmitOrder(context.Background(), tt.req)
			require.ErrorIs(t, err, ErrInvalidRequest)

			require.Zero(t, db.acquires, "no connection before validation passes")
			require.Zero(t, catalog.callCount(), "no catalog lookups")
			require.Empty(t, publisher.events, "no publishes")
			require.Zero(t, carts.clears, "no cart writes")
		})
	}
}

func TestSubmitOrder_ConnectionFailureAbortsBeforeLookups(t *testing.T) {
	catalog := defaultCatalog()
	svc, db, publisher, carts := newCheckoutFixture(catalog)
	db.err = errors.New("connection refused")

	req := model.CheckoutRequest{
		UserID:  "user-1",
		Address: validAddress(),
		Items:   []model.LineItem{{ProductID: "p1", Quantity: 1}},
	}

	_, err := svc.SubmitOrder(context.Background(), req)
	require.ErrorIs(t, err, db.err)
	require.Zero(t, catalog.callCount())
	require.Empty(t, publisher.events)
	require.Zero(t, carts.clears)
}

func TestSubmitOrder_UnknownProductFails(t *testing.T) {
	catalog := defaultCatalog()
	svc, _, publisher, carts := newCheckoutFixture(catalog)

	req := model.CheckoutRequest{
		UserID:  "user-1",
		Address: validAddress(),
		Items: []model.LineItem{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "missing", Quantity: 1},
		},
	}

	_, err := svc.SubmitOrder(context.Background(), req)
	require.ErrorIs(t, err, postgres.ErrProductNotFound)
	require.Empty(t, publisher.events, "no partial event may be produced")
	require.Zero(t, carts.clears)
}

func TestSubmitOrder_PublishFailureLeavesCartIntact(t *testing.T) {
	catalog := defaultCatalog()
	svc, _, publisher, carts := newCheckoutFixture(catalog)
	publisher.err = errors.New("broker unavailable")

	before := model.CartItems{"p1": 2, "p2": 1}

	req := model.CheckoutRequest{
		UserID:  "user-1",
		Address: validAddress(),
		Items:   []model.LineItem{{ProductID: "p1", Quantity: 2}},
	}

	_, err := svc.SubmitOrder(context.Background(), req)
	require.ErrorIs(t, err, publisher.err)

	// корзина не тронута — покупатель может безопасно повторить запрос
	require.Equal(t, before, carts.cart)
	require.Zero(t, carts.clears)
}

func TestSubmitOrder_CartClearFailureIsDegradedSuccess(t *testing.T) {
	catalog := defaultCatalog()
	svc, _, publisher, carts := newCheckoutFixture(catalog)
	carts.err = errors.New("write failed")

	req := model.CheckoutRequest{
		UserID:  "user-1",
		Address: validAddress(),
		Items:   []model.LineItem{{ProductID: "p1", Quantity: 1}},
	}

	result, err := svc.SubmitOrder(context.Background(), req)

	// событие уже опубликовано, заказ принят несмотря на ошибку очистки
	require.NoError(t, err)
	require.False(t, result.CartCleared)
	require.NotEmpty(t, result.OrderUID)
	require.Len(t, publisher.events, 1)
}
