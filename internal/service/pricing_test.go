package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Varuno8/littlewisewebsite/internal/model"
	"github.com/Varuno8/littlewisewebsite/internal/repository/postgres"

	"github.com/stretchr/testify/require"
)

// mockCatalog — потокобезопасная заглушка каталога
type mockCatalog struct {
	mu     sync.Mutex
	prices map[string]model.ProductPrice
	calls  int
}

func (m *mockCatalog) PriceOf(ctx context.Context, productID string) (model.ProductPrice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	price, ok := m.prices[productID]
	if !ok {
		return model.ProductPrice{}, postgres.ErrProductNotFound
	}
	return price, nil
}

func (m *mockCatalog) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestComputeTotal(t *testing.T) {
	catalog := &mockCatalog{prices: map[string]model.ProductPrice{
		"p1": {Price: 120, OfferPrice: 100},
		"p2": {Price: 60, OfferPrice: 50},
	}}
	pricing := NewPricingService(catalog)

	tests := []struct {
		name  string
		items []model.LineItem
		want  model.Totals
	}{
		{
			name: "two items",
			items: []model.LineItem{
				{ProductID: "p1", Quantity: 2},
				{ProductID: "p2", Quantity: 1},
			},
			// 100*2 + 50*1 = 250, налог floor(250*0.02) = 5
			want: model.Totals{Subtotal: 250, Tax: 5, Total: 255},
		},
		{
			name:  "tax truncates down",
			items: []model.LineItem{{ProductID: "p2", Quantity: 1}},
			// floor(50*0.02) = 1
			want: model.Totals{Subtotal: 50, Tax: 1, Total: 51},
		},
		{
			name:  "subtotal below tax step",
			items: []model.LineItem{{ProductID: "p2", Quantity: 0}},
			want:  model.Totals{Subtotal: 0, Tax: 0, Total: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pricing.ComputeTotal(context.Background(), tt.items)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotal_UnknownProductFailsWhole(t *testing.T) {
	catalog := &mockCatalog{prices: map[string]model.ProductPrice{
		"p1": {Price: 120, OfferPrice: 100},
	}}
	pricing := NewPricingService(catalog)

	items := []model.LineItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "missing", Quantity: 1},
	}

	_, err := pricing.ComputeTotal(context.Background(), items)
	require.ErrorIs(t, err, postgres.ErrProductNotFound)
}

func TestComputeTotal_LooksUpEveryItem(t *testing.T) {
	catalog := &mockCatalog{prices: map[string]model.ProductPrice{
		"p1": {OfferPrice: 10},
		"p2": {OfferPrice: 20},
		"p3": {OfferPrice: 30},
	}}
	pricing := NewPricingService(catalog)

	items := []model.LineItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
		{ProductID: "p3", Quantity: 1},
	}

	got, err := pricing.ComputeTotal(context.Background(), items)
	require.NoError(t, err)
	require.Equal(t, int64(60), got.Subtotal)
	require.Equal(t, 3, catalog.callCount(), "no lookup may be skipped")
}
