package service

import (
	"context"
	"fmt"

	"github.com/Varuno8/littlewisewebsite/internal/model"

	"golang.org/x/sync/errgroup"
)

// ставка налога в процентах, применяется к промежуточной сумме заказа
const taxRatePercent = 2

// PricingService рассчитывает стоимость заказа по текущим ценам каталога
type PricingService struct {
	catalog CatalogReader
}

// NewPricingService создаёт новый экземпляр калькулятора стоимости
func NewPricingService(catalog CatalogReader) *PricingService {
	return &PricingService{catalog: catalog}
}

// ComputeTotal считает промежуточную сумму, налог и итог по позициям заказа
// цены независимых позиций запрашиваются конкурентно; любая неудача отменяет
// остальные запросы и проваливает весь расчёт — частичная сумма не возвращается
func (s *PricingService) ComputeTotal(ctx context.Context, items []model.LineItem) (model.Totals, error) {
	const op = "service.PricingService.ComputeTotal"

	g, ctx := errgroup.WithContext(ctx)
	amounts := make([]int64, len(items))

	for i, item := range items {
		g.Go(func() error {
			price, err := s.catalog.PriceOf(ctx, item.ProductID)
			if err != nil {
				return err
			}
			amounts[i] = price.OfferPrice * item.Quantity
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.Totals{}, fmt.Errorf("%s: %w", op, err)
	}

	// порядок суммирования не важен, сложение коммутативно
	var subtotal int64
	for _, amount := range amounts {
		subtotal += amount
	}

	// налог усекается вниз: целочисленное деление и есть floor
	// для неотрицательных сумм
	tax := subtotal * taxRatePercent / 100

	return model.Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}, nil
}
