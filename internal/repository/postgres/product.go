package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Varuno8/littlewisewebsite/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepository инкапсулирует чтение каталога товаров
// репозиторий не хранит соединение, а одалживает его у кэша на каждый вызов
type ProductRepository struct {
	db *ConnCache
	sq squirrel.StatementBuilderType
}

// NewProductRepository создает новый экземпляр репозитория
func NewProductRepository(db *ConnCache) *ProductRepository {
	return &ProductRepository{
		db: db,
		// использую плейсхолдеры в стиле PostgreSQL ($1, $2, $3,...)
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// PriceOf возвращает текущую и акционную цену товара по его идентификатору
func (r *ProductRepository) PriceOf(ctx context.Context, productID string) (model.ProductPrice, error) {
	const op = "repository.postgres.product.PriceOf"

	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return model.ProductPrice{}, fmt.Errorf("%s: %w", op, err)
	}

	sql, args, err := r.sq.Select("price", "offer_price").
		From("products").
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return model.ProductPrice{}, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var price model.ProductPrice
	err = pool.QueryRow(ctx, sql, args...).Scan(&price.Price, &price.OfferPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ProductPrice{}, fmt.Errorf("%s: %w", op, ErrProductNotFound)
		}
		return model.ProductPrice{}, fmt.Errorf("%s: failed to query product: %w", op, err)
	}

	return price, nil
}
