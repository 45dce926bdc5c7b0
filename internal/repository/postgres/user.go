package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Varuno8/littlewisewebsite/internal/model"

	"github.com/Masterminds/squirrel"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository инкапсулирует работу с записями покупателей:
// корзиной, адресами и синхронизацией от identity-провайдера
type UserRepository struct {
	db *ConnCache
	sq squirrel.StatementBuilderType
}

// NewUserRepository создает новый экземпляр репозитория
func NewUserRepository(db *ConnCache) *UserRepository {
	return &UserRepository{
		db: db,
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetCart возвращает корзину покупателя
// пустая корзина — это валидное состояние, а не ошибка
func (r *UserRepository) GetCart(ctx context.Context, userID string) (model.CartItems, error) {
	const op = "repository.postgres.user.GetCart"

	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sql, args, err := r.sq.Select("cart_items").
		From("users").
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var cart model.CartItems
	if err := pool.QueryRow(ctx, sql, args...).Scan(&cart); err != nil {
		return nil, fmt.Errorf("%s: failed to query cart: %w", op, err)
	}
	if cart == nil {
		cart = model.CartItems{}
	}

	return cart, nil
}

// ClearCart перезаписывает корзину покупателя пустым объектом
// именно пустым {}, а не NULL: downstream-читатели ожидают, что поле
// всегда присутствует. Повторная очистка пустой корзины — no-op
func (r *UserRepository) ClearCart(ctx context.Context, userID string) error {
	const op = "repository.postgres.user.ClearCart"

	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sql, args, err := r.sq.Update("users").
		Set("cart_items", "{}").
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	tag, err := pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: failed to clear cart: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}

	return nil
}

// GetAddresses возвращает сохранённые адреса доставки покупателя
func (r *UserRepository) GetAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	const op = "repository.postgres.user.GetAddresses"

	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sql, args, err := r.sq.Select("full_name", "phone_number", "pincode", "area", "city", "state").
		From("addresses").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query addresses: %w", op, err)
	}
	defer rows.Close()

	addresses := []model.Address{}
	for rows.Next() {
		var a model.Address
		err := rows.Scan(&a.FullName, &a.PhoneNumber, &a.Pincode, &a.Area, &a.City, &a.State)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan address row: %w", op, err)
		}
		addresses = append(addresses, a)
	}

	return addresses, nil
}

// UpsertUser создаёт или обновляет запись покупателя по событию identity-провайдера
// корзину при обновлении не трогаем: ей владеет сам сервис
func (r *UserRepository) UpsertUser(ctx context.Context, user model.User) error {
	const op = "repository.postgres.user.UpsertUser"

	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sql, args, err := r.sq.Insert("users").
		Columns("id", "name", "email", "image_url", "role", "cart_items").
		Values(user.ID, user.Name, user.Email, user.ImageURL, user.Role, "{}").
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, image_url = EXCLUDED.image_url, role = EXCLUDED.role").
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	if _, err := pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: failed to upsert user: %w", op, err)
	}

	return nil
}

// DeleteUser удаляет запись покупателя
func (r *UserRepository) DeleteUser(ctx context.Context, userID string) error {
	const op = "repository.postgres.user.DeleteUser"

	pool, err := r.db.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sql, args, err := r.sq.Delete("users").
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	if _, err := pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("%s: failed to delete user: %w", op, err)
	}

	return nil
}
