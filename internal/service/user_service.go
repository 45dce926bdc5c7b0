package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Varuno8/littlewisewebsite/internal/model"
)

// UserService инкапсулирует операции над записями покупателей:
// чтение корзины и адресов плюс синхронизацию от identity-провайдера
type UserService struct {
	users UserStore
	log   *slog.Logger
}

// NewUserService создаёт новый экземпляр сервиса покупателей
func NewUserService(users UserStore, log *slog.Logger) *UserService {
	return &UserService{
		users: users,
		log:   log,
	}
}

// GetCart возвращает корзину покупателя
func (s *UserService) GetCart(ctx context.Context, userID string) (model.CartItems, error) {
	const op = "service.UserService.GetCart"

	cart, err := s.users.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cart, nil
}

// GetAddresses возвращает сохранённые адреса доставки покупателя
func (s *UserService) GetAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	const op = "service.UserService.GetAddresses"

	addresses, err := s.users.GetAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return addresses, nil
}

// ApplyUserEvent применяет событие жизненного цикла пользователя
// от identity-провайдера к локальному хранилищу
func (s *UserService) ApplyUserEvent(ctx context.Context, event model.UserEvent) error {
	const op = "service.UserService.ApplyUserEvent"
	log := s.log.With(slog.String("op", op), slog.String("user_id", event.User.ID), slog.String("type", event.Type))

	switch event.Type {
	case model.EventUserCreated, model.EventUserUpdated:
		if err := s.users.UpsertUser(ctx, event.User); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	case model.EventUserDeleted:
		if err := s.users.DeleteUser(ctx, event.User.ID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	default:
		// валидация отсекает незнакомые типы раньше, сюда попадать не должны
		return fmt.Errorf("%s: unknown event type %q", op, event.Type)
	}

	log.Info("user event applied")
	return nil
}
