package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/Varuno8/littlewisewebsite/internal/model"

	"github.com/stretchr/testify/require"
)

// mockUserStore держит пользователей в памяти вместо таблицы users
type mockUserStore struct {
	users     map[string]model.User
	addresses map[string][]model.Address
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		users:     make(map[string]model.User),
		addresses: make(map[string][]model.Address),
	}
}

func (m *mockUserStore) GetCart(ctx context.Context, userID string) (model.CartItems, error) {
	return m.users[userID].CartItems, nil
}

func (m *mockUserStore) GetAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	return m.addresses[userID], nil
}

func (m *mockUserStore) UpsertUser(ctx context.Context, user model.User) error {
	existing, ok := m.users[user.ID]
	if ok {
		// корзина при обновлении не трогается
		user.CartItems = existing.CartItems
	} else {
		user.CartItems = model.CartItems{}
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserStore) DeleteUser(ctx context.Context, userID string) error {
	delete(m.users, userID)
	return nil
}

func TestApplyUserEvent_CreateThenUpdate(t *testing.T) {
	store := newMockUserStore()
	svc := NewUserService(store, slog.New(slog.DiscardHandler))

	created := model.UserEvent{
		Type: model.EventUserCreated,
		User: model.User{ID: "u1", Name: "Ivan", Email: "ivan@example.com"},
	}
	require.NoError(t, svc.ApplyUserEvent(context.Background(), created))
	require.Equal(t, "Ivan", store.users["u1"].Name)
	require.NotNil(t, store.users["u1"].CartItems, "cart field must exist from the start")

	updated := model.UserEvent{
		Type: model.EventUserUpdated,
		User: model.User{ID: "u1", Name: "Ivan Ivanov", Email: "ivan@example.com"},
	}
	require.NoError(t, svc.ApplyUserEvent(context.Background(), updated))
	require.Equal(t, "Ivan Ivanov", store.users["u1"].Name)
}

func TestApplyUserEvent_Delete(t *testing.T) {
	store := newMockUserStore()
	store.users["u1"] = model.User{ID: "u1"}
	svc := NewUserService(store, slog.New(slog.DiscardHandler))

	event := model.UserEvent{
		Type: model.EventUserDeleted,
		User: model.User{ID: "u1"},
	}
	require.NoError(t, svc.ApplyUserEvent(context.Background(), event))
	require.NotContains(t, store.users, "u1")
}

func TestApplyUserEvent_UnknownType(t *testing.T) {
	store := newMockUserStore()
	svc := NewUserService(store, slog.New(slog.DiscardHandler))

	event := model.UserEvent{
		Type: "user.suspended",
		User: model.User{ID: "u1"},
	}
	require.Error(t, svc.ApplyUserEvent(context.Background(), event))
	require.Empty(t, store.users)
}

func TestGetAddresses(t *testing.T) {
	store := newMockUserStore()
	store.addresses["u1"] = []model.Address{{FullName: "Ivan Ivanov", City: "Moscow"}}
	svc := NewUserService(store, slog.New(slog.DiscardHandler))

	addresses, err := svc.GetAddresses(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	require.Equal(t, "Moscow", addresses[0].City)
}
