package model

// CartItems — корзина покупателя: отображение productId -> количество
// пустая корзина сериализуется как {}, а не как null — downstream-читатели
// ожидают, что поле всегда присутствует
type CartItems map[string]int64

// User представляет запись покупателя
// записи создаются и обновляются консьюмером событий identity-провайдера,
// сам сервис пользователей не регистрирует
type User struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name"`
	Email     string    `json:"email" validate:"omitempty,email"`
	ImageURL  string    `json:"image_url"`
	Role      string    `json:"role"`
	CartItems CartItems `json:"cart_items"`
}

// Address содержит адрес доставки покупателя
type Address struct {
	FullName    string `json:"full_name" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required"`
	Pincode     string `json:"pincode" validate:"required"`
	Area        string `json:"area" validate:"required"`
	City        string `json:"city" validate:"required"`
	State       string `json:"state" validate:"required"`
}

// имена событий identity-провайдера, которые синхронизирует консьюмер
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// UserEvent — событие жизненного цикла пользователя из шины identity-провайдера
type UserEvent struct {
	Type string `json:"type" validate:"required,oneof=user.created user.updated user.deleted"`
	User User   `json:"user" validate:"required"`
}

// Validate проверяет корректность события на основе тегов validate
func (e *UserEvent) Validate() error {
	return validate.Struct(e)
}
