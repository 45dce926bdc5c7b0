package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Varuno8/littlewisewebsite/internal/model"
	"github.com/Varuno8/littlewisewebsite/internal/repository/postgres"
	"github.com/Varuno8/littlewisewebsite/internal/service"
)

// OrderSubmitter определяет интерфейс сервиса, который умеет оформлять заказы
// это позволяет хэндлеру не зависеть от конкретной реализации сервиса
type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, req model.CheckoutRequest) (service.CheckoutResult, error)
}

// UserGetter определяет интерфейс сервиса чтения данных покупателя
type UserGetter interface {
	GetAddresses(ctx context.Context, userID string) ([]model.Address, error)
	GetCart(ctx context.Context, userID string) (model.CartItems, error)
}

// Handler обрабатывает HTTP-запросы
type Handler struct {
	checkout OrderSubmitter
	users    UserGetter
	log      *slog.Logger
	mux      *http.ServeMux
}

// NewHandler создает новый экземпляр Handler
func NewHandler(checkout OrderSubmitter, users UserGetter, log *slog.Logger) *Handler {
	h := &Handler{
		checkout: checkout,
		users:    users,
		log:      log,
		mux:      http.NewServeMux(),
	}
	h.registerRoutes()
	return h
}

// ServeHTTP делает Handler совместимым с http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// registerRoutes регистрирует все эндпоинты
func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("POST /api/order/create", h.createOrder)
	h.mux.HandleFunc("GET /api/user/address", h.getAddresses)
	h.mux.HandleFunc("GET /api/user/cart", h.getCart)
}

// response — единая форма ответа API: {success, message?, ...}
type response struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message,omitempty"`
	OrderUID  string          `json:"order_uid,omitempty"`
	Total     int64           `json:"total,omitempty"`
	Addresses []model.Address `json:"addresses,omitempty"`
	CartItems model.CartItems `json:"cart_items,omitzero"`
}

// userID достаёт идентификатор покупателя из доверенного заголовка
// заголовок проставляет внешний auth-шлюз, сам сервис токены не проверяет
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		h.respondError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid data")
		return
	}
	req.UserID = uid

	result, err := h.checkout.SubmitOrder(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			h.respondError(w, http.StatusBadRequest, "invalid data")
		case errors.Is(err, postgres.ErrProductNotFound):
			h.respondError(w, http.StatusNotFound, "product not found")
		default:
			h.log.Error("order submission failed", slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	resp := response{
		Success:  true,
		OrderUID: result.OrderUID,
		Total:    result.Total,
	}
	if !result.CartCleared {
		// заказ принят, но корзина ещё не очищена — сообщаем об этом явно
		resp.Message = "order accepted, cart clear pending"
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) getAddresses(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		h.respondError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	addresses, err := h.users.GetAddresses(r.Context(), uid)
	if err != nil {
		h.log.Error("failed to get addresses", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, response{Success: true, Addresses: addresses})
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		h.respondError(w, http.StatusUnauthorized, "not authorized")
		return
	}

	cart, err := h.users.GetCart(r.Context(), uid)
	if err != nil {
		h.log.Error("failed to get cart", slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, response{Success: true, CartItems: cart})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal JSON response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success": false, "message": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, response{Success: false, Message: message})
}
