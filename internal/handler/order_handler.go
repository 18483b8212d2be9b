package handler

import (
	"net/http"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// GetByID handles GET /api/orders/{id}?userId=... requests. Orders are
// user-scoped; an order belonging to another user reads as not found.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderID := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	if orderID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "order ID is required", h.logger)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "userId query parameter is required", h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), userID, orderID)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// RequestReturn handles POST /api/orders/{id}/returns requests.
func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	orderID := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	orderID = strings.TrimSuffix(orderID, "/returns")
	if orderID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "order ID is required", h.logger)
		return
	}

	var input model.ReturnRequestInput
	if !decodeStrict(w, r, &input, h.logger) {
		return
	}

	order, err := h.service.RequestReturn(r.Context(), orderID, &input)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
