package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// IdempotencyKeyHeader carries the client-chosen retry token for checkout.
const IdempotencyKeyHeader = "Idempotency-Key"

// CheckoutHandler handles checkout HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// PlaceOrder handles POST /api/checkout requests. A replayed submission
// (matching Idempotency-Key) returns the original order with a 200 instead
// of a 201.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, r, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req model.CheckoutRequest
	if !decodeStrict(w, r, &req, h.logger) {
		return
	}
	req.IdempotencyKey = r.Header.Get(IdempotencyKeyHeader)

	order, replayed, err := h.service.PlaceOrder(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, h.logger)
		return
	}

	status := http.StatusCreated
	if replayed {
		status = http.StatusOK
	}
	writeJSON(w, status, order)
}
