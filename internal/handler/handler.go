package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing useful left to do.
		return
	}
}

// writeError writes a standardised error response.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	correlationID := middleware.CorrelationIDFromContext(r.Context())

	logger.Error().
		Str("code", code).
		Str("message", message).
		Int("status", status).
		Str("correlation_id", correlationID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: correlationID,
	})
}

// writeDomainError maps a service error to an HTTP status and the stable
// error-code response body. Unrecognised errors become a 500 without leaking
// internals.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var domainErr *model.DomainError
	if !errors.As(err, &domainErr) {
		logger.Error().Err(err).
			Str("correlation_id", middleware.CorrelationIDFromContext(r.Context())).
			Msg("internal error")
		writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "something went wrong", logger)
		return
	}

	status := http.StatusInternalServerError
	switch domainErr.Code {
	case model.ErrCodeEmptyCart,
		model.ErrCodeMissingField,
		model.ErrCodeUnavailableItem,
		model.ErrCodeReturnNotAllowed,
		model.ErrCodeInvalidReturn:
		status = http.StatusBadRequest
	case model.ErrCodePaymentNotCompleted:
		status = http.StatusPaymentRequired
	case model.ErrCodeInvalidJSON, model.ErrCodeInvalidPaymentMethod:
		status = http.StatusUnprocessableEntity
	case model.ErrCodeOrderNotFound, model.ErrCodeProductNotFound:
		status = http.StatusNotFound
	}

	writeError(w, r, status, domainErr.Code, domainErr.Message, logger)
}

// decodeStrict decodes a JSON request body rejecting unknown fields. A nil
// error means dst is populated; otherwise a 422 has already been written.
func decodeStrict(w http.ResponseWriter, r *http.Request, dst interface{}, logger zerolog.Logger) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, model.ErrCodeInvalidJSON, "request body is not valid JSON for this endpoint", logger)
		return false
	}
	return true
}
