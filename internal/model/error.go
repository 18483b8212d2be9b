package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON          = "INVALID_JSON"
	ErrCodeMissingField         = "MISSING_FIELD"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeUnavailableItem      = "UNAVAILABLE_ITEM"
	ErrCodePaymentNotCompleted  = "PAYMENT_NOT_COMPLETED"
	ErrCodeInvalidPaymentMethod = "INVALID_PAYMENT_METHOD"
	ErrCodeOrderNotFound        = "ORDER_NOT_FOUND"
	ErrCodeProductNotFound      = "PRODUCT_NOT_FOUND"
	ErrCodeReturnNotAllowed     = "RETURN_NOT_ALLOWED"
	ErrCodeInvalidReturn        = "INVALID_RETURN"
	ErrCodeUnauthorised         = "UNAUTHORIZED"
	ErrCodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// DomainError carries a stable error code alongside a human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrEmptyCart            = NewDomainError(ErrCodeEmptyCart, "Cart has no items to check out")
	ErrUnavailableItem      = NewDomainError(ErrCodeUnavailableItem, "One or more items are unavailable")
	ErrPaymentNotCompleted  = NewDomainError(ErrCodePaymentNotCompleted, "Payment has not been completed")
	ErrInvalidPaymentMethod = NewDomainError(ErrCodeInvalidPaymentMethod, "Unsupported payment method")
	ErrOrderNotFound        = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound      = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrReturnNotAllowed     = NewDomainError(ErrCodeReturnNotAllowed, "Returns are only accepted for delivered orders")
	ErrInvalidReturn        = NewDomainError(ErrCodeInvalidReturn, "Return quantity exceeds the purchased quantity")
)

// UnavailableItem wraps ErrUnavailableItem with enough detail for the client
// to identify the failing line.
func UnavailableItem(title string) *DomainError {
	if title == "" {
		return ErrUnavailableItem
	}
	return NewDomainError(ErrCodeUnavailableItem, "Item unavailable: "+title)
}
