package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order lifecycle statuses. Transitions past "new" are admin-driven.
const (
	OrderStatusNew       = "new"
	OrderStatusProcess   = "process"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Supported payment methods.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodCard   = "card-gateway"
	PaymentMethodWallet = "wallet-gateway"
)

// Payment statuses recorded on the order.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Return request statuses.
const (
	ReturnStatusRequested = "requested"
	ReturnStatusApproved  = "approved"
	ReturnStatusRejected  = "rejected"
)

// Order is the immutable order aggregate created by checkout. Item snapshots
// are fully denormalised; later catalogue edits never change them.
type Order struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrderNumber    string             `json:"orderNumber" bson:"orderNumber"`
	UserID         string             `json:"userId" bson:"userId"`
	Items          []OrderItem        `json:"items" bson:"items"`
	SubTotal       float64            `json:"subTotal" bson:"subTotal"`
	ShippingCost   float64            `json:"shippingCost" bson:"shippingCost"`
	CouponCode     string             `json:"couponCode,omitempty" bson:"couponCode,omitempty"`
	CouponDiscount float64            `json:"couponDiscount" bson:"couponDiscount"`
	TotalAmount    float64            `json:"totalAmount" bson:"totalAmount"`
	Shipping       ShippingDetails    `json:"shipping" bson:"shipping"`
	PaymentMethod  string             `json:"paymentMethod" bson:"paymentMethod"`
	PaymentStatus  string             `json:"paymentStatus" bson:"paymentStatus"`
	Status         string             `json:"status" bson:"status"`
	Notes          string             `json:"notes,omitempty" bson:"notes,omitempty"`
	IdempotencyKey string             `json:"-" bson:"idempotencyKey,omitempty"`
	ReturnRequests []ReturnRequest    `json:"returnRequests,omitempty" bson:"returnRequests,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// OrderItem is a price-and-title snapshot of one purchased line, taken at
// order-creation time.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	VariantID string             `json:"variantId,omitempty" bson:"variantId,omitempty"`
	Title     string             `json:"title" bson:"title"`
	SKU       string             `json:"sku" bson:"sku"`
	UnitPrice float64            `json:"unitPrice" bson:"unitPrice"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Amount    float64            `json:"amount" bson:"amount"`
	ImageURL  string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
}

// ShippingDetails holds the contact and address fields captured at checkout.
type ShippingDetails struct {
	FirstName string `json:"firstName" bson:"firstName"`
	LastName  string `json:"lastName" bson:"lastName"`
	Email     string `json:"email" bson:"email"`
	Phone     string `json:"phone" bson:"phone"`
	Address1  string `json:"address1" bson:"address1"`
	Address2  string `json:"address2,omitempty" bson:"address2,omitempty"`
	City      string `json:"city" bson:"city"`
	State     string `json:"state,omitempty" bson:"state,omitempty"`
	PostCode  string `json:"postCode" bson:"postCode"`
	Country   string `json:"country" bson:"country"`
}

// ReturnRequest is an appended sub-document on a delivered order. Quantities
// are validated against the order's item snapshots, never against the live
// catalogue.
type ReturnRequest struct {
	Items       []ReturnItem `json:"items" bson:"items"`
	Reason      string       `json:"reason" bson:"reason"`
	Status      string       `json:"status" bson:"status"`
	RequestedAt time.Time    `json:"requestedAt" bson:"requestedAt"`
}

// ReturnItem identifies one returned line and quantity.
type ReturnItem struct {
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	VariantID string             `json:"variantId,omitempty" bson:"variantId,omitempty"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// CheckoutRequest is the single strict request type every checkout submission
// is normalised into before reaching the core.
type CheckoutRequest struct {
	UserID                 string `json:"userId" validate:"required"`
	FirstName              string `json:"firstName" validate:"required"`
	LastName               string `json:"lastName" validate:"required"`
	Email                  string `json:"email" validate:"required,email"`
	Phone                  string `json:"phone" validate:"required"`
	Address1               string `json:"address1" validate:"required"`
	Address2               string `json:"address2,omitempty"`
	City                   string `json:"city" validate:"required"`
	State                  string `json:"state,omitempty"`
	PostCode               string `json:"postCode" validate:"required"`
	Country                string `json:"country" validate:"required"`
	PaymentMethod          string `json:"paymentMethod" validate:"required,oneof=cod card-gateway wallet-gateway"`
	PaymentIntentReference string `json:"paymentIntentReference,omitempty"`
	CouponCode             string `json:"couponCode,omitempty"`
	Notes                  string `json:"notes,omitempty"`

	// IdempotencyKey is supplied via the Idempotency-Key header, not the body.
	IdempotencyKey string `json:"-"`
}

// ShippingDetails extracts the shipping fields of the request.
func (r *CheckoutRequest) ShippingDetails() ShippingDetails {
	return ShippingDetails{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Address1:  r.Address1,
		Address2:  r.Address2,
		City:      r.City,
		State:     r.State,
		PostCode:  r.PostCode,
		Country:   r.Country,
	}
}

// RequiresPaymentVerification reports whether the payment method needs an
// upfront paid verdict from the gateway before the order may be created.
func (r *CheckoutRequest) RequiresPaymentVerification() bool {
	return r.PaymentMethod == PaymentMethodCard || r.PaymentMethod == PaymentMethodWallet
}

// ReturnRequestInput is the strict body for a return-request submission.
type ReturnRequestInput struct {
	UserID string            `json:"userId" validate:"required"`
	Items  []ReturnItemInput `json:"items" validate:"required,min=1,dive"`
	Reason string            `json:"reason" validate:"required"`
}

// ReturnItemInput is one requested return line.
type ReturnItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	VariantID string `json:"variantId,omitempty"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}
