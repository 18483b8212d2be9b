package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLineItem is one pending line in a user's cart. The price and amount
// fields are cached values written by the cart endpoints; checkout re-resolves
// pricing against the catalogue and never trusts them.
type CartLineItem struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"userId" bson:"userId"`
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	VariantID string             `json:"variantId,omitempty" bson:"variantId,omitempty"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Price     float64            `json:"price" bson:"price"`
	Amount    float64            `json:"amount" bson:"amount"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
