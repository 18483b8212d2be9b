package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalogue product. Stock and sales counters are only
// ever mutated through the inventory reservation path.
type Product struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	SKU         string             `json:"sku" bson:"sku"`
	Price       float64            `json:"price" bson:"price"`
	Discount    float64            `json:"discount" bson:"discount"`
	Stock       int                `json:"stock" bson:"stock"`
	SalesCount  int                `json:"salesCount" bson:"salesCount"`
	IsActive    bool               `json:"isActive" bson:"isActive"`
	HasVariants bool               `json:"hasVariants" bson:"hasVariants"`
	ImageURL    string             `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Variants    []Variant          `json:"variants,omitempty" bson:"variants,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Variant is an embedded product variation with its own price and stock.
type Variant struct {
	VariantID  string  `json:"variantId" bson:"variantId"`
	Title      string  `json:"title" bson:"title"`
	SKU        string  `json:"sku" bson:"sku"`
	Price      float64 `json:"price" bson:"price"`
	Discount   float64 `json:"discount" bson:"discount"`
	Stock      int     `json:"stock" bson:"stock"`
	SalesCount int     `json:"salesCount" bson:"salesCount"`
	IsActive   bool    `json:"isActive" bson:"isActive"`
}

// FindVariant returns the embedded variant with the given ID, or nil.
func (p *Product) FindVariant(variantID string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].VariantID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}
