// Package pricing resolves the effective unit price and available stock for a
// (product, optional variant) pair. Resolution is a pure read over catalogue
// data; the stock value it reports is advisory only, since the inventory
// reservation re-validates stock with its own atomic condition.
package pricing

import "storefront/internal/model"

// Resolution is the outcome of a successful price resolution.
type Resolution struct {
	UnitPrice      float64
	AvailableStock int
	VariantID      string
	Title          string
	SKU            string
	ImageURL       string
}

// Resolve returns the effective unit price and stock for the product, or nil
// when the request does not match the product's shape: a variant ID against a
// non-variant product, a missing or inactive variant, or no variant ID
// against a variant product. Callers surface nil as an unavailable item, not
// as an internal error.
func Resolve(product *model.Product, variantID string) *Resolution {
	if product == nil || !product.IsActive {
		return nil
	}

	if variantID != "" {
		if !product.HasVariants {
			return nil
		}

		variant := product.FindVariant(variantID)
		if variant == nil || !variant.IsActive {
			return nil
		}

		title := product.Title
		if variant.Title != "" {
			title = product.Title + " - " + variant.Title
		}

		return &Resolution{
			UnitPrice:      EffectivePrice(variant.Price, variant.Discount),
			AvailableStock: variant.Stock,
			VariantID:      variant.VariantID,
			Title:          title,
			SKU:            variant.SKU,
			ImageURL:       product.ImageURL,
		}
	}

	if product.HasVariants {
		return nil
	}

	return &Resolution{
		UnitPrice:      EffectivePrice(product.Price, product.Discount),
		AvailableStock: product.Stock,
		Title:          product.Title,
		SKU:            product.SKU,
		ImageURL:       product.ImageURL,
	}
}
