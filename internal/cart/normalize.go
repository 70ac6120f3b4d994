package cart

import (
	"encoding/json"

	"github.com/javajoker/storefront/internal/models"
)

// Normalize turns any known backend shape into the canonical CartItem.
//
//   - the product payload is exposed as Product whatever key carried it;
//   - ProductID falls back to the product payload's id;
//   - ID falls back to ProductID when the backend sent no entry id;
//   - unmodeled backend fields stay in Extra, on the item and on its product.
//
// Normalize(Normalize(x).Raw()) equals Normalize(x).
func Normalize(raw models.RawCartItem) models.CartItem {
	productID := raw.ProductID
	if productID == "" && raw.Product != nil {
		productID = raw.Product.ID
	}

	id := raw.ID
	if id == "" {
		id = productID
	}

	item := models.CartItem{
		ID:             id,
		ProductID:      productID,
		Quantity:       raw.Quantity,
		Specifications: raw.Specifications.Clone(),
	}

	if raw.Product != nil {
		product := raw.Product.Clone()
		if product.ID == "" {
			product.ID = productID
		}
		if len(product.Images) == 0 {
			product.Images = nil
		}
		if len(product.Extra) == 0 {
			product.Extra = nil
		}
		item.Product = &product
	}

	if raw.Calculations != nil {
		calc := *raw.Calculations
		item.ItemCalculations = &calc
	}

	if len(raw.Extra) > 0 {
		item.Extra = make(map[string]json.RawMessage, len(raw.Extra))
		for k, v := range raw.Extra {
			item.Extra[k] = v
		}
	}

	return item
}

// NormalizeAll normalizes a list and drops lines that may not be in a cart.
func NormalizeAll(raws []models.RawCartItem) []models.CartItem {
	items := make([]models.CartItem, 0, len(raws))
	for _, raw := range raws {
		item := Normalize(raw)
		if !item.Valid() {
			continue
		}
		items = append(items, item)
	}
	return items
}

// filterValid keeps only valid lines, preserving order.
func filterValid(items []models.CartItem) []models.CartItem {
	out := items[:0:0]
	for _, item := range items {
		if item.Valid() {
			out = append(out, item)
		}
	}
	return out
}

// mergeDuplicateLines folds lines sharing (productId, specifications) into
// the first one. Guest data written by older clients can contain such pairs.
func mergeDuplicateLines(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, item := range items {
		key := lineKey(item.ProductID, item.Specifications)
		if idx, ok := seen[key]; ok && item.ProductID != "" {
			previous := out[idx].Quantity
			out[idx].Quantity += item.Quantity
			refreshCalculations(&out[idx], previous)
			continue
		}
		seen[key] = len(out)
		out = append(out, item)
	}
	return out
}

func lineKey(productID string, specs models.Specifications) string {
	return productID + "\x00" + specs.Key()
}

func cloneItems(items []models.CartItem) []models.CartItem {
	if items == nil {
		return nil
	}
	out := make([]models.CartItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

func indexOf(items []models.CartItem, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
