// internal/models/cart.go
package models

import (
	"encoding/json"
	"fmt"
)

// ProductSnapshot is the product data carried inside a cart line. Guest lines
// may only hold part of it.
type ProductSnapshot struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Price    float64  `json:"price"`
	GST      float64  `json:"gst"`
	Images   []string `json:"images,omitempty"`
	Category string   `json:"category,omitempty"`

	// Extra keeps product fields that are not modeled above, compacted.
	Extra map[string]json.RawMessage `json:"-"`
}

// Clone copies the images and extra fields too.
func (p ProductSnapshot) Clone() ProductSnapshot {
	out := p
	if p.Images != nil {
		out.Images = append([]string(nil), p.Images...)
	}
	out.Extra = cloneRaw(p.Extra)
	return out
}

func (p ProductSnapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Extra)+6)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["id"] = p.ID
	if p.Name != "" {
		out["name"] = p.Name
	}
	out["price"] = p.Price
	out["gst"] = p.GST
	if len(p.Images) > 0 {
		out["images"] = p.Images
	}
	if p.Category != "" {
		out["category"] = p.Category
	}
	return json.Marshal(out)
}

func cloneRaw(fields map[string]json.RawMessage) map[string]json.RawMessage {
	if fields == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// ItemCalculations are the per-line money figures, either returned by the
// server or derived locally with CalculateItem.
type ItemCalculations struct {
	UnitPrice   float64 `json:"unitPrice"`
	Subtotal    float64 `json:"subtotal"`
	GSTAmount   float64 `json:"gstAmount"`
	TotalAmount float64 `json:"totalAmount"`
}

// Specifications distinguish variants of one product (size, finish...).
type Specifications map[string]interface{}

// Key returns a canonical form used to compare variant selections.
// A nil map and an empty map share the same key.
func (s Specifications) Key() string {
	if len(s) == 0 {
		return ""
	}
	// encoding/json writes map keys in sorted order
	data, err := json.Marshal(map[string]interface{}(s))
	if err != nil {
		// fmt also prints maps in key order
		return fmt.Sprintf("%v", map[string]interface{}(s))
	}
	return string(data)
}

// Clone returns a shallow copy, nil for empty selections.
func (s Specifications) Clone() Specifications {
	if len(s) == 0 {
		return nil
	}
	out := make(Specifications, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// CartItem is the normalized cart line. It is the only shape consumers see.
type CartItem struct {
	ID               string
	ProductID        string
	Quantity         int
	Product          *ProductSnapshot
	ItemCalculations *ItemCalculations
	Specifications   Specifications

	// Extra keeps backend fields that are not modeled above, compacted.
	Extra map[string]json.RawMessage
}

// Valid reports whether the line may be part of a cart.
func (c CartItem) Valid() bool {
	if c.Quantity < 1 {
		return false
	}
	return c.ID != "" || c.ProductID != ""
}

// Clone returns a deep enough copy for snapshot/rollback use.
func (c CartItem) Clone() CartItem {
	out := c
	if c.Product != nil {
		p := c.Product.Clone()
		out.Product = &p
	}
	if c.ItemCalculations != nil {
		calc := *c.ItemCalculations
		out.ItemCalculations = &calc
	}
	out.Specifications = c.Specifications.Clone()
	out.Extra = cloneRaw(c.Extra)
	return out
}

// Raw converts the item back into the canonical raw shape.
func (c CartItem) Raw() RawCartItem {
	item := c.Clone()
	shape := ShapeCanonical
	if item.Product == nil {
		shape = ShapeBare
	}
	return RawCartItem{
		Shape:          shape,
		ID:             item.ID,
		ProductID:      item.ProductID,
		Quantity:       item.Quantity,
		Product:        item.Product,
		Calculations:   item.ItemCalculations,
		Specifications: item.Specifications,
		Extra:          item.Extra,
	}
}

func (c CartItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(c.Extra)+6)
	for k, v := range c.Extra {
		out[k] = v
	}
	out["id"] = c.ID
	out["productId"] = c.ProductID
	out["quantity"] = c.Quantity
	if c.Product != nil {
		out["product"] = c.Product
	}
	if c.ItemCalculations != nil {
		out["itemCalculations"] = c.ItemCalculations
	}
	if len(c.Specifications) > 0 {
		out["specifications"] = map[string]interface{}(c.Specifications)
	}
	return json.Marshal(out)
}

// CartSummary is derived from the committed cart, never stored.
type CartSummary struct {
	Subtotal    float64 `json:"subtotal"`
	GSTAmount   float64 `json:"gstAmount"`
	TotalAmount float64 `json:"totalAmount"`
	ItemCount   int     `json:"itemCount"`
}

// AddItemRequest is the body of POST /cart. Specification options travel as
// top-level keys next to productId and quantity.
type AddItemRequest struct {
	ProductID      string
	Quantity       int
	Specifications Specifications
}

func (r AddItemRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Specifications)+2)
	for k, v := range r.Specifications {
		out[k] = v
	}
	out["productId"] = r.ProductID
	out["quantity"] = r.Quantity
	return json.Marshal(out)
}
