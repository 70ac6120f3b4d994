// internal/models/raw_item.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ItemShape identifies which known backend layout a raw cart item used.
//
// Input contract, keyed on where the product payload lives:
//
//	ShapeCanonical  {"id", "productId", "quantity", "product": {...}}
//	ShapeIncluded   {"id", "productId", "quantity", "Product": {...}}
//	ShapeDetails    {"_id", "product_id", "quantity", "productDetails": {...}}
//	ShapeBare       {"id" | "productId", "quantity"}
//
// Entry ids are read from "id", "_id" or "cartItemId" (first present wins),
// product ids from "productId", "product_id" and finally the payload's "id".
// Ids may be JSON strings or numbers. Any other key is kept in Extra.
type ItemShape int

const (
	ShapeBare ItemShape = iota
	ShapeCanonical
	ShapeIncluded
	ShapeDetails
)

func (s ItemShape) String() string {
	switch s {
	case ShapeCanonical:
		return "canonical"
	case ShapeIncluded:
		return "included"
	case ShapeDetails:
		return "details"
	default:
		return "bare"
	}
}

// productKeys is ordered by precedence.
var productKeys = []struct {
	key   string
	shape ItemShape
}{
	{"product", ShapeCanonical},
	{"Product", ShapeIncluded},
	{"productDetails", ShapeDetails},
}

var (
	entryIDKeys   = []string{"id", "_id", "cartItemId"}
	productIDKeys = []string{"productId", "product_id"}
)

const (
	keyQuantity       = "quantity"
	keyCalculations   = "itemCalculations"
	keySpecifications = "specifications"
)

// RawCartItem is a cart item as any backend shape delivered it, decoded but
// not yet normalized.
type RawCartItem struct {
	Shape          ItemShape
	ID             string
	ProductID      string
	Quantity       int
	Product        *ProductSnapshot
	Calculations   *ItemCalculations
	Specifications Specifications
	Extra          map[string]json.RawMessage
}

// ParseRawItems decodes a JSON array of cart items. Elements that are not JSON
// objects are skipped; a payload that is not an array is an error.
func ParseRawItems(data []byte) ([]RawCartItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, fmt.Errorf("failed to decode cart items: %w", err)
	}

	items := make([]RawCartItem, 0, len(elements))
	for _, element := range elements {
		item, err := ParseRawItem(element)
		if err != nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// ParseRawItem decodes one cart item object according to the ItemShape contract.
func ParseRawItem(data []byte) (RawCartItem, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return RawCartItem{}, fmt.Errorf("failed to decode cart item: %w", err)
	}
	if fields == nil {
		return RawCartItem{}, fmt.Errorf("cart item is null")
	}

	raw := RawCartItem{Shape: ShapeBare}

	raw.ID = takeID(fields, entryIDKeys)
	raw.ProductID = takeID(fields, productIDKeys)

	for _, candidate := range productKeys {
		value, ok := fields[candidate.key]
		if !ok {
			continue
		}
		delete(fields, candidate.key)
		if raw.Product != nil || isNull(value) {
			continue
		}
		product, err := parseProduct(value)
		if err != nil {
			continue
		}
		raw.Product = product
		raw.Shape = candidate.shape
	}

	if value, ok := fields[keyQuantity]; ok {
		delete(fields, keyQuantity)
		raw.Quantity = parseQuantity(value)
	}

	if value, ok := fields[keyCalculations]; ok {
		delete(fields, keyCalculations)
		var calc ItemCalculations
		if !isNull(value) && json.Unmarshal(value, &calc) == nil {
			raw.Calculations = &calc
		}
	}

	if value, ok := fields[keySpecifications]; ok {
		delete(fields, keySpecifications)
		var specs map[string]interface{}
		if !isNull(value) && json.Unmarshal(value, &specs) == nil && len(specs) > 0 {
			raw.Specifications = Specifications(specs)
		}
	}

	raw.Extra = compactFields(fields)
	return raw, nil
}

// compactFields returns the leftover keys with compacted values, nil when
// nothing is left.
func compactFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			continue
		}
		out[k] = json.RawMessage(buf.Bytes())
	}
	return out
}

// takeID removes every alias key and returns the first usable value.
func takeID(fields map[string]json.RawMessage, keys []string) string {
	id := ""
	for _, key := range keys {
		value, ok := fields[key]
		if !ok {
			continue
		}
		delete(fields, key)
		if id == "" {
			id = flexString(value)
		}
	}
	return id
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

// flexString reads a JSON string or number as a string.
func flexString(value json.RawMessage) string {
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(value, &n); err == nil {
		return n.String()
	}
	return ""
}

// flexFloat reads a JSON number or numeric string.
func flexFloat(value json.RawMessage) float64 {
	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return parsed
		}
	}
	return 0
}

func parseQuantity(value json.RawMessage) int {
	q := flexFloat(value)
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0
	}
	return int(math.Floor(q))
}

func parseProduct(value json.RawMessage) (*ProductSnapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil {
		return nil, err
	}

	product := &ProductSnapshot{}
	product.ID = takeID(fields, []string{"id", "_id"})
	if v, ok := fields["name"]; ok {
		delete(fields, "name")
		product.Name = flexString(v)
	}
	if v, ok := fields["price"]; ok {
		delete(fields, "price")
		product.Price = flexFloat(v)
	}
	if v, ok := fields["gst"]; ok {
		delete(fields, "gst")
		product.GST = flexFloat(v)
	}
	if v, ok := fields["category"]; ok {
		delete(fields, "category")
		product.Category = flexString(v)
	}
	if v, ok := fields["images"]; ok {
		delete(fields, "images")
		var images []string
		if json.Unmarshal(v, &images) == nil && len(images) > 0 {
			product.Images = images
		}
	}
	product.Extra = compactFields(fields)
	return product, nil
}
