package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawItem(t *testing.T) {
	tests := []struct {
		name string
		data string
		want RawCartItem
	}{
		{
			name: "canonical",
			data: `{"id":"c1","productId":"p1","quantity":2,"product":{"id":"p1","name":"Mug","price":"349.50","gst":12,"images":["a.jpg"]}}`,
			want: RawCartItem{
				Shape:     ShapeCanonical,
				ID:        "c1",
				ProductID: "p1",
				Quantity:  2,
				Product:   &ProductSnapshot{ID: "p1", Name: "Mug", Price: 349.5, GST: 12, Images: []string{"a.jpg"}},
			},
		},
		{
			name: "included with numeric ids",
			data: `{"id":7,"productId":42,"quantity":"3","Product":{"id":42,"price":10},"itemCalculations":{"unitPrice":10,"subtotal":30,"gstAmount":0,"totalAmount":30}}`,
			want: RawCartItem{
				Shape:        ShapeIncluded,
				ID:           "7",
				ProductID:    "42",
				Quantity:     3,
				Product:      &ProductSnapshot{ID: "42", Price: 10},
				Calculations: &ItemCalculations{UnitPrice: 10, Subtotal: 30, TotalAmount: 30},
			},
		},
		{
			name: "details",
			data: `{"_id":"c9","product_id":"p9","quantity":1.9,"productDetails":{"_id":"p9","category":"gift"}}`,
			want: RawCartItem{
				Shape:     ShapeDetails,
				ID:        "c9",
				ProductID: "p9",
				Quantity:  1,
				Product:   &ProductSnapshot{ID: "p9", Category: "gift"},
			},
		},
		{
			name: "bare with options and extras",
			data: `{"productId":"p1","quantity":1,"specifications":{"size":"L"},"addedAt":"2024-01-01T00:00:00Z","note": { "gift" : true }}`,
			want: RawCartItem{
				Shape:          ShapeBare,
				ProductID:      "p1",
				Quantity:       1,
				Specifications: Specifications{"size": "L"},
				Extra: map[string]json.RawMessage{
					"addedAt": json.RawMessage(`"2024-01-01T00:00:00Z"`),
					"note":    json.RawMessage(`{"gift":true}`),
				},
			},
		},
		{
			name: "unmodeled product fields",
			data: `{"id":"c1","quantity":1,"product":{"id":"p1","price":10,"description":"oak","stock":4,"dims": { "w" : 3 }}}`,
			want: RawCartItem{
				Shape:    ShapeCanonical,
				ID:       "c1",
				Quantity: 1,
				Product: &ProductSnapshot{
					ID:    "p1",
					Price: 10,
					Extra: map[string]json.RawMessage{
						"description": json.RawMessage(`"oak"`),
						"stock":       json.RawMessage(`4`),
						"dims":        json.RawMessage(`{"w":3}`),
					},
				},
			},
		},
		{
			name: "null product falls through to the next key",
			data: `{"id":"c1","product":null,"Product":{"id":"p1"},"quantity":1}`,
			want: RawCartItem{
				Shape:    ShapeIncluded,
				ID:       "c1",
				Quantity: 1,
				Product:  &ProductSnapshot{ID: "p1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRawItem([]byte(tt.data))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseRawItem() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRawItemRejectsNonObjects(t *testing.T) {
	for _, data := range []string{`null`, `"x"`, `[1]`, `{`} {
		_, err := ParseRawItem([]byte(data))
		assert.Error(t, err, data)
	}
}

func TestParseRawItems(t *testing.T) {
	items, err := ParseRawItems([]byte(`[{"id":"a","quantity":1}, 5, null, {"id":"b","quantity":2}]`))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)

	items, err = ParseRawItems(nil)
	assert.NoError(t, err)
	assert.Empty(t, items)

	_, err = ParseRawItems([]byte(`{"id":"a"}`))
	assert.Error(t, err)
}

func TestSpecificationsKey(t *testing.T) {
	assert.Equal(t, "", Specifications(nil).Key())
	assert.Equal(t, Specifications(nil).Key(), Specifications{}.Key())
	assert.Equal(t,
		Specifications{"size": "L", "color": "red"}.Key(),
		Specifications{"color": "red", "size": "L"}.Key(),
	)
	assert.NotEqual(t, Specifications{"size": "L"}.Key(), Specifications{"size": "M"}.Key())
}

func TestAddItemRequestFlattensSpecifications(t *testing.T) {
	data, err := json.Marshal(AddItemRequest{
		ProductID:      "p1",
		Quantity:       2,
		Specifications: Specifications{"size": "L"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"productId":"p1","quantity":2,"size":"L"}`, string(data))
}

func TestCartItemMarshalKeepsExtra(t *testing.T) {
	item := CartItem{
		ID:        "c1",
		ProductID: "p1",
		Quantity:  1,
		Extra:     map[string]json.RawMessage{"addedAt": json.RawMessage(`"2024-01-01"`)},
	}
	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","productId":"p1","quantity":1,"addedAt":"2024-01-01"}`, string(data))

	clone := item.Clone()
	clone.Extra["addedAt"] = json.RawMessage(`"changed"`)
	assert.Equal(t, json.RawMessage(`"2024-01-01"`), item.Extra["addedAt"])
}

func TestProductSnapshotMarshalKeepsExtra(t *testing.T) {
	product := ProductSnapshot{
		ID:    "p1",
		Price: 10,
		Extra: map[string]json.RawMessage{"slug": json.RawMessage(`"lamp"`)},
	}
	data, err := json.Marshal(product)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"p1","price":10,"gst":0,"slug":"lamp"}`, string(data))

	clone := product.Clone()
	clone.Extra["slug"] = json.RawMessage(`"desk"`)
	assert.JSONEq(t, `"lamp"`, string(product.Extra["slug"]))
}
