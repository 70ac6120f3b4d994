// internal/models/product.go
package models

import (
	"github.com/lib/pq"
)

// Product is a catalog row as stored by the backend.
type Product struct {
	BaseModel
	Name           string         `json:"name" gorm:"size:255;not null"`
	Description    string         `json:"description" gorm:"type:text"`
	Category       string         `json:"category" gorm:"size:100;index"`
	Price          float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	GST            float64        `json:"gst" gorm:"type:decimal(5,2);default:0"`
	InventoryCount int            `json:"inventory_count" gorm:"default:0"`
	Images         pq.StringArray `json:"images" gorm:"type:text[]"`
	Specifications JSONB          `json:"specifications" gorm:"type:jsonb"`
	Status         ProductStatus  `json:"status" gorm:"type:varchar(20);default:'active';index"`
}

// Snapshot is the subset of product attributes embedded in cart lines.
func (p *Product) Snapshot() *ProductSnapshot {
	images := make([]string, len(p.Images))
	copy(images, p.Images)
	return &ProductSnapshot{
		ID:       p.ID.String(),
		Name:     p.Name,
		Price:    p.Price,
		GST:      p.GST,
		Images:   images,
		Category: p.Category,
	}
}
