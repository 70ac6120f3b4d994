// internal/models/cart_entry.go
package models

import (
	"github.com/google/uuid"
)

// CartEntry is one server-side cart line owned by a user.
type CartEntry struct {
	BaseModel
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_line"`
	ProductID      uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_line"`
	SpecKey        string    `json:"-" gorm:"size:512;not null;default:'';uniqueIndex:idx_cart_line"`
	Quantity       int       `json:"quantity" gorm:"not null;default:1"`
	Specifications JSONB     `json:"specifications" gorm:"type:jsonb"`

	// Relationships
	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Product Product `json:"Product" gorm:"foreignKey:ProductID"`
}
