package cart

import "errors"

var (
	ErrInvalidProduct  = errors.New("cart: product id is required")
	ErrInvalidQuantity = errors.New("cart: quantity must be at least 1")
	ErrItemNotFound    = errors.New("cart: item not found")

	// ErrStaleItem is returned when the server does not know the line being
	// removed. The local view is out of date or the line belongs to someone
	// else; the user should refresh.
	ErrStaleItem = errors.New("cart: item not found on the server or not owned by this session, refresh the cart")
)
