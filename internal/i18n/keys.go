// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthUserSuspended      = "auth.user_suspended"

	// Products
	KeyProductNotFound   = "product.not_found"
	KeyProductOutOfStock = "product.out_of_stock"

	// Cart (server responses)
	KeyCartItemNotFound = "cart.item_not_found"
	KeyCartEmpty        = "cart.empty"
	KeyCartCleared      = "cart.cleared"
	KeyCartItemRemoved  = "cart.item_removed"

	// Cart (storefront notifications)
	KeyCartAdded         = "cart.added"
	KeyCartAddFailed     = "cart.add_failed"
	KeyCartUpdated       = "cart.updated"
	KeyCartUpdateFailed  = "cart.update_failed"
	KeyCartRemoved       = "cart.removed"
	KeyCartRemoveFailed  = "cart.remove_failed"
	KeyCartStaleItem     = "cart.stale_item"
	KeyCartClearedNotice = "cart.cleared_notice"
	KeyCartFetchFailed   = "cart.fetch_failed"

	// Checkout
	KeyCheckoutCreated = "checkout.created"
	KeyCheckoutFailed  = "checkout.failed"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// Rate limiting
	KeyRateLimited = "rate_limit.exceeded"
)
