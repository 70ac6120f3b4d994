// internal/handlers/cart.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront/internal/i18n"
	"github.com/javajoker/storefront/internal/models"
	"github.com/javajoker/storefront/internal/services"
	"github.com/javajoker/storefront/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	lines, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"cartItems": lines})
}

// POST /cart
func (h *CartHandler) AddItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	req, err := bindAddRequest(c)
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	line, err := h.cartService.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"cartItem": line})
}

// PUT /cart/:id
func (h *CartHandler) UpdateItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req services.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	line, err := h.cartService.UpdateItem(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		h.fail(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"cartItem": line})
}

// DELETE /cart/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.cartService.RemoveItem(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyCartItemRemoved)})
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.cartService.ClearCart(c.Request.Context(), userID); err != nil {
		h.fail(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyCartCleared)})
}

// GET /cart/count
func (h *CartHandler) Count(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	count, err := h.cartService.Count(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"count": count})
}

func (h *CartHandler) fail(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
	case errors.Is(err, services.ErrCartItemNotFound):
		utils.NotFoundResponse(c, i18n.KeyCartItemNotFound)
	case errors.Is(err, services.ErrProductUnavailable), errors.Is(err, services.ErrInsufficientStock):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyProductOutOfStock))
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Cart request failed")
		utils.InternalErrorResponse(c, "")
	}
}

// bindAddRequest reads {productId, quantity, ...options}. Keys other than
// the product id and quantity are specification options; a nested
// "specifications" object is accepted too.
func bindAddRequest(c *gin.Context) (*services.AddCartItemRequest, error) {
	data, err := c.GetRawData()
	if err != nil {
		return nil, err
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, fmt.Errorf("body must be a JSON object: %w", err)
	}

	req := &services.AddCartItemRequest{}
	specs := models.Specifications{}

	for key, raw := range body {
		switch key {
		case "productId", "product_id":
			if err := json.Unmarshal(raw, &req.ProductID); err != nil {
				return nil, fmt.Errorf("productId must be a string")
			}
		case "quantity":
			if err := json.Unmarshal(raw, &req.Quantity); err != nil {
				return nil, fmt.Errorf("quantity must be an integer")
			}
		case "specifications":
			var nested map[string]interface{}
			if err := json.Unmarshal(raw, &nested); err != nil {
				return nil, fmt.Errorf("specifications must be an object")
			}
			for k, v := range nested {
				specs[k] = v
			}
		default:
			var value interface{}
			if err := json.Unmarshal(raw, &value); err != nil {
				return nil, err
			}
			specs[key] = value
		}
	}

	if len(specs) > 0 {
		req.Specifications = specs
	}
	return req, nil
}
