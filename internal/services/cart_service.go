// internal/services/cart_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront/internal/database"
	"github.com/javajoker/storefront/internal/models"
	"github.com/javajoker/storefront/internal/utils"
)

type CartService struct {
	cart     database.CartRepository
	products database.ProductRepository
}

type AddCartItemRequest struct {
	ProductID      string                `json:"productId" validate:"required,uuid"`
	Quantity       int                   `json:"quantity" validate:"required,min=1,max=999"`
	Specifications models.Specifications `json:"specifications" validate:"omitempty,max=16,dive,keys,spec_key,endkeys"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=999"`
}

// CartLine is a cart entry as the API returns it. The product travels under
// "Product", the way the ORM includes it.
type CartLine struct {
	ID               string                  `json:"id"`
	ProductID        string                  `json:"productId"`
	Quantity         int                     `json:"quantity"`
	Specifications   models.JSONB            `json:"specifications,omitempty"`
	Product          *models.ProductSnapshot `json:"Product"`
	ItemCalculations models.ItemCalculations `json:"itemCalculations"`
	AddedAt          time.Time               `json:"addedAt"`
}

func NewCartService(cart database.CartRepository, products database.ProductRepository) *CartService {
	return &CartService{
		cart:     cart,
		products: products,
	}
}

func newCartLine(entry models.CartEntry) CartLine {
	line := CartLine{
		ID:             entry.ID.String(),
		ProductID:      entry.ProductID.String(),
		Quantity:       entry.Quantity,
		Specifications: entry.Specifications,
		AddedAt:        entry.CreatedAt,
	}
	if entry.Product.ID != uuid.Nil {
		line.Product = entry.Product.Snapshot()
		line.ItemCalculations = models.CalculateItem(entry.Product.Price, entry.Product.GST, entry.Quantity)
	}
	return line
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	entries, err := s.cart.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines := make([]CartLine, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, newCartLine(entry))
	}
	return lines, nil
}

// Summary returns the cart with its totals.
func (s *CartService) Summary(ctx context.Context, userID uuid.UUID) ([]CartLine, models.CartSummary, error) {
	lines, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, models.CartSummary{}, err
	}

	var acc models.SummaryAccumulator
	for _, line := range lines {
		acc.Add(line.ItemCalculations)
	}
	return lines, acc.Summary(), nil
}

// AddItem puts quantity units on the cart. A line with the same product and
// specifications is incremented instead of duplicated.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *AddCartItemRequest) (*CartLine, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	product, err := s.loadProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	specKey := req.Specifications.Key()

	entry, err := s.cart.FindLine(ctx, userID, product.ID, specKey)
	switch {
	case err == nil:
		return s.increment(ctx, entry, product, req.Quantity)
	case !errors.Is(err, database.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to look up cart line: %w", err)
	}

	if req.Quantity > product.InventoryCount {
		return nil, ErrInsufficientStock
	}

	entry = &models.CartEntry{
		UserID:         userID,
		ProductID:      product.ID,
		SpecKey:        specKey,
		Quantity:       req.Quantity,
		Specifications: models.JSONB(req.Specifications.Clone()),
	}
	if err := s.cart.Create(ctx, entry); err != nil {
		if !errors.Is(err, database.ErrDuplicate) {
			return nil, fmt.Errorf("failed to create cart line: %w", err)
		}
		// lost a race with a concurrent add of the same line
		existing, findErr := s.cart.FindLine(ctx, userID, product.ID, specKey)
		if findErr != nil {
			return nil, fmt.Errorf("failed to look up cart line: %w", findErr)
		}
		return s.increment(ctx, existing, product, req.Quantity)
	}

	entry.Product = *product
	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"product_id": product.ID,
		"quantity":   req.Quantity,
	}).Info("Cart line created")

	line := newCartLine(*entry)
	return &line, nil
}

func (s *CartService) increment(ctx context.Context, entry *models.CartEntry, product *models.Product, quantity int) (*CartLine, error) {
	total := entry.Quantity + quantity
	if total > product.InventoryCount {
		return nil, ErrInsufficientStock
	}
	if err := s.cart.UpdateQuantity(ctx, entry, total); err != nil {
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}
	entry.Product = *product
	line := newCartLine(*entry)
	return &line, nil
}

func (s *CartService) UpdateItem(ctx context.Context, userID uuid.UUID, itemID string, req *UpdateCartItemRequest) (*CartLine, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	entry, err := s.findEntry(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Quantity > entry.Product.InventoryCount {
		return nil, ErrInsufficientStock
	}

	if err := s.cart.UpdateQuantity(ctx, entry, req.Quantity); err != nil {
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}

	line := newCartLine(*entry)
	return &line, nil
}

// RemoveItem deletes one of the caller's lines. Lines of other users are
// reported as missing.
func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID string) error {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return ErrCartItemNotFound
	}

	if err := s.cart.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	return nil
}

func (s *CartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	if err := s.cart.DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// Count is the number of units in the cart.
func (s *CartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := s.cart.SumQuantity(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count cart: %w", err)
	}
	return count, nil
}

func (s *CartService) loadProduct(ctx context.Context, id string) (*models.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if product.Status != models.ProductStatusActive {
		return nil, ErrProductUnavailable
	}
	return product, nil
}

func (s *CartService) findEntry(ctx context.Context, userID uuid.UUID, itemID string) (*models.CartEntry, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, ErrCartItemNotFound
	}

	entry, err := s.cart.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return entry, nil
}
