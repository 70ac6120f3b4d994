// internal/services/product_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/javajoker/storefront/internal/database"
	"github.com/javajoker/storefront/internal/models"
	"github.com/javajoker/storefront/internal/utils"
)

type ProductService struct {
	products database.ProductRepository
}

func NewProductService(products database.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) SearchProducts(ctx context.Context, params utils.PaginationParams) ([]models.Product, int64, error) {
	products, total, err := s.products.List(ctx, utils.NormalizePagination(params))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// GetProduct returns an active product. Drafts behave as missing.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
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

	if product.Status == models.ProductStatusDraft {
		return nil, ErrProductNotFound
	}
	return product, nil
}
