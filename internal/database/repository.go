package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/storefront/internal/models"
	"github.com/javajoker/storefront/internal/utils"
)

// ErrRecordNotFound is returned by every repository for a missing or
// foreign row.
var ErrRecordNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique key (user email, cart line) is taken.
var ErrDuplicate = errors.New("duplicate record")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// List returns active products matching params and the total match count.
	List(ctx context.Context, params utils.PaginationParams) ([]models.Product, int64, error)
	Count(ctx context.Context) (int64, error)
}

// CartRepository stores cart lines. Every lookup is scoped to the owner so a
// line of another user behaves as missing.
type CartRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartEntry, error)
	FindByID(ctx context.Context, userID, id uuid.UUID) (*models.CartEntry, error)
	FindLine(ctx context.Context, userID, productID uuid.UUID, specKey string) (*models.CartEntry, error)
	Create(ctx context.Context, entry *models.CartEntry) error
	UpdateQuantity(ctx context.Context, entry *models.CartEntry, quantity int) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) error
	SumQuantity(ctx context.Context, userID uuid.UUID) (int, error)
}

type Repositories struct {
	Users    UserRepository
	Products ProductRepository
	Cart     CartRepository
}
