package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/storefront/internal/models"
	"github.com/javajoker/storefront/internal/utils"
)

// NewMemoryRepositories keeps everything in process memory. Used with
// DB_DRIVER=memory and in tests.
func NewMemoryRepositories() *Repositories {
	store := &memoryStore{
		users:    make(map[uuid.UUID]models.User),
		products: make(map[uuid.UUID]models.Product),
		entries:  make(map[uuid.UUID]models.CartEntry),
	}
	return &Repositories{
		Users:    &memoryUserRepository{store},
		Products: &memoryProductRepository{store},
		Cart:     &memoryCartRepository{store},
	}
}

type memoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]models.User
	products map[uuid.UUID]models.Product
	entries  map[uuid.UUID]models.CartEntry
}

func stamp(base *models.BaseModel) {
	now := time.Now()
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

type memoryUserRepository struct {
	*memoryStore
}

func (r *memoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicate
		}
	}
	stamp(&user.BaseModel)
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	r.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (r *memoryUserRepository) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrRecordNotFound
	}
	user.LastLoginAt = &at
	r.users[id] = user
	return nil
}

type memoryProductRepository struct {
	*memoryStore
}

func (r *memoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp(&product.BaseModel)
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}
	r.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return &product, nil
}

func (r *memoryProductRepository) List(_ context.Context, params utils.PaginationParams) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(params.Search)
	matches := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		if product.Status != models.ProductStatusActive {
			continue
		}
		if params.Category != "" && product.Category != params.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(product.Name), search) &&
			!strings.Contains(strings.ToLower(product.Description), search) {
			continue
		}
		matches = append(matches, product)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		less := productLess(matches[i], matches[j], params.Sort)
		if params.Order == "asc" {
			return less
		}
		return productLess(matches[j], matches[i], params.Sort)
	})

	start, end := utils.PageBounds(len(matches), params)
	return matches[start:end], int64(len(matches)), nil
}

func productLess(a, b models.Product, field string) bool {
	switch field {
	case "price":
		return a.Price < b.Price
	case "name":
		return a.Name < b.Name
	default:
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID.String() < b.ID.String()
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
}

func (r *memoryProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.products)), nil
}

type memoryCartRepository struct {
	*memoryStore
}

// withProduct mirrors Preload("Product").
func (r *memoryCartRepository) withProduct(entry models.CartEntry) models.CartEntry {
	if product, ok := r.products[entry.ProductID]; ok {
		entry.Product = product
	}
	return entry
}

func (r *memoryCartRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]models.CartEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]models.CartEntry, 0)
	for _, entry := range r.entries {
		if entry.UserID == userID {
			entries = append(entries, r.withProduct(entry))
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID.String() < entries[j].ID.String()
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func (r *memoryCartRepository) FindByID(_ context.Context, userID, id uuid.UUID) (*models.CartEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return nil, ErrRecordNotFound
	}
	entry = r.withProduct(entry)
	return &entry, nil
}

func (r *memoryCartRepository) FindLine(_ context.Context, userID, productID uuid.UUID, specKey string) (*models.CartEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.ProductID == productID && entry.SpecKey == specKey {
			e := r.withProduct(entry)
			return &e, nil
		}
	}
	return nil, ErrRecordNotFound
}

func (r *memoryCartRepository) Create(_ context.Context, entry *models.CartEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if existing.UserID == entry.UserID && existing.ProductID == entry.ProductID && existing.SpecKey == entry.SpecKey {
			return ErrDuplicate
		}
	}
	stamp(&entry.BaseModel)
	stored := *entry
	stored.Product = models.Product{}
	stored.User = models.User{}
	r.entries[entry.ID] = stored
	return nil
}

func (r *memoryCartRepository) UpdateQuantity(_ context.Context, entry *models.CartEntry, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.entries[entry.ID]
	if !ok {
		return ErrRecordNotFound
	}
	stored.Quantity = quantity
	stored.UpdatedAt = time.Now()
	r.entries[entry.ID] = stored
	entry.Quantity = quantity
	return nil
}

func (r *memoryCartRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || entry.UserID != userID {
		return ErrRecordNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memoryCartRepository) DeleteAll(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, entry := range r.entries {
		if entry.UserID == userID {
			delete(r.entries, id)
		}
	}
	return nil
}

func (r *memoryCartRepository) SumQuantity(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, entry := range r.entries {
		if entry.UserID == userID {
			total += entry.Quantity
		}
	}
	return total, nil
}
