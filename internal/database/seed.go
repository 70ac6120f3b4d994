package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront/internal/models"
)

const (
	DemoUserEmail    = "demo@storefront.local"
	DemoUserPassword = "storefront-demo"
)

var demoCatalog = []models.Product{
	{
		Name:           "Brass Desk Lamp",
		Description:    "Adjustable arm lamp with a warm LED bulb",
		Category:       "lighting",
		Price:          2499,
		GST:            18,
		InventoryCount: 40,
		Images:         []string{"https://cdn.storefront.local/img/desk-lamp.jpg"},
		Specifications: models.JSONB{"finish": []interface{}{"brass", "black"}},
	},
	{
		Name:           "Cotton Throw",
		Description:    "Hand woven cotton throw, 130 x 170 cm",
		Category:       "textiles",
		Price:          1299,
		GST:            5,
		InventoryCount: 120,
		Images:         []string{"https://cdn.storefront.local/img/throw.jpg"},
		Specifications: models.JSONB{"color": []interface{}{"indigo", "ochre", "sage"}},
	},
	{
		Name:           "Ceramic Mug",
		Description:    "Stoneware mug, 350 ml",
		Category:       "kitchen",
		Price:          349.5,
		GST:            12,
		InventoryCount: 300,
		Images:         []string{"https://cdn.storefront.local/img/mug.jpg"},
	},
	{
		Name:           "Notebook Set",
		Description:    "Three dotted A5 notebooks",
		Category:       "stationery",
		Price:          450,
		GST:            12,
		InventoryCount: 75,
	},
	{
		Name:           "Gift Card",
		Description:    "Store credit delivered by email",
		Category:       "gift",
		Price:          1000,
		InventoryCount: 1000,
	},
}

// SeedInitialData creates the demo user and catalog when they are missing.
func SeedInitialData(ctx context.Context, repos *Repositories) error {
	logrus.Info("Seeding initial data...")

	if _, err := repos.Users.FindByEmail(ctx, DemoUserEmail); errors.Is(err, ErrRecordNotFound) {
		user := &models.User{
			Name:   "Demo Shopper",
			Email:  DemoUserEmail,
			Status: models.UserStatusActive,
		}
		if err := user.SetPassword(DemoUserPassword); err != nil {
			return fmt.Errorf("failed to set demo user password: %w", err)
		}
		if err := repos.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create demo user: %w", err)
		}
		logrus.WithField("email", DemoUserEmail).Info("Demo user created")
	} else if err != nil {
		return fmt.Errorf("failed to look up demo user: %w", err)
	}

	count, err := repos.Products.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count == 0 {
		for _, product := range demoCatalog {
			p := product
			p.Status = models.ProductStatusActive
			if err := repos.Products.Create(ctx, &p); err != nil {
				return fmt.Errorf("failed to create product %q: %w", p.Name, err)
			}
		}
		logrus.WithField("products", len(demoCatalog)).Info("Demo catalog created")
	}

	logrus.Info("Initial data seeding completed")
	return nil
}
