package cartapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/javajoker/storefront/internal/models"
)

type Account struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type accountEnvelope struct {
	User Account `json:"user"`
}

// Login signs in; on success the session cookie lands in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*Account, error) {
	body := map[string]string{"email": email, "password": password}
	var envelope accountEnvelope
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &envelope); err != nil {
		return nil, err
	}
	return &envelope.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	c.ForgetSession()
	return err
}

func (c *Client) Me(ctx context.Context) (*Account, error) {
	var envelope accountEnvelope
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.User, nil
}

// Product is a catalog entry as listed by the backend.
type Product struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Category       string                 `json:"category"`
	Price          float64                `json:"price"`
	GST            float64                `json:"gst"`
	InventoryCount int                    `json:"inventory_count"`
	Images         []string               `json:"images"`
	Specifications map[string]interface{} `json:"specifications"`
}

func (p Product) Snapshot() models.ProductSnapshot {
	return models.ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		GST:      p.GST,
		Images:   append([]string(nil), p.Images...),
		Category: p.Category,
	}
}

type ProductQuery struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

func (c *Client) ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error) {
	path := "/products" + queryString(map[string]string{
		"page":     itoa(query.Page),
		"limit":    itoa(query.Limit),
		"search":   query.Search,
		"category": query.Category,
	})
	var page ProductPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var envelope struct {
		Product Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Product, nil
}

// Checkout is the payment handle returned by POST /checkout.
type Checkout struct {
	PaymentID    string  `json:"paymentId"`
	ClientSecret string  `json:"clientSecret"`
	Status       string  `json:"status"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

func (c *Client) Checkout(ctx context.Context) (*Checkout, error) {
	var envelope struct {
		Checkout Checkout `json:"checkout"`
	}
	if err := c.do(ctx, http.MethodPost, "/checkout", nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Checkout, nil
}
