// internal/services/checkout_service.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/javajoker/storefront/internal/models"
)

// PaymentIntentParams describes a charge in the currency's minor unit.
type PaymentIntentParams struct {
	Amount   int64
	Currency string
	Metadata map[string]string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

// PaymentGateway creates payment intents with a payment provider.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*PaymentIntent, error)
}

type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreatePaymentIntent(ctx context.Context, params PaymentIntentParams) (*PaymentIntent, error) {
	piParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(params.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	piParams.Context = ctx
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

// LocalGateway records intents in memory. The server uses it when no Stripe
// key is configured.
type LocalGateway struct {
	mu      sync.Mutex
	intents []PaymentIntentParams
}

func NewLocalGateway() *LocalGateway {
	return &LocalGateway{}
}

func (g *LocalGateway) CreatePaymentIntent(_ context.Context, params PaymentIntentParams) (*PaymentIntent, error) {
	g.mu.Lock()
	g.intents = append(g.intents, params)
	g.mu.Unlock()

	id := "pi_local_" + uuid.NewString()
	return &PaymentIntent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       string(stripe.PaymentIntentStatusRequiresPaymentMethod),
	}, nil
}

// Intents returns what was requested so far.
func (g *LocalGateway) Intents() []PaymentIntentParams {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]PaymentIntentParams(nil), g.intents...)
}

type CheckoutService struct {
	cart     *CartService
	gateway  PaymentGateway
	currency string
}

type CheckoutResult struct {
	PaymentID    string             `json:"paymentId"`
	ClientSecret string             `json:"clientSecret"`
	Status       string             `json:"status"`
	Amount       float64            `json:"amount"`
	Currency     string             `json:"currency"`
	Summary      models.CartSummary `json:"summary"`
}

func NewCheckoutService(cart *CartService, gateway PaymentGateway, currency string) *CheckoutService {
	if currency == "" {
		currency = string(stripe.CurrencyINR)
	}
	return &CheckoutService{
		cart:     cart,
		gateway:  gateway,
		currency: currency,
	}
}

// Checkout totals the caller's cart and opens a payment for it. The cart is
// left as is until the payment is confirmed.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID) (*CheckoutResult, error) {
	lines, summary, err := s.cart.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	intent, err := s.gateway.CreatePaymentIntent(ctx, PaymentIntentParams{
		Amount:   models.MinorUnits(summary.TotalAmount),
		Currency: s.currency,
		Metadata: map[string]string{
			"user_id":    userID.String(),
			"line_count": strconv.Itoa(len(lines)),
		},
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    userID,
		"payment_id": intent.ID,
		"amount":     summary.TotalAmount,
	}).Info("Checkout payment created")

	return &CheckoutResult{
		PaymentID:    intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       intent.Status,
		Amount:       summary.TotalAmount,
		Currency:     s.currency,
		Summary:      summary,
	}, nil
}
