package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingGateway struct{}

func (failingGateway) CreatePaymentIntent(context.Context, PaymentIntentParams) (*PaymentIntent, error) {
	return nil, errors.New("card network down")
}

func TestCheckoutService(t *testing.T) {
	f := newCartFixture(t)
	ctx := context.Background()
	gateway := NewLocalGateway()
	checkout := NewCheckoutService(f.service, gateway, "")

	_, err := checkout.Checkout(ctx, f.userID)
	assert.ErrorIs(t, err, ErrCartEmpty)

	_, err = f.service.AddItem(ctx, f.userID, &AddCartItemRequest{ProductID: f.mug.ID.String(), Quantity: 2})
	require.NoError(t, err)

	result, err := checkout.Checkout(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 782.88, result.Amount)
	assert.Equal(t, "inr", result.Currency)
	assert.Equal(t, "requires_payment_method", result.Status)
	assert.Equal(t, 1, result.Summary.ItemCount)

	intents := gateway.Intents()
	require.Len(t, intents, 1)
	assert.Equal(t, int64(78288), intents[0].Amount)
	assert.Equal(t, f.userID.String(), intents[0].Metadata["user_id"])

	// the cart stays until payment is confirmed
	count, err := f.service.Count(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = NewCheckoutService(f.service, failingGateway{}, "usd").Checkout(ctx, f.userID)
	assert.EqualError(t, err, "card network down")
}
