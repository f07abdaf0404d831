package billing

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// StripeGateway charges cards by creating Stripe payment intents.
type StripeGateway struct {
	currency string
	logger   zerolog.Logger
}

// NewStripeGateway configures the Stripe client. Returns nil when no API
// key is set; card payments are then recorded without an external charge.
func NewStripeGateway(apiKey, currency string, logger zerolog.Logger) *StripeGateway {
	if apiKey == "" {
		return nil
	}
	stripe.Key = apiKey
	if currency == "" {
		currency = "uzs"
	}
	return &StripeGateway{currency: currency, logger: logger}
}

func (g *StripeGateway) Charge(ctx context.Context, amount float64, metadata map[string]string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(int64(math.Round(amount * 100))),
		Currency:           stripe.String(g.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		g.logger.Error().Err(err).Float64("amount", amount).Msg("stripe payment intent failed")
		return "", ErrPaymentFailed
	}
	return intent.ID, nil
}
