package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahalat/booking-engine/pkg/money"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// threeDecimalCurrencies are the currencies Stripe bills in thousandths,
// matching the internal money scale.
var threeDecimalCurrencies = map[string]bool{
	"bhd": true,
	"jod": true,
	"kwd": true,
	"omr": true,
	"tnd": true,
}

// StripeGateway collects payments through Stripe payment intents.
type StripeGateway struct{}

// Ensure StripeGateway implements Gateway.
var _ Gateway = (*StripeGateway)(nil)

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(apiKey string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{}
}

// CreateSession creates a payment intent for a booking. The booking ID goes
// into the intent metadata so webhook events can be traced back.
func (g *StripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	amount, err := stripeAmount(req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.BookingID.String())
	params.AddMetadata("user_id", req.UserID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &Session{Ref: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

// CancelSession cancels a pending payment intent
func (g *StripeGateway) CancelSession(ctx context.Context, ref string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := paymentintent.Cancel(ref, params); err != nil {
		return fmt.Errorf("failed to cancel payment intent: %w", err)
	}

	return nil
}

// stripeAmount converts internal thousandth units to the smallest unit of
// the given currency.
func stripeAmount(m money.Money, currency string) (int64, error) {
	units := m.Units()
	if threeDecimalCurrencies[strings.ToLower(currency)] {
		return units, nil
	}

	// Two-decimal currencies drop the third digit; reject amounts that
	// would lose precision instead of silently rounding a charge.
	if units%10 != 0 {
		return 0, fmt.Errorf("amount %s has sub-cent precision for currency %s", m, currency)
	}
	return units / 10, nil
}
