package payments

import (
	"context"

	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/pkg/money"
)

// SessionRequest asks the gateway to collect a payment for a booking.
type SessionRequest struct {
	BookingID   uuid.UUID
	UserID      uuid.UUID
	Amount      money.Money
	Currency    string
	Description string
}

// Session is a pending payment at the gateway. Ref is the provider's
// identifier and is stored on the booking for reconciliation.
type Session struct {
	Ref          string
	ClientSecret string
}

// Gateway abstracts the payment provider so the booking lifecycle can be
// tested without Stripe.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	CancelSession(ctx context.Context, ref string) error
}
