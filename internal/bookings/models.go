package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/internal/catalog"
	"github.com/sahalat/booking-engine/internal/pricing"
	"github.com/sahalat/booking-engine/pkg/money"
)

// Status is a booking's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// validTransitions is the whole lifecycle. Cancelled and completed are
// terminal.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusPaid, StatusCancelled},
	StatusPaid:    {StatusCancelled, StatusCompleted},
}

// CanTransition reports whether a booking may move from one status to
// another.
func CanTransition(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Booking is a priced reservation of a product for a date span. The price
// fields are frozen at creation time; later rate or discount edits never
// touch an existing booking.
type Booking struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	ProductID   uuid.UUID           `json:"product_id"`
	ProductType catalog.ProductType `json:"product_type"`
	Status      Status              `json:"status"`

	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	WithDriver   bool      `json:"with_driver"`
	Participants int       `json:"participants,omitempty"`

	BasePrice        money.Money            `json:"base_price"`
	DiscountedAmount money.Money            `json:"discounted_amount"`
	CouponDiscount   money.Money            `json:"coupon_discount"`
	FinalPrice       money.Money            `json:"final_price"`
	TierBreakdown    *pricing.TierBreakdown `json:"tier_breakdown,omitempty"`

	CouponID   *uuid.UUID `json:"coupon_id,omitempty"`
	CouponCode string     `json:"coupon_code,omitempty"`

	PaymentRef       string `json:"payment_ref,omitempty"`
	LastPaymentError string `json:"last_payment_error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the booking can no longer change state.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted
}
