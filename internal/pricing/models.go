package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/internal/coupons"
	"github.com/sahalat/booking-engine/pkg/money"
)

// Request describes a booking to be priced.
type Request struct {
	ProductID    uuid.UUID `json:"product_id"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	WithDriver   bool      `json:"with_driver"`  // cars only
	Participants int       `json:"participants"` // trips only
	CouponCode   string    `json:"coupon_code,omitempty"`
}

// TierBreakdown shows how a car rental span decomposed into billing units.
// The decomposition is greedy: whole months first, then whole weeks, then
// days, regardless of whether a different split would be cheaper.
type TierBreakdown struct {
	Months        int         `json:"months"`
	Weeks         int         `json:"weeks"`
	Days          int         `json:"days"`
	MonthSubtotal money.Money `json:"month_subtotal"`
	WeekSubtotal  money.Money `json:"week_subtotal"`
	DaySubtotal   money.Money `json:"day_subtotal"`
}

// Breakdown is a fully resolved price: the base amount, every markdown that
// applied, and the resulting total.
type Breakdown struct {
	ProductID uuid.UUID      `json:"product_id"`
	TotalDays int            `json:"total_days"`
	Tiers     *TierBreakdown `json:"tiers,omitempty"` // cars only
	BasePrice money.Money    `json:"base_price"`

	DiscountApplied  bool        `json:"discount_applied"`
	DiscountedAmount money.Money `json:"discounted_amount"`

	CouponApplied         bool                    `json:"coupon_applied"`
	CouponCode            string                  `json:"coupon_code,omitempty"`
	CouponID              *uuid.UUID              `json:"coupon_id,omitempty"`
	CouponDiscount        money.Money             `json:"coupon_discount"`
	CouponRejectionReason coupons.RejectionReason `json:"coupon_rejection_reason,omitempty"`

	FinalPrice money.Money `json:"final_price"`
}
