package coupons

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/pkg/money"
)

// CouponType tags how a coupon value is interpreted.
type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

// RejectionReason explains why a coupon did not apply. Returned verbatim to
// clients so the storefront can render a specific message.
type RejectionReason string

const (
	ReasonNotFound       RejectionReason = "not_found"
	ReasonInactive       RejectionReason = "inactive"
	ReasonExpired        RejectionReason = "expired"
	ReasonBelowMinimum   RejectionReason = "below_minimum"
	ReasonUsageExhausted RejectionReason = "usage_exhausted"
)

// Coupon is a user-redeemable code with an optional global usage budget.
type Coupon struct {
	ID               uuid.UUID      `json:"id"`
	Code             string         `json:"code"`
	Type             CouponType     `json:"coupon_type"`
	Percent          *money.Percent `json:"percent,omitempty"` // percentage type
	Amount           *money.Money   `json:"amount,omitempty"`  // fixed type
	MinBookingAmount *money.Money   `json:"min_booking_amount,omitempty"`
	MaxUsages        *int           `json:"max_usages,omitempty"` // nil means unlimited
	UsedCount        int            `json:"used_count"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
	IsActive         bool           `json:"is_active"`
	CreatedBy        *uuid.UUID     `json:"created_by,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// HasBudget reports whether the coupon still has redemptions left.
func (c *Coupon) HasBudget() bool {
	return c.MaxUsages == nil || c.UsedCount < *c.MaxUsages
}

// Redemption records a successful coupon consumption by a paid booking.
type Redemption struct {
	ID         uuid.UUID   `json:"id"`
	CouponID   uuid.UUID   `json:"coupon_id"`
	BookingID  uuid.UUID   `json:"booking_id"`
	UserID     uuid.UUID   `json:"user_id"`
	Discounted money.Money `json:"discounted"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ValidationResult is the outcome of checking a coupon against a booking
// amount. When Valid is false, Reason carries the machine-readable cause.
type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Coupon *Coupon         `json:"coupon,omitempty"`
	Reason RejectionReason `json:"reason,omitempty"`
}
