package pricing

import (
	"github.com/sahalat/booking-engine/internal/catalog"
	"github.com/sahalat/booking-engine/internal/coupons"
	"github.com/sahalat/booking-engine/pkg/money"
)

// Resolver stacks markdowns onto a base price. The admin discount always
// applies to the original base; a coupon then applies to whatever is left.
// The result never goes below zero.
type Resolver struct{}

// NewResolver creates a new discount resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// ApplyDiscount computes the markdown an admin discount takes off the base
// price. Fixed discounts are clamped to the price so they can't overshoot.
func (r *Resolver) ApplyDiscount(discount *catalog.Discount, base money.Money) money.Money {
	switch discount.Type {
	case catalog.DiscountPercentage:
		if discount.Percent == nil {
			return 0
		}
		return base.Percent(*discount.Percent)
	case catalog.DiscountFixed:
		if discount.Amount == nil {
			return 0
		}
		return discount.Amount.Min(base)
	}
	return 0
}

// ApplyCoupon computes the markdown a coupon takes off the already
// discounted price.
func (r *Resolver) ApplyCoupon(coupon *coupons.Coupon, price money.Money) money.Money {
	switch coupon.Type {
	case coupons.CouponPercentage:
		if coupon.Percent == nil {
			return 0
		}
		return price.Percent(*coupon.Percent)
	case coupons.CouponFixed:
		if coupon.Amount == nil {
			return 0
		}
		return coupon.Amount.Min(price)
	}
	return 0
}

// Resolve fills the markdown fields of a breakdown whose base price is
// already set. The coupon may be nil.
func (r *Resolver) Resolve(breakdown *Breakdown, discount *catalog.Discount, coupon *coupons.Coupon) {
	price := breakdown.BasePrice

	if discount != nil {
		breakdown.DiscountedAmount = r.ApplyDiscount(discount, price)
		breakdown.DiscountApplied = true
		price = price.Sub(breakdown.DiscountedAmount)
	}

	if coupon != nil {
		breakdown.CouponDiscount = r.ApplyCoupon(coupon, price)
		breakdown.CouponApplied = true
		breakdown.CouponCode = coupon.Code
		couponID := coupon.ID
		breakdown.CouponID = &couponID
		price = price.Sub(breakdown.CouponDiscount)
	}

	breakdown.FinalPrice = price.Max(0)
}
