package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sahalat/booking-engine/internal/catalog"
	"github.com/sahalat/booking-engine/internal/coupons"
	"github.com/sahalat/booking-engine/pkg/money"
)

func percentPtr(s string) *money.Percent {
	p := money.MustPercent(s)
	return &p
}

func TestResolveDiscountThenFixedCoupon(t *testing.T) {
	// 100 base, 10% discount, then 20 fixed coupon: 100 - 10 - 20 = 70.
	resolver := NewResolver()
	breakdown := &Breakdown{BasePrice: money.MustFromString("100.000")}

	discount := &catalog.Discount{Type: catalog.DiscountPercentage, Percent: percentPtr("10")}
	coupon := &coupons.Coupon{Type: coupons.CouponFixed, Amount: moneyPtr("20.000"), Code: "FLAT20"}

	resolver.Resolve(breakdown, discount, coupon)

	assert.True(t, breakdown.DiscountApplied)
	assert.Equal(t, money.MustFromString("10.000"), breakdown.DiscountedAmount)
	assert.True(t, breakdown.CouponApplied)
	assert.Equal(t, money.MustFromString("20.000"), breakdown.CouponDiscount)
	assert.Equal(t, money.MustFromString("70.000"), breakdown.FinalPrice)
}

func TestResolvePercentCouponAppliesToDiscountedPrice(t *testing.T) {
	// 200 base, 10% discount leaves 180, 10% coupon takes 18, not 20.
	resolver := NewResolver()
	breakdown := &Breakdown{BasePrice: money.MustFromString("200.000")}

	discount := &catalog.Discount{Type: catalog.DiscountPercentage, Percent: percentPtr("10")}
	coupon := &coupons.Coupon{Type: coupons.CouponPercentage, Percent: percentPtr("10"), Code: "SAVE10"}

	resolver.Resolve(breakdown, discount, coupon)

	assert.Equal(t, money.MustFromString("20.000"), breakdown.DiscountedAmount)
	assert.Equal(t, money.MustFromString("18.000"), breakdown.CouponDiscount)
	assert.Equal(t, money.MustFromString("162.000"), breakdown.FinalPrice)
}

func TestResolveFixedCouponClampedToPrice(t *testing.T) {
	resolver := NewResolver()
	breakdown := &Breakdown{BasePrice: money.MustFromString("15.000")}

	coupon := &coupons.Coupon{Type: coupons.CouponFixed, Amount: moneyPtr("20.000"), Code: "FLAT20"}

	resolver.Resolve(breakdown, nil, coupon)

	assert.Equal(t, money.MustFromString("15.000"), breakdown.CouponDiscount)
	assert.True(t, breakdown.FinalPrice.IsZero())
}

func TestResolveFixedDiscountClampedToBase(t *testing.T) {
	resolver := NewResolver()
	breakdown := &Breakdown{BasePrice: money.MustFromString("3.000")}

	discount := &catalog.Discount{Type: catalog.DiscountFixed, Amount: moneyPtr("5.000")}

	resolver.Resolve(breakdown, discount, nil)

	assert.Equal(t, money.MustFromString("3.000"), breakdown.DiscountedAmount)
	assert.True(t, breakdown.FinalPrice.IsZero())
}

func TestResolveNoMarkdowns(t *testing.T) {
	resolver := NewResolver()
	breakdown := &Breakdown{BasePrice: money.MustFromString("42.500")}

	resolver.Resolve(breakdown, nil, nil)

	assert.False(t, breakdown.DiscountApplied)
	assert.False(t, breakdown.CouponApplied)
	assert.Equal(t, money.MustFromString("42.500"), breakdown.FinalPrice)
}

func TestResolveNeverNegative(t *testing.T) {
	resolver := NewResolver()
	breakdown := &Breakdown{BasePrice: money.MustFromString("10.000")}

	discount := &catalog.Discount{Type: catalog.DiscountFixed, Amount: moneyPtr("10.000")}
	coupon := &coupons.Coupon{Type: coupons.CouponFixed, Amount: moneyPtr("5.000"), Code: "FLAT5"}

	resolver.Resolve(breakdown, discount, coupon)

	assert.False(t, breakdown.FinalPrice.IsNegative())
	assert.True(t, breakdown.FinalPrice.IsZero())
}

func TestResolveHalfUpRounding(t *testing.T) {
	// 0.001 at 50% rounds half up to 0.001.
	resolver := NewResolver()
	breakdown := &Breakdown{BasePrice: money.FromUnits(1)}

	discount := &catalog.Discount{Type: catalog.DiscountPercentage, Percent: percentPtr("50")}

	resolver.Resolve(breakdown, discount, nil)

	assert.Equal(t, money.FromUnits(1), breakdown.DiscountedAmount)
	assert.True(t, breakdown.FinalPrice.IsZero())
}
