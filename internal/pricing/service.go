package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/internal/catalog"
	"github.com/sahalat/booking-engine/internal/coupons"
	"github.com/sahalat/booking-engine/pkg/common"
	"github.com/sahalat/booking-engine/pkg/money"
)

// Catalog is the slice of the catalog service the pricing engine needs.
type Catalog interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error)
	GetTierRates(ctx context.Context, productID uuid.UUID) (*catalog.TierRates, error)
	GetActiveDiscount(ctx context.Context, productID uuid.UUID, now time.Time) (*catalog.Discount, error)
}

// CouponValidator is the slice of the coupons service the pricing engine
// needs.
type CouponValidator interface {
	Validate(ctx context.Context, code string, bookingAmount money.Money) (*coupons.ValidationResult, error)
}

// Service prices bookings end to end: base price, admin discount, coupon.
type Service struct {
	catalog    Catalog
	coupons    CouponValidator
	calculator *Calculator
	resolver   *Resolver
	now        func() time.Time
}

// NewService creates a new pricing service
func NewService(catalogSvc Catalog, couponsSvc CouponValidator) *Service {
	return &Service{
		catalog:    catalogSvc,
		coupons:    couponsSvc,
		calculator: NewCalculator(),
		resolver:   NewResolver(),
		now:        time.Now,
	}
}

// Preview prices a booking for display. A coupon that fails validation does
// not fail the preview; the breakdown carries the rejection reason and the
// rest of the price stands.
func (s *Service) Preview(ctx context.Context, req *Request) (*Breakdown, error) {
	return s.price(ctx, req, false)
}

// Quote prices a booking for checkout. A coupon that fails validation fails
// the whole quote, because a booking must never be created with a price the
// user did not see.
func (s *Service) Quote(ctx context.Context, req *Request) (*Breakdown, error) {
	return s.price(ctx, req, true)
}

func (s *Service) price(ctx context.Context, req *Request, strictCoupon bool) (*Breakdown, error) {
	product, err := s.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	breakdown := &Breakdown{ProductID: product.ID}

	switch product.Type {
	case catalog.ProductCar:
		if req.EndDate.IsZero() {
			return nil, common.NewUnprocessableError(common.CodeInvalidSpan, "end date is required for car rentals", nil)
		}
		rates, err := s.catalog.GetTierRates(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		if rates == nil {
			return nil, common.NewUnprocessableError(common.CodeNoApplicableRate, "product has no rate card", nil)
		}

		base, tiers, err := s.calculator.CarBase(rates, req)
		if err != nil {
			return nil, err
		}
		breakdown.TotalDays = TotalDays(req)
		breakdown.Tiers = tiers
		breakdown.BasePrice = base

	case catalog.ProductTrip:
		base, err := s.calculator.TripBase(product, req)
		if err != nil {
			return nil, err
		}
		if product.DurationDays != nil {
			breakdown.TotalDays = *product.DurationDays
		}
		breakdown.BasePrice = base

	default:
		return nil, common.NewInternalServerError("unknown product type")
	}

	discount, err := s.catalog.GetActiveDiscount(ctx, product.ID, s.now())
	if err != nil {
		return nil, err
	}

	var coupon *coupons.Coupon
	if req.CouponCode != "" {
		priceAfterDiscount := breakdown.BasePrice
		if discount != nil {
			priceAfterDiscount = priceAfterDiscount.Sub(s.resolver.ApplyDiscount(discount, breakdown.BasePrice))
		}

		result, err := s.coupons.Validate(ctx, req.CouponCode, priceAfterDiscount)
		if err != nil {
			return nil, err
		}
		if result.Valid {
			coupon = result.Coupon
		} else {
			if strictCoupon {
				return nil, common.NewUnprocessableError(common.CodeCouponInvalid, "coupon rejected: "+string(result.Reason), nil)
			}
			breakdown.CouponRejectionReason = result.Reason
		}
	}

	s.resolver.Resolve(breakdown, discount, coupon)
	return breakdown, nil
}
