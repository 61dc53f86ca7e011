package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/sahalat/booking-engine/internal/catalog"
	"github.com/sahalat/booking-engine/internal/coupons"
	"github.com/sahalat/booking-engine/internal/payments"
	"github.com/sahalat/booking-engine/internal/pricing"
	"github.com/sahalat/booking-engine/pkg/common"
	"github.com/sahalat/booking-engine/pkg/logger"
)

// BookingsRepository defines the storage operations required by the service.
type BookingsRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, bookingID uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Booking, int, error)
	ListAll(ctx context.Context, status Status, limit, offset int) ([]*Booking, int, error)
	CompareAndSetStatus(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, from, to Status) (bool, error)
	SetPaymentRef(ctx context.Context, bookingID uuid.UUID, ref string) error
	SetLastPaymentError(ctx context.Context, bookingID uuid.UUID, message string) error
	SweepCompleted(ctx context.Context, cutoff time.Time) (int64, error)
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Quoter produces a checkout-grade price for a booking request.
type Quoter interface {
	Quote(ctx context.Context, req *pricing.Request) (*pricing.Breakdown, error)
}

// ProductGetter resolves products so bookings can freeze the product type.
type ProductGetter interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*catalog.Product, error)
}

// CouponConsumer spends coupon budget inside the confirmation transaction.
type CouponConsumer interface {
	Consume(ctx context.Context, tx pgx.Tx, redemption *coupons.Redemption) (bool, error)
}

// Service drives the booking lifecycle: create as pending, confirm to paid,
// cancel, complete.
type Service struct {
	repo     BookingsRepository
	quoter   Quoter
	products ProductGetter
	coupons  CouponConsumer
	gateway  payments.Gateway
	currency string
	now      func() time.Time
}

// NewService creates a new bookings service
func NewService(repo BookingsRepository, quoter Quoter, products ProductGetter, couponsSvc CouponConsumer, gateway payments.Gateway, currency string) *Service {
	return &Service{
		repo:     repo,
		quoter:   quoter,
		products: products,
		coupons:  couponsSvc,
		gateway:  gateway,
		currency: currency,
		now:      time.Now,
	}
}

// Create prices the request strictly, persists a pending booking with the
// price frozen, and opens a payment session for the final amount. The
// booking keeps the quoted numbers forever; later rate or discount edits
// don't touch it.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *pricing.Request) (*Booking, *payments.Session, error) {
	product, err := s.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, nil, err
	}
	if !product.IsActive {
		return nil, nil, common.NewUnprocessableError(common.CodeValidation, "product is not bookable", nil)
	}

	breakdown, err := s.quoter.Quote(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	// A trip's span is fixed by the product; any client-sent end date
	// is ignored.
	endDate := req.EndDate
	if product.Type == catalog.ProductTrip && product.DurationDays != nil {
		endDate = req.StartDate.AddDate(0, 0, *product.DurationDays)
	}

	booking := &Booking{
		UserID:           userID,
		ProductID:        product.ID,
		ProductType:      product.Type,
		Status:           StatusPending,
		StartDate:        req.StartDate,
		EndDate:          endDate,
		WithDriver:       req.WithDriver,
		Participants:     req.Participants,
		BasePrice:        breakdown.BasePrice,
		DiscountedAmount: breakdown.DiscountedAmount,
		CouponDiscount:   breakdown.CouponDiscount,
		FinalPrice:       breakdown.FinalPrice,
		TierBreakdown:    breakdown.Tiers,
		CouponID:         breakdown.CouponID,
		CouponCode:       breakdown.CouponCode,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, nil, err
	}

	session, err := s.gateway.CreateSession(ctx, payments.SessionRequest{
		BookingID:   booking.ID,
		UserID:      userID,
		Amount:      booking.FinalPrice,
		Currency:    s.currency,
		Description: "Booking " + booking.ID.String(),
	})
	if err != nil {
		// The booking stays pending; the client can retry payment or
		// cancel.
		logger.ErrorContext(ctx, "failed to open payment session",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
		_ = s.repo.SetLastPaymentError(ctx, booking.ID, err.Error())
		return booking, nil, nil
	}

	if err := s.repo.SetPaymentRef(ctx, booking.ID, session.Ref); err != nil {
		return nil, nil, err
	}
	booking.PaymentRef = session.Ref

	return booking, session, nil
}

// GetByID retrieves a booking, enforcing ownership unless the caller is an
// admin.
func (s *Service) GetByID(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil || (!isAdmin && booking.UserID != userID) {
		return nil, common.NewNotFoundError("booking not found", nil)
	}
	return booking, nil
}

// ListByUser retrieves a user's bookings
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListAll retrieves bookings across all users
func (s *Service) ListAll(ctx context.Context, status Status, limit, offset int) ([]*Booking, int, error) {
	if status != "" {
		switch status {
		case StatusPending, StatusPaid, StatusCancelled, StatusCompleted:
		default:
			return nil, 0, common.NewValidationError("unknown booking status")
		}
	}
	return s.repo.ListAll(ctx, status, limit, offset)
}

// ConfirmPayment moves a booking from pending to paid. Confirming an
// already paid booking is a no-op so gateway callbacks can be retried
// safely. The coupon budget is spent in the same transaction as the status
// flip; a drained budget is logged but never blocks a payment that already
// went through.
func (s *Service) ConfirmPayment(ctx context.Context, bookingID uuid.UUID, paymentRef string) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, common.NewNotFoundError("booking not found", nil)
	}

	if booking.Status == StatusPaid {
		return booking, nil
	}
	if booking.Status != StatusPending {
		return nil, common.NewUnprocessableError(common.CodeInvalidTransition,
			"cannot confirm a "+string(booking.Status)+" booking", nil)
	}

	confirmed, err := s.confirmOnce(ctx, booking, paymentRef)
	if err != nil {
		return nil, err
	}
	if !confirmed {
		// Lost a race. Reload to see who won.
		booking, err = s.repo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking == nil {
			return nil, common.NewNotFoundError("booking not found", nil)
		}
		switch booking.Status {
		case StatusPaid:
			return booking, nil
		case StatusPending:
			// The competing writer rolled back. One retry is enough;
			// after that the conflict is real.
			confirmed, err = s.confirmOnce(ctx, booking, paymentRef)
			if err != nil {
				return nil, err
			}
			if !confirmed {
				return nil, common.NewUnprocessableError(common.CodeConcurrencyConflict,
					"booking is being updated concurrently", nil)
			}
		default:
			return nil, common.NewUnprocessableError(common.CodeInvalidTransition,
				"cannot confirm a "+string(booking.Status)+" booking", nil)
		}
	}

	return s.repo.GetByID(ctx, bookingID)
}

// confirmOnce runs one pending-to-paid attempt in a transaction. Returns
// false when the status flip lost to a concurrent update.
func (s *Service) confirmOnce(ctx context.Context, booking *Booking, paymentRef string) (bool, error) {
	var flipped bool
	err := s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		var err error
		flipped, err = s.repo.CompareAndSetStatus(ctx, tx, booking.ID, StatusPending, StatusPaid)
		if err != nil || !flipped {
			return err
		}

		if booking.CouponID != nil {
			ok, err := s.coupons.Consume(ctx, tx, &coupons.Redemption{
				CouponID:   *booking.CouponID,
				BookingID:  booking.ID,
				UserID:     booking.UserID,
				Discounted: booking.CouponDiscount,
			})
			if err != nil {
				return err
			}
			if !ok {
				// The payment already went through; honoring it beats
				// enforcing a budget that raced to zero.
				logger.WarnContext(ctx, "coupon budget drained at confirmation",
					zap.String("booking_id", booking.ID.String()),
					zap.String("coupon_id", booking.CouponID.String()))
			}
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	if flipped && paymentRef != "" && paymentRef != booking.PaymentRef {
		if err := s.repo.SetPaymentRef(ctx, booking.ID, paymentRef); err != nil {
			return false, err
		}
	}

	return flipped, nil
}

// FailPayment records a failed payment attempt. The booking stays pending
// so the user can try again.
func (s *Service) FailPayment(ctx context.Context, bookingID uuid.UUID, message string) error {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking == nil {
		return common.NewNotFoundError("booking not found", nil)
	}
	if booking.Status != StatusPending {
		return common.NewUnprocessableError(common.CodeInvalidTransition,
			"cannot record a payment failure on a "+string(booking.Status)+" booking", nil)
	}

	return s.repo.SetLastPaymentError(ctx, bookingID, message)
}

// Cancel moves a pending or paid booking to cancelled. Coupon budget spent
// at confirmation is not returned.
func (s *Service) Cancel(ctx context.Context, bookingID, userID uuid.UUID, isAdmin bool) (*Booking, error) {
	booking, err := s.GetByID(ctx, bookingID, userID, isAdmin)
	if err != nil {
		return nil, err
	}

	if !CanTransition(booking.Status, StatusCancelled) {
		return nil, common.NewUnprocessableError(common.CodeInvalidTransition,
			"cannot cancel a "+string(booking.Status)+" booking", nil)
	}

	moved, err := s.repo.CompareAndSetStatus(ctx, nil, booking.ID, booking.Status, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, common.NewUnprocessableError(common.CodeConcurrencyConflict,
			"booking is being updated concurrently", nil)
	}

	if booking.Status == StatusPending && booking.PaymentRef != "" {
		if err := s.gateway.CancelSession(ctx, booking.PaymentRef); err != nil {
			logger.WarnContext(ctx, "failed to cancel payment session",
				zap.String("booking_id", booking.ID.String()),
				zap.Error(err))
		}
	}

	return s.repo.GetByID(ctx, bookingID)
}

// Complete moves a paid booking to completed
func (s *Service) Complete(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, common.NewNotFoundError("booking not found", nil)
	}

	if !CanTransition(booking.Status, StatusCompleted) {
		return nil, common.NewUnprocessableError(common.CodeInvalidTransition,
			"cannot complete a "+string(booking.Status)+" booking", nil)
	}

	moved, err := s.repo.CompareAndSetStatus(ctx, nil, booking.ID, StatusPaid, StatusCompleted)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, common.NewUnprocessableError(common.CodeConcurrencyConflict,
			"booking is being updated concurrently", nil)
	}

	return s.repo.GetByID(ctx, bookingID)
}

// SweepCompleted completes every paid booking whose span has ended. Run
// periodically from the admin service.
func (s *Service) SweepCompleted(ctx context.Context) (int64, error) {
	return s.repo.SweepCompleted(ctx, s.now())
}
