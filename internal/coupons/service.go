package coupons

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sahalat/booking-engine/pkg/common"
	"github.com/sahalat/booking-engine/pkg/money"
)

// CouponsRepository defines the storage operations required by the service.
type CouponsRepository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	GetByID(ctx context.Context, couponID uuid.UUID) (*Coupon, error)
	Create(ctx context.Context, coupon *Coupon) error
	Update(ctx context.Context, coupon *Coupon) error
	Deactivate(ctx context.Context, couponID uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Coupon, int, error)
	IncrementUsage(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) (bool, error)
	RecordRedemption(ctx context.Context, tx pgx.Tx, redemption *Redemption) error
	GetUsageStats(ctx context.Context, couponID uuid.UUID) (map[string]interface{}, error)
}

var codePattern = regexp.MustCompile(`^[A-Z0-9_-]{3,32}$`)

// Service handles coupon business logic
type Service struct {
	repo CouponsRepository
	now  func() time.Time
}

// NewService creates a new coupons service
func NewService(repo CouponsRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Validate checks a coupon code against a booking amount. The checks run in
// a fixed order so the client always sees the most fundamental failure:
// existence, then active flag, then expiry, then minimum amount, then usage
// budget. The usage budget read here is advisory only; the authoritative
// check happens in IncrementUsage at payment confirmation.
func (s *Service) Validate(ctx context.Context, code string, bookingAmount money.Money) (*ValidationResult, error) {
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return &ValidationResult{Valid: false, Reason: ReasonNotFound}, nil
	}

	if !coupon.IsActive {
		return &ValidationResult{Valid: false, Reason: ReasonInactive}, nil
	}

	if coupon.ExpiresAt != nil && !s.now().Before(*coupon.ExpiresAt) {
		return &ValidationResult{Valid: false, Reason: ReasonExpired}, nil
	}

	if coupon.MinBookingAmount != nil && bookingAmount < *coupon.MinBookingAmount {
		return &ValidationResult{Valid: false, Reason: ReasonBelowMinimum}, nil
	}

	if !coupon.HasBudget() {
		return &ValidationResult{Valid: false, Reason: ReasonUsageExhausted}, nil
	}

	return &ValidationResult{Valid: true, Coupon: coupon}, nil
}

// GetByID retrieves a coupon by ID
func (s *Service) GetByID(ctx context.Context, couponID uuid.UUID) (*Coupon, error) {
	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, common.NewNotFoundError("coupon not found", nil)
	}
	return coupon, nil
}

// Create creates a new coupon. Codes are canonicalized to uppercase.
func (s *Service) Create(ctx context.Context, coupon *Coupon) error {
	coupon.Code = strings.ToUpper(strings.TrimSpace(coupon.Code))
	if !codePattern.MatchString(coupon.Code) {
		return common.NewValidationError("coupon code must be 3-32 characters of A-Z, 0-9, '_' or '-'")
	}

	if err := validateCoupon(coupon); err != nil {
		return err
	}

	existing, err := s.repo.FindByCode(ctx, coupon.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return common.NewConflictError("coupon code already exists")
	}

	return s.repo.Create(ctx, coupon)
}

// Update updates a coupon's configuration
func (s *Service) Update(ctx context.Context, coupon *Coupon) error {
	if err := validateCoupon(coupon); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, coupon); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("coupon not found", nil)
		}
		return err
	}

	return nil
}

// Deactivate deactivates a coupon
func (s *Service) Deactivate(ctx context.Context, couponID uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, couponID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NewNotFoundError("coupon not found", nil)
		}
		return err
	}
	return nil
}

// List retrieves all coupons with pagination
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Coupon, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// GetUsageStats returns redemption totals for a coupon
func (s *Service) GetUsageStats(ctx context.Context, couponID uuid.UUID) (map[string]interface{}, error) {
	coupon, err := s.repo.GetByID(ctx, couponID)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, common.NewNotFoundError("coupon not found", nil)
	}

	stats, err := s.repo.GetUsageStats(ctx, couponID)
	if err != nil {
		return nil, err
	}

	stats["used_count"] = coupon.UsedCount
	if coupon.MaxUsages != nil {
		stats["max_usages"] = *coupon.MaxUsages
	}
	return stats, nil
}

// Consume atomically spends one unit of the coupon's budget and records the
// redemption, inside the caller's transaction. Returns false when the budget
// was already exhausted.
func (s *Service) Consume(ctx context.Context, tx pgx.Tx, redemption *Redemption) (bool, error) {
	ok, err := s.repo.IncrementUsage(ctx, tx, redemption.CouponID)
	if err != nil || !ok {
		return ok, err
	}

	if err := s.repo.RecordRedemption(ctx, tx, redemption); err != nil {
		return false, err
	}

	return true, nil
}

func validateCoupon(coupon *Coupon) error {
	switch coupon.Type {
	case CouponPercentage:
		if coupon.Percent == nil || !coupon.Percent.Valid() {
			return common.NewValidationError("percentage coupon requires a percent in (0, 100]")
		}
	case CouponFixed:
		if coupon.Amount == nil || coupon.Amount.IsZero() || coupon.Amount.IsNegative() {
			return common.NewUnprocessableError(common.CodeInvalidAmount, "fixed coupon requires a positive amount", nil)
		}
	default:
		return common.NewValidationError("coupon_type must be 'percentage' or 'fixed'")
	}

	if coupon.MinBookingAmount != nil && coupon.MinBookingAmount.IsNegative() {
		return common.NewUnprocessableError(common.CodeInvalidAmount, "min_booking_amount cannot be negative", nil)
	}

	if coupon.MaxUsages != nil && *coupon.MaxUsages <= 0 {
		return common.NewValidationError("max_usages must be positive when set")
	}

	return nil
}
