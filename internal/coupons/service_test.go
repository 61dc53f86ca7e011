package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sahalat/booking-engine/pkg/common"
	"github.com/sahalat/booking-engine/pkg/money"
)

type mockCouponsRepository struct {
	mock.Mock
}

func (m *mockCouponsRepository) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	args := m.Called(ctx, code)
	coupon, _ := args.Get(0).(*Coupon)
	return coupon, args.Error(1)
}

func (m *mockCouponsRepository) GetByID(ctx context.Context, couponID uuid.UUID) (*Coupon, error) {
	args := m.Called(ctx, couponID)
	coupon, _ := args.Get(0).(*Coupon)
	return coupon, args.Error(1)
}

func (m *mockCouponsRepository) Create(ctx context.Context, coupon *Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *mockCouponsRepository) Update(ctx context.Context, coupon *Coupon) error {
	args := m.Called(ctx, coupon)
	return args.Error(0)
}

func (m *mockCouponsRepository) Deactivate(ctx context.Context, couponID uuid.UUID) error {
	args := m.Called(ctx, couponID)
	return args.Error(0)
}

func (m *mockCouponsRepository) List(ctx context.Context, limit, offset int) ([]*Coupon, int, error) {
	args := m.Called(ctx, limit, offset)
	coupons, _ := args.Get(0).([]*Coupon)
	return coupons, args.Int(1), args.Error(2)
}

func (m *mockCouponsRepository) IncrementUsage(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tx, couponID)
	return args.Bool(0), args.Error(1)
}

func (m *mockCouponsRepository) RecordRedemption(ctx context.Context, tx pgx.Tx, redemption *Redemption) error {
	args := m.Called(ctx, tx, redemption)
	return args.Error(0)
}

func (m *mockCouponsRepository) GetUsageStats(ctx context.Context, couponID uuid.UUID) (map[string]interface{}, error) {
	args := m.Called(ctx, couponID)
	stats, _ := args.Get(0).(map[string]interface{})
	return stats, args.Error(1)
}

func validPercentageCoupon() *Coupon {
	percent := money.MustPercent("10")
	return &Coupon{
		ID:       uuid.New(),
		Code:     "SAVE10",
		Type:     CouponPercentage,
		Percent:  &percent,
		IsActive: true,
	}
}

func TestValidateNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	repo.On("FindByCode", ctx, "MISSING").Return(nil, nil).Once()

	result, err := service.Validate(ctx, "MISSING", money.MustFromString("50.000"))
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, ReasonNotFound, result.Reason)
	repo.AssertExpectations(t)
}

func TestValidateInactive(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)
	coupon := validPercentageCoupon()
	coupon.IsActive = false

	repo.On("FindByCode", ctx, "SAVE10").Return(coupon, nil).Once()

	result, err := service.Validate(ctx, "SAVE10", money.MustFromString("50.000"))
	assert.NoError(t, err)
	assert.Equal(t, ReasonInactive, result.Reason)
	repo.AssertExpectations(t)
}

func TestValidateExpired(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	coupon := validPercentageCoupon()
	expiry := now.Add(-time.Hour)
	coupon.ExpiresAt = &expiry

	repo.On("FindByCode", ctx, "SAVE10").Return(coupon, nil).Once()

	result, err := service.Validate(ctx, "SAVE10", money.MustFromString("50.000"))
	assert.NoError(t, err)
	assert.Equal(t, ReasonExpired, result.Reason)
	repo.AssertExpectations(t)
}

func TestValidateExpiryBoundaryIsExpired(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	coupon := validPercentageCoupon()
	coupon.ExpiresAt = &now

	repo.On("FindByCode", ctx, "SAVE10").Return(coupon, nil).Once()

	result, err := service.Validate(ctx, "SAVE10", money.MustFromString("50.000"))
	assert.NoError(t, err)
	assert.Equal(t, ReasonExpired, result.Reason)
	repo.AssertExpectations(t)
}

func TestValidateBelowMinimum(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	coupon := validPercentageCoupon()
	minAmount := money.MustFromString("100.000")
	coupon.MinBookingAmount = &minAmount

	repo.On("FindByCode", ctx, "SAVE10").Return(coupon, nil).Once()

	result, err := service.Validate(ctx, "SAVE10", money.MustFromString("99.999"))
	assert.NoError(t, err)
	assert.Equal(t, ReasonBelowMinimum, result.Reason)
	repo.AssertExpectations(t)
}

func TestValidateMinimumBoundaryPasses(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	coupon := validPercentageCoupon()
	minAmount := money.MustFromString("100.000")
	coupon.MinBookingAmount = &minAmount

	repo.On("FindByCode", ctx, "SAVE10").Return(coupon, nil).Once()

	result, err := service.Validate(ctx, "SAVE10", money.MustFromString("100.000"))
	assert.NoError(t, err)
	assert.True(t, result.Valid)
	repo.AssertExpectations(t)
}

func TestValidateUsageExhausted(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	coupon := validPercentageCoupon()
	maxUsages := 100
	coupon.MaxUsages = &maxUsages
	coupon.UsedCount = 100

	repo.On("FindByCode", ctx, "SAVE10").Return(coupon, nil).Once()

	result, err := service.Validate(ctx, "SAVE10", money.MustFromString("50.000"))
	assert.NoError(t, err)
	assert.Equal(t, ReasonUsageExhausted, result.Reason)
	repo.AssertExpectations(t)
}

func TestValidateChecksRunInOrder(t *testing.T) {
	// An inactive, expired coupon reports inactive first.
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	coupon := validPercentageCoupon()
	coupon.IsActive = false
	expiry := time.Now().Add(-time.Hour)
	coupon.ExpiresAt = &expiry
	maxUsages := 1
	coupon.MaxUsages = &maxUsages
	coupon.UsedCount = 1

	repo.On("FindByCode", ctx, "SAVE10").Return(coupon, nil).Once()

	result, err := service.Validate(ctx, "SAVE10", money.MustFromString("50.000"))
	assert.NoError(t, err)
	assert.Equal(t, ReasonInactive, result.Reason)
	repo.AssertExpectations(t)
}

func TestCreateCanonicalizesCode(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	percent := money.MustPercent("15")
	coupon := &Coupon{Code: "  summer15 ", Type: CouponPercentage, Percent: &percent, IsActive: true}

	repo.On("FindByCode", ctx, "SUMMER15").Return(nil, nil).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(c *Coupon) bool {
		return c.Code == "SUMMER15"
	})).Return(nil).Once()

	assert.NoError(t, service.Create(ctx, coupon))
	repo.AssertExpectations(t)
}

func TestCreateRejectsDuplicateCode(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	percent := money.MustPercent("15")
	coupon := &Coupon{Code: "SUMMER15", Type: CouponPercentage, Percent: &percent}

	repo.On("FindByCode", ctx, "SUMMER15").Return(validPercentageCoupon(), nil).Once()

	err := service.Create(ctx, coupon)
	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestCreateRejectsBadCode(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	percent := money.MustPercent("15")
	for _, code := range []string{"", "ab", "has space", "emoji✨"} {
		err := service.Create(ctx, &Coupon{Code: code, Type: CouponPercentage, Percent: &percent})
		assert.Error(t, err, "code %q should be rejected", code)
	}
	repo.AssertNotCalled(t, "Create")
}

func TestCreateRejectsNonPositiveMaxUsages(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	percent := money.MustPercent("15")
	zero := 0
	err := service.Create(ctx, &Coupon{Code: "SUMMER15", Type: CouponPercentage, Percent: &percent, MaxUsages: &zero})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestCreateRejectsNonPositiveFixedAmount(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	zero := money.Money(0)
	err := service.Create(ctx, &Coupon{Code: "FLAT0", Type: CouponFixed, Amount: &zero})
	assert.Error(t, err)
	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeInvalidAmount, appErr.ErrorCode)
	repo.AssertNotCalled(t, "Create")
}

func TestConsumeRecordsRedemption(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	redemption := &Redemption{
		CouponID:   uuid.New(),
		BookingID:  uuid.New(),
		UserID:     uuid.New(),
		Discounted: money.MustFromString("5.000"),
	}

	repo.On("IncrementUsage", ctx, nil, redemption.CouponID).Return(true, nil).Once()
	repo.On("RecordRedemption", ctx, nil, redemption).Return(nil).Once()

	ok, err := service.Consume(ctx, nil, redemption)
	assert.NoError(t, err)
	assert.True(t, ok)
	repo.AssertExpectations(t)
}

func TestConsumeBudgetExhausted(t *testing.T) {
	ctx := context.Background()
	repo := new(mockCouponsRepository)
	service := NewService(repo)

	redemption := &Redemption{CouponID: uuid.New(), BookingID: uuid.New()}

	repo.On("IncrementUsage", ctx, nil, redemption.CouponID).Return(false, nil).Once()

	ok, err := service.Consume(ctx, nil, redemption)
	assert.NoError(t, err)
	assert.False(t, ok)
	repo.AssertNotCalled(t, "RecordRedemption")
}
