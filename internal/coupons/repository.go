package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sahalat/booking-engine/pkg/money"
)

// Repository handles database operations for coupons
type Repository struct {
	db *pgxpool.Pool
}

// Ensure Repository implements CouponsRepository.
var _ CouponsRepository = (*Repository)(nil)

// NewRepository creates a new coupons repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const couponColumns = `id, code, coupon_type, percent_bp, amount, min_booking_amount, max_usages, used_count, expires_at, is_active, created_by, created_at, updated_at`

// FindByCode retrieves a coupon by its canonical (uppercase) code. Returns
// nil when no such coupon exists.
func (r *Repository) FindByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	coupon, err := r.scanCoupon(r.db.QueryRow(ctx, query, strings.ToUpper(code)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find coupon by code: %w", err)
	}

	return coupon, nil
}

// GetByID retrieves a coupon by ID. Returns nil when the coupon does not
// exist.
func (r *Repository) GetByID(ctx context.Context, couponID uuid.UUID) (*Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	coupon, err := r.scanCoupon(r.db.QueryRow(ctx, query, couponID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	return coupon, nil
}

// Create creates a new coupon
func (r *Repository) Create(ctx context.Context, coupon *Coupon) error {
	query := `
		INSERT INTO coupons (id, code, coupon_type, percent_bp, amount, min_booking_amount, max_usages, used_count, expires_at, is_active, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	coupon.ID = uuid.New()
	now := time.Now()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.Type,
		percentPtrToUnits(coupon.Percent),
		moneyPtrToUnits(coupon.Amount),
		moneyPtrToUnits(coupon.MinBookingAmount),
		coupon.MaxUsages,
		coupon.UsedCount,
		coupon.ExpiresAt,
		coupon.IsActive,
		coupon.CreatedBy,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	return nil
}

// Update updates a coupon's configuration. The usage counter is managed
// exclusively by IncrementUsage.
func (r *Repository) Update(ctx context.Context, coupon *Coupon) error {
	query := `
		UPDATE coupons
		SET coupon_type = $2, percent_bp = $3, amount = $4, min_booking_amount = $5,
			max_usages = $6, expires_at = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`

	coupon.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx, query,
		coupon.ID,
		coupon.Type,
		percentPtrToUnits(coupon.Percent),
		moneyPtrToUnits(coupon.Amount),
		moneyPtrToUnits(coupon.MinBookingAmount),
		coupon.MaxUsages,
		coupon.ExpiresAt,
		coupon.IsActive,
		coupon.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// Deactivate deactivates a coupon
func (r *Repository) Deactivate(ctx context.Context, couponID uuid.UUID) error {
	query := `UPDATE coupons SET is_active = false, updated_at = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, couponID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to deactivate coupon: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// List retrieves all coupons with pagination
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Coupon, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	query := `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []*Coupon{}
	for rows.Next() {
		coupon, err := r.scanCoupon(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}

	return coupons, total, rows.Err()
}

// IncrementUsage consumes one unit of a coupon's usage budget. The
// conditional update makes the check and the increment a single atomic
// statement, so concurrent confirmations can never push used_count past
// max_usages. Returns false when the budget is already exhausted.
func (r *Repository) IncrementUsage(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) (bool, error) {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE id = $1 AND (max_usages IS NULL OR used_count < max_usages)
	`

	tag, err := r.exec(tx).Exec(ctx, query, couponID)
	if err != nil {
		return false, fmt.Errorf("failed to increment coupon usage: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// RecordRedemption inserts the redemption row tying a coupon consumption to
// a paid booking. booking_id is unique, so a duplicate confirmation cannot
// double-record.
func (r *Repository) RecordRedemption(ctx context.Context, tx pgx.Tx, redemption *Redemption) error {
	query := `
		INSERT INTO coupon_redemptions (id, coupon_id, booking_id, user_id, discounted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (booking_id) DO NOTHING
	`

	redemption.ID = uuid.New()
	redemption.CreatedAt = time.Now()

	_, err := r.exec(tx).Exec(ctx, query,
		redemption.ID,
		redemption.CouponID,
		redemption.BookingID,
		redemption.UserID,
		redemption.Discounted.Units(),
		redemption.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to record coupon redemption: %w", err)
	}

	return nil
}

// GetUsageStats returns redemption totals for a coupon
func (r *Repository) GetUsageStats(ctx context.Context, couponID uuid.UUID) (map[string]interface{}, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(discounted), 0)
		FROM coupon_redemptions
		WHERE coupon_id = $1
	`

	var redemptions int
	var totalDiscounted int64
	if err := r.db.QueryRow(ctx, query, couponID).Scan(&redemptions, &totalDiscounted); err != nil {
		return nil, fmt.Errorf("failed to get coupon usage stats: %w", err)
	}

	return map[string]interface{}{
		"redemptions":      redemptions,
		"total_discounted": money.FromUnits(totalDiscounted),
	}, nil
}

type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// exec routes statements through the caller's transaction when one is
// supplied.
func (r *Repository) exec(tx pgx.Tx) executor {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *Repository) scanCoupon(row pgx.Row) (*Coupon, error) {
	coupon := &Coupon{}
	var percentBP *int64
	var amount, minBookingAmount *int64
	err := row.Scan(
		&coupon.ID,
		&coupon.Code,
		&coupon.Type,
		&percentBP,
		&amount,
		&minBookingAmount,
		&coupon.MaxUsages,
		&coupon.UsedCount,
		&coupon.ExpiresAt,
		&coupon.IsActive,
		&coupon.CreatedBy,
		&coupon.CreatedAt,
		&coupon.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	coupon.Percent = unitsToPercentPtr(percentBP)
	coupon.Amount = unitsToMoneyPtr(amount)
	coupon.MinBookingAmount = unitsToMoneyPtr(minBookingAmount)
	return coupon, nil
}

func moneyPtrToUnits(m *money.Money) *int64 {
	if m == nil {
		return nil
	}
	units := m.Units()
	return &units
}

func unitsToMoneyPtr(units *int64) *money.Money {
	if units == nil {
		return nil
	}
	m := money.FromUnits(*units)
	return &m
}

func percentPtrToUnits(p *money.Percent) *int64 {
	if p == nil {
		return nil
	}
	bp := int64(*p)
	return &bp
}

func unitsToPercentPtr(bp *int64) *money.Percent {
	if bp == nil {
		return nil
	}
	p := money.Percent(*bp)
	return &p
}
