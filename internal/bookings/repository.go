package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sahalat/booking-engine/internal/pricing"
	"github.com/sahalat/booking-engine/pkg/money"
)

// Repository handles database operations for bookings
type Repository struct {
	db *pgxpool.Pool
}

// Ensure Repository implements BookingsRepository.
var _ BookingsRepository = (*Repository)(nil)

// NewRepository creates a new bookings repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `id, user_id, product_id, product_type, status,
	start_date, end_date, with_driver, participants,
	base_price, discounted_amount, coupon_discount, final_price, tier_breakdown,
	coupon_id, coupon_code, payment_ref, last_payment_error,
	created_at, updated_at, paid_at, cancelled_at, completed_at`

// Create inserts a new booking with its frozen price
func (r *Repository) Create(ctx context.Context, booking *Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, product_id, product_type, status,
			start_date, end_date, with_driver, participants,
			base_price, discounted_amount, coupon_discount, final_price, tier_breakdown,
			coupon_id, coupon_code, payment_ref, last_payment_error,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	booking.ID = uuid.New()
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	tierJSON, err := marshalTiers(booking.TierBreakdown)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.ProductID,
		booking.ProductType,
		booking.Status,
		booking.StartDate,
		booking.EndDate,
		booking.WithDriver,
		booking.Participants,
		booking.BasePrice.Units(),
		booking.DiscountedAmount.Units(),
		booking.CouponDiscount.Units(),
		booking.FinalPrice.Units(),
		tierJSON,
		booking.CouponID,
		nullableString(booking.CouponCode),
		nullableString(booking.PaymentRef),
		nullableString(booking.LastPaymentError),
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID. Returns nil when the booking does not
// exist.
func (r *Repository) GetByID(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// ListByUser retrieves a user's bookings, newest first
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Booking, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows, total)
}

// ListAll retrieves bookings across all users, optionally filtered by
// status
func (r *Repository) ListAll(ctx context.Context, status Status, limit, offset int) ([]*Booking, int, error) {
	countQuery := `SELECT COUNT(*) FROM bookings`
	listQuery := `SELECT ` + bookingColumns + ` FROM bookings`
	countArgs := []interface{}{}
	listArgs := []interface{}{}

	if status != "" {
		countQuery += ` WHERE status = $1`
		listQuery += ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		countArgs = append(countArgs, status)
		listArgs = append(listArgs, status, limit, offset)
	} else {
		listQuery += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		listArgs = append(listArgs, limit, offset)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	rows, err := r.db.Query(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows, total)
}

// CompareAndSetStatus moves a booking between statuses only when it is still
// in the expected one. The WHERE clause makes the check and the write a
// single atomic statement. Returns false when the booking was not in the
// expected status.
func (r *Repository) CompareAndSetStatus(ctx context.Context, tx pgx.Tx, bookingID uuid.UUID, from, to Status) (bool, error) {
	query := `UPDATE bookings SET status = $3, updated_at = NOW()`
	switch to {
	case StatusPaid:
		query += `, paid_at = NOW()`
	case StatusCancelled:
		query += `, cancelled_at = NOW()`
	case StatusCompleted:
		query += `, completed_at = NOW()`
	}
	query += ` WHERE id = $1 AND status = $2`

	tag, err := r.exec(tx).Exec(ctx, query, bookingID, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update booking status: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// SetPaymentRef stores the gateway reference on a booking
func (r *Repository) SetPaymentRef(ctx context.Context, bookingID uuid.UUID, ref string) error {
	query := `UPDATE bookings SET payment_ref = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, bookingID, ref); err != nil {
		return fmt.Errorf("failed to set payment ref: %w", err)
	}
	return nil
}

// SetLastPaymentError records a failed payment attempt without changing the
// booking status.
func (r *Repository) SetLastPaymentError(ctx context.Context, bookingID uuid.UUID, message string) error {
	query := `UPDATE bookings SET last_payment_error = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, bookingID, message); err != nil {
		return fmt.Errorf("failed to set payment error: %w", err)
	}
	return nil
}

// SweepCompleted marks every paid booking whose span ended before the cutoff
// as completed. Returns the number of bookings moved.
func (r *Repository) SweepCompleted(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE bookings
		SET status = $1, completed_at = NOW(), updated_at = NOW()
		WHERE status = $2 AND end_date < $3
	`

	tag, err := r.db.Exec(ctx, query, StatusCompleted, StatusPaid, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep completed bookings: %w", err)
	}

	return tag.RowsAffected(), nil
}

// WithTx runs fn inside a transaction, committing on nil and rolling back
// on error.
func (r *Repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (r *Repository) exec(tx pgx.Tx) executor {
	if tx != nil {
		return tx
	}
	return r.db
}

func scanBooking(row pgx.Row) (*Booking, error) {
	booking := &Booking{}
	var basePrice, discountedAmount, couponDiscount, finalPrice int64
	var tierJSON []byte
	var couponCode, paymentRef, lastPaymentError *string

	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ProductID,
		&booking.ProductType,
		&booking.Status,
		&booking.StartDate,
		&booking.EndDate,
		&booking.WithDriver,
		&booking.Participants,
		&basePrice,
		&discountedAmount,
		&couponDiscount,
		&finalPrice,
		&tierJSON,
		&booking.CouponID,
		&couponCode,
		&paymentRef,
		&lastPaymentError,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.PaidAt,
		&booking.CancelledAt,
		&booking.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.BasePrice = money.FromUnits(basePrice)
	booking.DiscountedAmount = money.FromUnits(discountedAmount)
	booking.CouponDiscount = money.FromUnits(couponDiscount)
	booking.FinalPrice = money.FromUnits(finalPrice)

	if len(tierJSON) > 0 {
		tiers := &pricing.TierBreakdown{}
		if err := json.Unmarshal(tierJSON, tiers); err != nil {
			return nil, fmt.Errorf("failed to decode tier breakdown: %w", err)
		}
		booking.TierBreakdown = tiers
	}

	booking.CouponCode = stringValue(couponCode)
	booking.PaymentRef = stringValue(paymentRef)
	booking.LastPaymentError = stringValue(lastPaymentError)

	return booking, nil
}

func collectBookings(rows pgx.Rows, total int) ([]*Booking, int, error) {
	bookings := []*Booking{}
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, total, rows.Err()
}

func marshalTiers(tiers *pricing.TierBreakdown) ([]byte, error) {
	if tiers == nil {
		return nil, nil
	}
	data, err := json.Marshal(tiers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tier breakdown: %w", err)
	}
	return data, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
