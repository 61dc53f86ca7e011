package reviews

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles database operations for reviews
type Repository struct {
	db *pgxpool.Pool
}

// Ensure Repository implements ReviewsRepository.
var _ ReviewsRepository = (*Repository)(nil)

// NewRepository creates a new reviews repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create inserts a new review
func (r *Repository) Create(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (id, product_id, user_id, booking_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	review.ID = uuid.New()
	review.CreatedAt = time.Now()

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.UserID,
		review.BookingID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// GetByProductAndUser retrieves a user's review of a product. Returns nil
// when none exists.
func (r *Repository) GetByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*Review, error) {
	query := `
		SELECT id, product_id, user_id, booking_id, rating, comment, created_at
		FROM reviews
		WHERE product_id = $1 AND user_id = $2
	`

	review := &Review{}
	err := r.db.QueryRow(ctx, query, productID, userID).Scan(
		&review.ID,
		&review.ProductID,
		&review.UserID,
		&review.BookingID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return review, nil
}

// ListByProduct retrieves a product's reviews, newest first
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reviews WHERE product_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := `
		SELECT id, product_id, user_id, booking_id, rating, comment, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*Review{}
	for rows.Next() {
		review := &Review{}
		err := rows.Scan(
			&review.ID,
			&review.ProductID,
			&review.UserID,
			&review.BookingID,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, total, rows.Err()
}

// GetSummary aggregates a product's review count and average rating
func (r *Repository) GetSummary(ctx context.Context, productID uuid.UUID) (*Summary, error) {
	query := `
		SELECT COUNT(*), COALESCE(AVG(rating), 0)
		FROM reviews
		WHERE product_id = $1
	`

	summary := &Summary{ProductID: productID}
	if err := r.db.QueryRow(ctx, query, productID).Scan(&summary.ReviewCount, &summary.AverageRating); err != nil {
		return nil, fmt.Errorf("failed to get review summary: %w", err)
	}

	return summary, nil
}

// FindReviewableBooking finds a booking that entitles the user to review
// the product: one they have paid for or completed. Returns nil when no
// such booking exists.
func (r *Repository) FindReviewableBooking(ctx context.Context, productID, userID uuid.UUID) (*uuid.UUID, error) {
	query := `
		SELECT id
		FROM bookings
		WHERE product_id = $1 AND user_id = $2 AND status IN ('paid', 'completed')
		ORDER BY created_at DESC
		LIMIT 1
	`

	var bookingID uuid.UUID
	err := r.db.QueryRow(ctx, query, productID, userID).Scan(&bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find reviewable booking: %w", err)
	}

	return &bookingID, nil
}
