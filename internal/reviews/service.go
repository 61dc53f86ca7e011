package reviews

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/pkg/common"
)

// ReviewsRepository defines the storage operations required by the service.
type ReviewsRepository interface {
	Create(ctx context.Context, review *Review) error
	GetByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*Review, int, error)
	GetSummary(ctx context.Context, productID uuid.UUID) (*Summary, error)
	FindReviewableBooking(ctx context.Context, productID, userID uuid.UUID) (*uuid.UUID, error)
}

const maxCommentLength = 2000

// Service handles review business logic
type Service struct {
	repo ReviewsRepository
}

// NewService creates a new reviews service
func NewService(repo ReviewsRepository) *Service {
	return &Service{repo: repo}
}

// CanReview reports whether the user may review the product: they need a
// paid or completed booking for it and must not have reviewed it already.
func (s *Service) CanReview(ctx context.Context, productID, userID uuid.UUID) (bool, error) {
	existing, err := s.repo.GetByProductAndUser(ctx, productID, userID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	bookingID, err := s.repo.FindReviewableBooking(ctx, productID, userID)
	if err != nil {
		return false, err
	}

	return bookingID != nil, nil
}

// Submit creates a review after checking eligibility
func (s *Service) Submit(ctx context.Context, productID, userID uuid.UUID, rating int, comment string) (*Review, error) {
	if rating < 1 || rating > 5 {
		return nil, common.NewValidationError("rating must be between 1 and 5")
	}

	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return nil, common.NewValidationError("comment is too long")
	}

	existing, err := s.repo.GetByProductAndUser(ctx, productID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.NewConflictError("product already reviewed")
	}

	bookingID, err := s.repo.FindReviewableBooking(ctx, productID, userID)
	if err != nil {
		return nil, err
	}
	if bookingID == nil {
		return nil, common.NewUnprocessableError(common.CodeValidation,
			"a paid or completed booking is required to review", nil)
	}

	review := &Review{
		ProductID: productID,
		UserID:    userID,
		BookingID: *bookingID,
		Rating:    rating,
		Comment:   comment,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// ListByProduct retrieves a product's reviews
func (s *Service) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	return s.repo.ListByProduct(ctx, productID, limit, offset)
}

// GetSummary aggregates a product's reviews
func (s *Service) GetSummary(ctx context.Context, productID uuid.UUID) (*Summary, error) {
	return s.repo.GetSummary(ctx, productID)
}
