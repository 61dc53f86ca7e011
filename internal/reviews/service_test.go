package reviews

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sahalat/booking-engine/pkg/common"
)

type mockReviewsRepository struct {
	mock.Mock
}

func (m *mockReviewsRepository) Create(ctx context.Context, review *Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewsRepository) GetByProductAndUser(ctx context.Context, productID, userID uuid.UUID) (*Review, error) {
	args := m.Called(ctx, productID, userID)
	review, _ := args.Get(0).(*Review)
	return review, args.Error(1)
}

func (m *mockReviewsRepository) ListByProduct(ctx context.Context, productID uuid.UUID, limit, offset int) ([]*Review, int, error) {
	args := m.Called(ctx, productID, limit, offset)
	reviews, _ := args.Get(0).([]*Review)
	return reviews, args.Int(1), args.Error(2)
}

func (m *mockReviewsRepository) GetSummary(ctx context.Context, productID uuid.UUID) (*Summary, error) {
	args := m.Called(ctx, productID)
	summary, _ := args.Get(0).(*Summary)
	return summary, args.Error(1)
}

func (m *mockReviewsRepository) FindReviewableBooking(ctx context.Context, productID, userID uuid.UUID) (*uuid.UUID, error) {
	args := m.Called(ctx, productID, userID)
	bookingID, _ := args.Get(0).(*uuid.UUID)
	return bookingID, args.Error(1)
}

func TestSubmitReview(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewsRepository)
	service := NewService(repo)
	productID := uuid.New()
	userID := uuid.New()
	bookingID := uuid.New()

	repo.On("GetByProductAndUser", ctx, productID, userID).Return(nil, nil).Once()
	repo.On("FindReviewableBooking", ctx, productID, userID).Return(&bookingID, nil).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(r *Review) bool {
		return r.ProductID == productID && r.UserID == userID && r.BookingID == bookingID && r.Rating == 5
	})).Return(nil).Once()

	review, err := service.Submit(ctx, productID, userID, 5, "great trip")
	assert.NoError(t, err)
	assert.Equal(t, "great trip", review.Comment)
	repo.AssertExpectations(t)
}

func TestSubmitReviewRatingOutOfRange(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewsRepository)
	service := NewService(repo)

	for _, rating := range []int{0, -1, 6} {
		_, err := service.Submit(ctx, uuid.New(), uuid.New(), rating, "")
		assert.Error(t, err, "rating %d should be rejected", rating)
	}
	repo.AssertNotCalled(t, "Create")
}

func TestSubmitReviewTooLongComment(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewsRepository)
	service := NewService(repo)

	_, err := service.Submit(ctx, uuid.New(), uuid.New(), 4, strings.Repeat("x", maxCommentLength+1))
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestSubmitReviewAlreadyReviewed(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewsRepository)
	service := NewService(repo)
	productID := uuid.New()
	userID := uuid.New()

	repo.On("GetByProductAndUser", ctx, productID, userID).Return(&Review{ID: uuid.New()}, nil).Once()

	_, err := service.Submit(ctx, productID, userID, 4, "")
	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Code)
	repo.AssertNotCalled(t, "Create")
}

func TestSubmitReviewWithoutEligibleBooking(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewsRepository)
	service := NewService(repo)
	productID := uuid.New()
	userID := uuid.New()

	repo.On("GetByProductAndUser", ctx, productID, userID).Return(nil, nil).Once()
	repo.On("FindReviewableBooking", ctx, productID, userID).Return(nil, nil).Once()

	_, err := service.Submit(ctx, productID, userID, 4, "")
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestCanReview(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewsRepository)
	service := NewService(repo)
	productID := uuid.New()
	userID := uuid.New()
	bookingID := uuid.New()

	repo.On("GetByProductAndUser", ctx, productID, userID).Return(nil, nil).Once()
	repo.On("FindReviewableBooking", ctx, productID, userID).Return(&bookingID, nil).Once()

	canReview, err := service.CanReview(ctx, productID, userID)
	assert.NoError(t, err)
	assert.True(t, canReview)
}

func TestCanReviewFalseWhenAlreadyReviewed(t *testing.T) {
	ctx := context.Background()
	repo := new(mockReviewsRepository)
	service := NewService(repo)
	productID := uuid.New()
	userID := uuid.New()

	repo.On("GetByProductAndUser", ctx, productID, userID).Return(&Review{ID: uuid.New()}, nil).Once()

	canReview, err := service.CanReview(ctx, productID, userID)
	assert.NoError(t, err)
	assert.False(t, canReview)
	repo.AssertNotCalled(t, "FindReviewableBooking")
}
