package mocks

import (
	"context"
	"io"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ReviewService struct {
	mock.Mock
}

func (m *ReviewService) review(args mock.Arguments) (*models.Review, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *ReviewService) CheckEligibility(ctx context.Context, userID, productID, orderID uuid.UUID) (*models.ReviewEligibility, error) {
	args := m.Called(ctx, userID, productID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewEligibility), args.Error(1)
}

func (m *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	return m.review(m.Called(ctx, userID, req))
}

func (m *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return m.review(m.Called(ctx, id))
}

func (m *ReviewService) UpdateReview(ctx context.Context, userID, id uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error) {
	return m.review(m.Called(ctx, userID, id, req))
}

func (m *ReviewService) DeleteReview(ctx context.Context, requester *models.Claims, id uuid.UUID) error {
	args := m.Called(ctx, requester, id)
	return args.Error(0)
}

func (m *ReviewService) AddImage(ctx context.Context, userID, id uuid.UUID, file io.Reader) (*models.Review, error) {
	return m.review(m.Called(ctx, userID, id, file))
}

func (m *ReviewService) ListProductReviews(ctx context.Context, productID uuid.UUID, page, size int) (*models.ProductReviews, error) {
	args := m.Called(ctx, productID, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductReviews), args.Error(1)
}
