package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ReviewRepository struct {
	mock.Mock
}

func (m *ReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *ReviewRepository) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *ReviewRepository) UpdateReview(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *ReviewRepository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ReviewRepository) ReviewExists(ctx context.Context, userID, productID, orderID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, productID, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *ReviewRepository) AddImage(ctx context.Context, reviewID uuid.UUID, url string) error {
	args := m.Called(ctx, reviewID, url)
	return args.Error(0)
}

func (m *ReviewRepository) ListReviewsByProduct(ctx context.Context, productID uuid.UUID, page, size int) ([]models.Review, int, error) {
	args := m.Called(ctx, productID, page, size)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Review), args.Int(1), args.Error(2)
}

func (m *ReviewRepository) GetReviewSummary(ctx context.Context, productID uuid.UUID) (models.ReviewSummary, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(models.ReviewSummary), args.Error(1)
}
