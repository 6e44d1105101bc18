package service

import (
	"context"
	"database/sql"
	"errors"
	"html"
	"io"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const (
	reviewImageFolder  = "review-images"
	maxImagesPerReview = 5
)

type ReviewService interface {
	CheckEligibility(ctx context.Context, userID, productID, orderID uuid.UUID) (*models.ReviewEligibility, error)
	CreateReview(ctx context.Context, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error)
	GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error)
	UpdateReview(ctx context.Context, userID, id uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error)
	DeleteReview(ctx context.Context, requester *models.Claims, id uuid.UUID) error
	AddImage(ctx context.Context, userID, id uuid.UUID, file io.Reader) (*models.Review, error)
	ListProductReviews(ctx context.Context, productID uuid.UUID, page, size int) (*models.ProductReviews, error)
}

type reviewService struct {
	repo   repository.ReviewRepository
	orders repository.OrderRepository
	store  storage.FileStore
	policy *bluemonday.Policy
}

func NewReviewService(repo repository.ReviewRepository, orders repository.OrderRepository, store storage.FileStore) ReviewService {
	return &reviewService{
		repo:   repo,
		orders: orders,
		store:  store,
		policy: bluemonday.StrictPolicy(),
	}
}

// CheckEligibility reports whether the user may review productID for
// orderID: the order must be theirs, delivered, contain the product and not
// be reviewed for it yet.
func (s *reviewService) CheckEligibility(ctx context.Context, userID, productID, orderID uuid.UUID) (*models.ReviewEligibility, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.ReviewEligibility{Reason: "order not found"}, nil
		}

		return nil, appErrors.DatabaseError("Failed to load order").WithError(err)
	}

	switch {
	case order.UserID != userID:
		return &models.ReviewEligibility{Reason: "order does not belong to you"}, nil
	case order.Status != models.OrderStatusDelivered:
		return &models.ReviewEligibility{Reason: "order has not been delivered yet"}, nil
	case !order.Contains(productID):
		return &models.ReviewEligibility{Reason: "product is not part of this order"}, nil
	}

	exists, err := s.repo.ReviewExists(ctx, userID, productID, orderID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to check existing reviews").WithError(err)
	}

	if exists {
		return &models.ReviewEligibility{Reason: "product already reviewed for this order"}, nil
	}

	return &models.ReviewEligibility{Eligible: true}, nil
}

func (s *reviewService) CreateReview(ctx context.Context, userID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {
	eligibility, err := s.CheckEligibility(ctx, userID, req.ProductID, req.OrderID)
	if err != nil {
		return nil, err
	}

	if !eligibility.Eligible {
		return nil, appErrors.NotEligibleError("You cannot review this product").WithDetail(eligibility.Reason)
	}

	review := &models.Review{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: req.ProductID,
		OrderID:   req.OrderID,
		Rating:    req.Rating,
		Comment:   s.sanitize(req.Comment),
		Images:    []string{},
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		if isDuplicate(err) {
			return nil, appErrors.DuplicateEntryError("Product already reviewed for this order").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create review").WithError(err)
	}

	return review, nil
}

func (s *reviewService) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.repo.GetReviewByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Review not found")
	}

	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, userID, id uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error) {
	review, err := s.ownedReview(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = s.sanitize(*req.Comment)
	}

	if err := s.repo.UpdateReview(ctx, review); err != nil {
		return nil, appErrors.DatabaseError("Failed to update review").WithError(err)
	}

	return review, nil
}

// DeleteReview removes a review and its stored images. Admins may delete
// any review.
func (s *reviewService) DeleteReview(ctx context.Context, requester *models.Claims, id uuid.UUID) error {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return err
	}

	if !canAccess(requester, review.UserID) {
		return appErrors.ForbiddenError("You do not have permission to delete this review")
	}

	if err := s.repo.DeleteReview(ctx, id); err != nil {
		return lookupError(err, "Review not found")
	}

	for _, url := range review.Images {
		if err := s.store.Remove(ctx, url); err != nil {
			middleware.LoggerFromContext(ctx).Warn("Failed to remove review image", slog.String("url", url), slog.Any("error", err))
		}
	}

	return nil
}

func (s *reviewService) AddImage(ctx context.Context, userID, id uuid.UUID, file io.Reader) (*models.Review, error) {
	review, err := s.ownedReview(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if len(review.Images) >= maxImagesPerReview {
		return nil, appErrors.BadRequestError("A review can have at most 5 images")
	}

	url, err := s.store.SaveImage(ctx, reviewImageFolder, file)
	if err != nil {
		return nil, uploadError(err)
	}

	if err := s.repo.AddImage(ctx, review.ID, url); err != nil {
		if rmErr := s.store.Remove(ctx, url); rmErr != nil {
			middleware.LoggerFromContext(ctx).Warn("Failed to remove orphaned review image", slog.String("url", url), slog.Any("error", rmErr))
		}

		return nil, appErrors.DatabaseError("Failed to attach image").WithError(err)
	}

	review.Images = append(review.Images, url)

	return review, nil
}

func (s *reviewService) ListProductReviews(ctx context.Context, productID uuid.UUID, page, size int) (*models.ProductReviews, error) {
	summary, err := s.repo.GetReviewSummary(ctx, productID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load review summary").WithError(err)
	}

	reviews, total, err := s.repo.ListReviewsByProduct(ctx, productID, page, size)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch reviews").WithError(err)
	}

	if reviews == nil {
		reviews = []models.Review{}
	}

	return &models.ProductReviews{
		Summary:  summary,
		Reviews:  reviews,
		Total:    total,
		Page:     page,
		PageSize: size,
	}, nil
}

func (s *reviewService) ownedReview(ctx context.Context, userID, id uuid.UUID) (*models.Review, error) {
	review, err := s.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}

	if review.UserID != userID {
		return nil, appErrors.ForbiddenError("You can only modify your own reviews")
	}

	return review, nil
}

// sanitize strips all markup from user supplied review text. The policy
// escapes what remains, so entities are decoded back to plain text; the API
// serves JSON, not HTML.
func (s *reviewService) sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}
