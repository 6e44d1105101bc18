package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	ReviewExists(ctx context.Context, userID, productID, orderID uuid.UUID) (bool, error)
	AddImage(ctx context.Context, reviewID uuid.UUID, url string) error
	ListReviewsByProduct(ctx context.Context, productID uuid.UUID, page, size int) ([]models.Review, int, error)
	GetReviewSummary(ctx context.Context, productID uuid.UUID) (models.ReviewSummary, error)
}

type reviewRepository struct {
	DB *sql.DB
}

func NewReviewRepo(db *sql.DB) ReviewRepository {
	return &reviewRepository{DB: db}
}

func (r *reviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO reviews (id, user_id, product_id, order_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.DB.QueryRowContext(dbCtx, query, review.ID, review.UserID, review.ProductID, review.OrderID, review.Rating, review.Comment).
		Scan(&review.CreatedAt, &review.UpdatedAt)

	return translateUnique(err)
}

func (r *reviewRepository) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	review := models.Review{}
	err := r.DB.QueryRowContext(dbCtx, `
		SELECT id, user_id, product_id, order_id, rating, comment, created_at, updated_at
		FROM reviews WHERE id = $1`, id).
		Scan(&review.ID, &review.UserID, &review.ProductID, &review.OrderID, &review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		return nil, err
	}

	reviews := []models.Review{review}
	if err := r.attachImages(dbCtx, reviews); err != nil {
		return nil, err
	}

	return &reviews[0], nil
}

func (r *reviewRepository) UpdateReview(ctx context.Context, review *models.Review) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return r.DB.QueryRowContext(dbCtx, `
		UPDATE reviews SET rating = $1, comment = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`, review.Rating, review.Comment, review.ID).Scan(&review.UpdatedAt)
}

func (r *reviewRepository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	return expectAffected(result)
}

func (r *reviewRepository) ReviewExists(ctx context.Context, userID, productID, orderID uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool
	err := r.DB.QueryRowContext(dbCtx, `
		SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2 AND order_id = $3)`,
		userID, productID, orderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}

	return exists, nil
}

func (r *reviewRepository) AddImage(ctx context.Context, reviewID uuid.UUID, url string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if _, err := r.DB.ExecContext(dbCtx, `
		INSERT INTO review_images (id, review_id, url, created_at) VALUES ($1, $2, $3, NOW())`,
		uuid.New(), reviewID, url); err != nil {
		return fmt.Errorf("failed to add review image: %w", err)
	}

	return nil
}

func (r *reviewRepository) ListReviewsByProduct(ctx context.Context, productID uuid.UUID, page, size int) ([]models.Review, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM reviews WHERE product_id = $1`, productID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	rows, err := r.DB.QueryContext(dbCtx, `
		SELECT id, user_id, product_id, order_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, productID, size, (page-1)*size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(&review.ID, &review.UserID, &review.ProductID, &review.OrderID, &review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating review rows: %w", err)
	}

	if err := r.attachImages(dbCtx, reviews); err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *reviewRepository) GetReviewSummary(ctx context.Context, productID uuid.UUID) (models.ReviewSummary, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var summary models.ReviewSummary
	err := r.DB.QueryRowContext(dbCtx, `
		SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0)::float8, COUNT(*)
		FROM reviews WHERE product_id = $1`, productID).Scan(&summary.AverageRating, &summary.TotalCount)
	if err != nil {
		return models.ReviewSummary{}, fmt.Errorf("failed to summarise reviews: %w", err)
	}

	return summary, nil
}

func (r *reviewRepository) attachImages(ctx context.Context, reviews []models.Review) error {
	if len(reviews) == 0 {
		return nil
	}

	ids := make([]string, len(reviews))
	index := make(map[uuid.UUID]int, len(reviews))
	for i := range reviews {
		ids[i] = reviews[i].ID.String()
		index[reviews[i].ID] = i
		reviews[i].Images = []string{}
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT review_id, url FROM review_images
		WHERE review_id = ANY($1)
		ORDER BY created_at`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load review images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			reviewID uuid.UUID
			url      string
		)
		if err := rows.Scan(&reviewID, &url); err != nil {
			return fmt.Errorf("failed to scan review image: %w", err)
		}
		if i, ok := index[reviewID]; ok {
			reviews[i].Images = append(reviews[i].Images, url)
		}
	}

	return rows.Err()
}
