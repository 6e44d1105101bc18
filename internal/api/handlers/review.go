package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService service.ReviewService
	validator     *validator.Validate
	maxUploadSize int64
}

func NewReviewHandler(reviewService service.ReviewService, maxUploadSize int64) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, validator: validator.New(), maxUploadSize: maxUploadSize}
}

// CheckEligibility serves GET /reviews/eligibility?product_id=&order_id=
func (h *ReviewHandler) CheckEligibility() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _, ok := authenticated(w, r)
		if !ok {
			return
		}

		productID, err := utils.ParseQueryID(r, "product_id")
		if err != nil {
			response.Error(w, err)
			return
		}

		orderID, err := utils.ParseQueryID(r, "order_id")
		if err != nil {
			response.Error(w, err)
			return
		}

		eligibility, err := h.reviewService.CheckEligibility(r.Context(), claims.UserID, productID, orderID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, eligibility)
	}
}

func (h *ReviewHandler) CreateReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.CreateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.reviewService.CreateReview(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Warn("Review rejected",
				slog.String("productId", req.ProductID.String()),
				slog.String("orderId", req.OrderID.String()),
				slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Review created", slog.String("reviewId", review.ID.String()))
		response.Success(w, http.StatusCreated, review)
	}
}

func (h *ReviewHandler) GetReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		review, err := h.reviewService.GetReview(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, review)
	}
}

func (h *ReviewHandler) UpdateReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateReviewRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		review, err := h.reviewService.UpdateReview(r.Context(), claims.UserID, id, &req)
		if err != nil {
			logger.Warn("Review update failed", slog.String("reviewId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, review)
	}
}

func (h *ReviewHandler) DeleteReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.reviewService.DeleteReview(r.Context(), claims, id); err != nil {
			logger.Warn("Review deletion failed", slog.String("reviewId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Review deleted", slog.String("reviewId", id.String()))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *ReviewHandler) AddImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		file, ok := formImage(w, r, "image", h.maxUploadSize)
		if !ok {
			return
		}
		defer file.Close()

		review, err := h.reviewService.AddImage(r.Context(), claims.UserID, id, file)
		if err != nil {
			logger.Warn("Review image upload failed", slog.String("reviewId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, review)
	}
}

// ListProductReviews serves GET /products/{id}/reviews with the rating summary.
func (h *ReviewHandler) ListProductReviews() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		page, pageSize := utils.ParsePagination(r)

		reviews, err := h.reviewService.ListProductReviews(r.Context(), productID, page, pageSize)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, reviews)
	}
}
