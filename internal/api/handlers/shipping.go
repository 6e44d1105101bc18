package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ShippingHandler struct {
	shippingService service.ShippingService
	validator       *validator.Validate
}

func NewShippingHandler(shippingService service.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService, validator: validator.New()}
}

// ListMethods returns the active methods. Admins pass ?all=true to include
// disabled ones.
func (h *ShippingHandler) ListMethods() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := true
		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok && claims.IsAdmin() && r.URL.Query().Get("all") == "true" {
			activeOnly = false
		}

		methods, err := h.shippingService.ListMethods(r.Context(), activeOnly)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Error("Failed to list shipping methods", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, methods)
	}
}

func (h *ShippingHandler) GetMethod() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		method, err := h.shippingService.GetMethod(r.Context(), id)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, method)
	}
}

func (h *ShippingHandler) CreateMethod() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		var req models.ShippingMethodRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		method, err := h.shippingService.CreateMethod(r.Context(), &req)
		if err != nil {
			logger.Error("Shipping method creation failed", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Shipping method created", slog.String("methodId", method.ID.String()))
		response.Success(w, http.StatusCreated, method)
	}
}

func (h *ShippingHandler) UpdateMethod() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.ShippingMethodRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		method, err := h.shippingService.UpdateMethod(r.Context(), id, &req)
		if err != nil {
			logger.Error("Shipping method update failed", slog.String("methodId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, method)
	}
}
