package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type VoucherHandler struct {
	voucherService service.VoucherService
	validator      *validator.Validate
}

func NewVoucherHandler(voucherService service.VoucherService) *VoucherHandler {
	return &VoucherHandler{voucherService: voucherService, validator: validator.New()}
}

func (h *VoucherHandler) CreateVoucher() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		var req models.CreateVoucherRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		voucher, err := h.voucherService.CreateVoucher(r.Context(), &req)
		if err != nil {
			logger.Error("Voucher creation failed", slog.String("code", req.Code), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Voucher created", slog.String("code", voucher.Code))
		response.Success(w, http.StatusCreated, voucher)
	}
}

// ApplyVoucher previews the discount a code gives on a subtotal.
func (h *VoucherHandler) ApplyVoucher() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ApplyVoucherRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if req.Subtotal.IsNegative() {
			response.Error(w, errors.ValidationError("Subtotal cannot be negative"))
			return
		}

		discount, err := h.voucherService.ApplyVoucher(r.Context(), req.Code, req.Subtotal)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, discount)
	}
}
