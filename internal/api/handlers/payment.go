package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const maxWebhookPayload = 64 << 10

type PaymentHandler struct {
	paymentService service.PaymentService
	validator      *validator.Validate
	maxUploadSize  int64
}

func NewPaymentHandler(paymentService service.PaymentService, maxUploadSize int64) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, validator: validator.New(), maxUploadSize: maxUploadSize}
}

// UploadProof godoc
//
//	@Summary		Upload a bank transfer receipt
//	@Description	Stores the image and records a pending payment for admin review. The order payment status is not changed.
//	@Tags			Payments
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Order ID (UUID)"	Format(uuid)
//	@Param			proof	formData	file	true	"JPEG, PNG or WebP image"
//	@Success		201		{object}	models.Payment
//	@Failure		400		{object}	response.ErrorResponse	"Missing or unsupported file"
//	@Failure		403		{object}	response.ErrorResponse	"Order belongs to another customer"
//	@Failure		409		{object}	response.ErrorResponse	"Order is already paid"
//	@Failure		413		{object}	response.ErrorResponse	"File too large"
//	@Security		BearerAuth
//	@Router			/payments/orders/{id}/proof [post]
func (h *PaymentHandler) UploadProof() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		file, ok := formImage(w, r, "proof", h.maxUploadSize)
		if !ok {
			return
		}
		defer file.Close()

		payment, err := h.paymentService.UploadProof(r.Context(), claims.UserID, orderID, file)
		if err != nil {
			logger.Warn("Proof upload failed", slog.String("orderId", orderID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Payment proof uploaded",
			slog.String("orderId", orderID.String()),
			slog.String("paymentId", payment.ID.String()))
		response.Success(w, http.StatusCreated, payment)
	}
}

func (h *PaymentHandler) CreateCardPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		resp, err := h.paymentService.CreateCardPayment(r.Context(), claims.UserID, orderID)
		if err != nil {
			logger.Error("Failed to initiate card payment", slog.String("orderId", orderID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Card payment initiated", slog.String("paymentId", resp.Payment.ID.String()))
		response.Success(w, http.StatusCreated, resp)
	}
}

func (h *PaymentHandler) ListOrderPayments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _, ok := authenticated(w, r)
		if !ok {
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		payments, err := h.paymentService.ListOrderPayments(r.Context(), claims, orderID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, payments)
	}
}

func (h *PaymentHandler) GetInvoice() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _, ok := authenticated(w, r)
		if !ok {
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		invoice, err := h.paymentService.GetInvoice(r.Context(), claims, orderID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, invoice)
	}
}

// ConfirmPayment godoc
//
//	@Summary	Confirm a pending payment (admin)
//	@Tags		Admin
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Payment ID (UUID)"	Format(uuid)
//	@Param		review	body		models.ReviewPaymentRequest	false	"Optional note"
//	@Success	200		{object}	models.PaymentConfirmation
//	@Failure	404		{object}	response.ErrorResponse	"Payment not found"
//	@Failure	409		{object}	response.ErrorResponse	"Payment is not pending"
//	@Security	BearerAuth
//	@Router		/admin/payments/{id}/confirm [post]
func (h *PaymentHandler) ConfirmPayment() http.HandlerFunc {
	return h.review("confirm", func(r *http.Request, claims *models.Claims, req *reviewInput) (any, error) {
		return h.paymentService.ConfirmPayment(r.Context(), claims.UserID, req.id, req.note)
	})
}

func (h *PaymentHandler) RejectPayment() http.HandlerFunc {
	return h.review("reject", func(r *http.Request, claims *models.Claims, req *reviewInput) (any, error) {
		return h.paymentService.RejectPayment(r.Context(), claims.UserID, req.id, req.note)
	})
}

func (h *PaymentHandler) RefundPayment() http.HandlerFunc {
	return h.review("refund", func(r *http.Request, claims *models.Claims, req *reviewInput) (any, error) {
		return h.paymentService.RefundPayment(r.Context(), claims.UserID, req.id, req.note)
	})
}

type reviewInput struct {
	id   uuid.UUID
	note string
}

// review handles the admin payment actions. The JSON body with a note is
// optional.
func (h *PaymentHandler) review(action string, apply func(*http.Request, *models.Claims, *reviewInput) (any, error)) http.HandlerFunc {
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

		var req models.ReviewPaymentRequest
		if r.ContentLength > 0 && !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		result, err := apply(r, claims, &reviewInput{id: id, note: req.Note})
		if err != nil {
			logger.Warn("Payment review failed",
				slog.String("action", action),
				slog.String("paymentId", id.String()),
				slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Payment reviewed", slog.String("action", action), slog.String("paymentId", id.String()))
		response.Success(w, http.StatusOK, result)
	}
}

// HandleStripeWebhook is unauthenticated; the Stripe-Signature header is the
// only proof of origin.
func (h *PaymentHandler) HandleStripeWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookPayload))
		if err != nil {
			logger.Error("Error reading webhook body", slog.Any("error", err))
			response.Error(w, errors.BadRequestError("Failed to read request body"))
			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			logger.Warn("Missing Stripe signature")
			response.Error(w, errors.BadRequestError("Stripe Signature is required"))
			return
		}

		event, err := h.paymentService.ProcessWebhook(r.Context(), payload, signature)
		if err != nil {
			logger.Error("Failed to process payment webhook", slog.String("eventId", event.ID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Payment webhook processed", slog.String("eventId", event.ID), slog.String("eventType", string(event.Type)))
		response.Success(w, http.StatusOK, map[string]bool{"received": true})
	}
}
