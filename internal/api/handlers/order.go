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

type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

// CreateOrder godoc
//
//	@Summary		Place an order
//	@Description	Checks out the selected cart lines. Stock is reserved and the lines leave the cart in one transaction.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		models.CreateOrderRequest	true	"Selected cart lines, address, shipping method and optional voucher"
//	@Success		201		{object}	models.Order				"Order placed"
//	@Failure		400		{object}	response.ErrorResponse		"Validation error or lines not in the cart"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse		"Address, shipping method or product not found"
//	@Failure		409		{object}	response.ErrorResponse		"Insufficient stock"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.CreateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid order input")
			return
		}

		order, err := h.orderService.CreateOrder(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to create order", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order created", slog.String("orderId", order.ID.String()))
		response.Success(w, http.StatusCreated, order)
	}
}

// GetOrder godoc
//
//	@Summary	Get an order by ID
//	@Tags		Orders
//	@Produce	json
//	@Param		id	path		string					true	"Order ID (UUID)"	Format(uuid)
//	@Success	200	{object}	models.Order
//	@Failure	400	{object}	response.ErrorResponse	"Invalid order ID format"
//	@Failure	401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure	403	{object}	response.ErrorResponse	"Order belongs to another customer"
//	@Failure	404	{object}	response.ErrorResponse	"Order not found"
//	@Security	BearerAuth
//	@Router		/orders/{id} [get]
func (h *OrderHandler) GetOrder() http.HandlerFunc {
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

		order, err := h.orderService.GetOrder(r.Context(), claims, id)
		if err != nil {
			logger.Warn("Failed to get order", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// ListOrders godoc
//
//	@Summary	List the caller's orders
//	@Tags		Orders
//	@Produce	json
//	@Param		page		query		int												false	"Page number (default: 1)"						minimum(1)
//	@Param		pageSize	query		int												false	"Items per page (default: 10, max: 100)"	minimum(1)	maximum(100)
//	@Success	200			{object}	models.PaginatedResponse{data=[]models.Order}
//	@Failure	401			{object}	response.ErrorResponse	"Authentication required"
//	@Security	BearerAuth
//	@Router		/orders [get]
func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		page, pageSize := utils.ParsePagination(r)

		orders, total, err := h.orderService.ListOrders(r.Context(), claims.UserID, page, pageSize)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, paginated(orders, total, page, pageSize))
	}
}

func (h *OrderHandler) CancelOrder() http.HandlerFunc {
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

		order, err := h.orderService.CancelOrder(r.Context(), claims.UserID, id)
		if err != nil {
			logger.Warn("Failed to cancel order", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order cancelled", slog.String("orderId", id.String()))
		response.Success(w, http.StatusOK, order)
	}
}

// ListAllOrders serves the admin order list, optionally filtered by ?status=.
func (h *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := middleware.LoggerFromContext(r.Context())

		page, pageSize := utils.ParsePagination(r)

		status := models.OrderStatus(r.URL.Query().Get("status"))
		if status != "" {
			if err := h.validator.Var(string(status), "oneof=pending confirmed processing shipped delivered cancelled"); err != nil {
				response.Error(w, errors.BadRequestError("Invalid status filter").WithDetail(string(status)))
				return
			}
		}

		orders, total, err := h.orderService.ListAllOrders(r.Context(), status, page, pageSize)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, paginated(orders, total, page, pageSize))
	}
}

// UpdateOrderStatus godoc
//
//	@Summary		Move an order to a new status (admin)
//	@Description	Allowed: pending->confirmed|cancelled, confirmed->processing|cancelled, processing->shipped|cancelled, shipped->delivered. Shipping requires a paid order plus carrier and tracking number.
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Order ID (UUID)"	Format(uuid)
//	@Param			status	body		models.UpdateOrderStatusRequest	true	"Target status"
//	@Success		200		{object}	models.Order
//	@Failure		400		{object}	response.ErrorResponse	"Illegal transition or unpaid order"
//	@Failure		403		{object}	response.ErrorResponse	"Admin access required"
//	@Failure		404		{object}	response.ErrorResponse	"Order not found"
//	@Failure		409		{object}	response.ErrorResponse	"Status changed concurrently"
//	@Security		BearerAuth
//	@Router			/admin/orders/{id}/status [patch]
func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
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

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateOrderStatus(r.Context(), id, &req)
		if err != nil {
			logger.Warn("Failed to update order status",
				slog.String("orderId", id.String()),
				slog.String("status", string(req.Status)),
				slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order status updated",
			slog.String("orderId", id.String()),
			slog.String("status", string(order.Status)),
			slog.String("adminId", claims.UserID.String()))
		response.Success(w, http.StatusOK, order)
	}
}
