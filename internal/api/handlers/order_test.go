package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/services/mocks"
	"github.com/aaravmahajanofficial/storefront/internal/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateOrder(t *testing.T) {
	userID := uuid.New()
	body := models.CreateOrderRequest{
		Items:            []models.CartLine{{ProductID: uuid.New(), Quantity: 1}},
		AddressID:        uuid.New(),
		ShippingMethodID: uuid.New(),
	}

	t.Run("Success - Order Created", func(t *testing.T) {
		// Arrange
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)
		expected := &models.Order{
			ID:            uuid.New(),
			UserID:        userID,
			Status:        models.OrderStatusPending,
			PaymentStatus: models.PaymentStatusUnpaid,
			Total:         decimal.RequireFromString("54.99"),
		}
		mockOrderService.On("CreateOrder", mock.Anything, userID, &body).Return(expected, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders", jsonBody(t, body), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		orderHandler.CreateOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
		var order models.Order
		decodeData(t, rr, &order)
		assert.Equal(t, expected.ID, order.ID)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.True(t, expected.Total.Equal(order.Total))
		mockOrderService.AssertExpectations(t)
	})

	t.Run("Failure - Unauthorized", func(t *testing.T) {
		// Arrange
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/orders", jsonBody(t, body), nil)
		rr := httptest.NewRecorder()

		// Act
		orderHandler.CreateOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockOrderService.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - No Items", func(t *testing.T) {
		// Arrange
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)
		empty := body
		empty.Items = nil

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders", jsonBody(t, empty), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		orderHandler.CreateOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeValidation, decodeError(t, rr).Code)
	})

	t.Run("Failure - Stock Conflict", func(t *testing.T) {
		// Arrange
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)
		mockOrderService.On("CreateOrder", mock.Anything, userID, mock.Anything).Return(nil, appErrors.ConflictError("Insufficient stock")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders", jsonBody(t, body), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		orderHandler.CreateOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, appErrors.ErrCodeConflict, decodeError(t, rr).Code)
	})
}

func TestGetOrder(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)
		mockOrderService.On("GetOrder", mock.Anything, mock.MatchedBy(func(c *models.Claims) bool { return c.UserID == userID }), orderID).
			Return(&models.Order{ID: orderID, UserID: userID}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil, userID, map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		orderHandler.GetOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockOrderService.AssertExpectations(t)
	})

	t.Run("Failure - Forbidden", func(t *testing.T) {
		// Arrange
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)
		mockOrderService.On("GetOrder", mock.Anything, mock.Anything, orderID).Return(nil, appErrors.ForbiddenError("You do not have permission to view this order")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil, userID, map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		orderHandler.GetOrder().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestListOrders(t *testing.T) {
	userID := uuid.New()

	mockOrderService := new(mocks.OrderService)
	orderHandler := handlers.NewOrderHandler(mockOrderService)
	mockOrderService.On("ListOrders", mock.Anything, userID, 1, 10).Return([]*models.Order{{ID: uuid.New()}}, 1, nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders?pageSize=1000", nil, userID, nil)
	rr := httptest.NewRecorder()

	orderHandler.ListOrders().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var page models.PaginatedResponse
	decodeData(t, rr, &page)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 10, page.PageSize)
	mockOrderService.AssertExpectations(t)
}

func TestCancelOrderHandler(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	mockOrderService := new(mocks.OrderService)
	orderHandler := handlers.NewOrderHandler(mockOrderService)
	mockOrderService.On("CancelOrder", mock.Anything, userID, orderID).Return(&models.Order{ID: orderID, Status: models.OrderStatusCancelled}, nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel", nil, userID, map[string]string{"id": orderID.String()})
	rr := httptest.NewRecorder()

	orderHandler.CancelOrder().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var order models.Order
	decodeData(t, rr, &order)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
}

func TestListAllOrders(t *testing.T) {
	adminID := uuid.New()

	t.Run("Success - Status Filter", func(t *testing.T) {
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)
		mockOrderService.On("ListAllOrders", mock.Anything, models.OrderStatusProcessing, 1, 10).Return([]*models.Order{}, 0, nil).Once()

		req := testutils.CreateAdminTestRequest(http.MethodGet, "/api/v1/admin/orders?status=processing", nil, adminID, nil)
		rr := httptest.NewRecorder()

		orderHandler.ListAllOrders().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockOrderService.AssertExpectations(t)
	})

	t.Run("Failure - Unknown Status", func(t *testing.T) {
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)

		req := testutils.CreateAdminTestRequest(http.MethodGet, "/api/v1/admin/orders?status=lost", nil, adminID, nil)
		rr := httptest.NewRecorder()

		orderHandler.ListAllOrders().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	adminID := uuid.New()
	orderID := uuid.New()
	pathParams := map[string]string{"id": orderID.String()}

	t.Run("Success - Shipped", func(t *testing.T) {
		// Arrange
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)
		body := models.UpdateOrderStatusRequest{Status: models.OrderStatusShipped, Carrier: "DHL", TrackingNumber: "JD0001"}
		mockOrderService.On("UpdateOrderStatus", mock.Anything, orderID, &body).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusShipped, Shipment: &models.Shipment{Carrier: "DHL", TrackingNumber: "JD0001"}}, nil).Once()

		req := testutils.CreateAdminTestRequest(http.MethodPatch, "/api/v1/admin/orders/"+orderID.String()+"/status", jsonBody(t, body), adminID, pathParams)
		rr := httptest.NewRecorder()

		// Act
		orderHandler.UpdateOrderStatus().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		var order models.Order
		decodeData(t, rr, &order)
		assert.Equal(t, "JD0001", order.Shipment.TrackingNumber)
	})

	t.Run("Failure - Unknown Status Value", func(t *testing.T) {
		// Arrange
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)

		req := testutils.CreateAdminTestRequest(http.MethodPatch, "/api/v1/admin/orders/"+orderID.String()+"/status",
			jsonBody(t, map[string]string{"status": "teleported"}), adminID, pathParams)
		rr := httptest.NewRecorder()

		// Act
		orderHandler.UpdateOrderStatus().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockOrderService.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Illegal Transition", func(t *testing.T) {
		// Arrange
		mockOrderService := new(mocks.OrderService)
		orderHandler := handlers.NewOrderHandler(mockOrderService)
		mockOrderService.On("UpdateOrderStatus", mock.Anything, orderID, mock.Anything).
			Return(nil, appErrors.BadRequestError("Cannot change order status from delivered to pending")).Once()

		req := testutils.CreateAdminTestRequest(http.MethodPatch, "/api/v1/admin/orders/"+orderID.String()+"/status",
			jsonBody(t, models.UpdateOrderStatusRequest{Status: models.OrderStatusPending}), adminID, pathParams)
		rr := httptest.NewRecorder()

		// Act
		orderHandler.UpdateOrderStatus().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, appErrors.ErrCodeBadRequest, decodeError(t, rr).Code)
	})
}
