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

func validAddress() models.AddressRequest {
	return models.AddressRequest{
		Recipient:  "Jane Doe",
		Phone:      "+14155550100",
		Street:     "1 Market St",
		City:       "San Francisco",
		State:      "CA",
		PostalCode: "94105",
		Country:    "US",
	}
}

func TestCreateAddressHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockAddressService := new(mocks.AddressService)
		addressHandler := handlers.NewAddressHandler(mockAddressService)
		body := validAddress()
		mockAddressService.On("CreateAddress", mock.Anything, userID, &body).
			Return(&models.Address{ID: uuid.New(), UserID: userID, City: body.City}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/addresses", jsonBody(t, body), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		addressHandler.CreateAddress().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)
		mockAddressService.AssertExpectations(t)
	})

	t.Run("Failure - Invalid Country", func(t *testing.T) {
		// Arrange
		mockAddressService := new(mocks.AddressService)
		addressHandler := handlers.NewAddressHandler(mockAddressService)
		body := validAddress()
		body.Country = "Atlantis"

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/addresses", jsonBody(t, body), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		addressHandler.CreateAddress().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockAddressService.AssertNotCalled(t, "CreateAddress", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeleteAddressHandler(t *testing.T) {
	userID := uuid.New()
	addressID := uuid.New()
	pathParams := map[string]string{"id": addressID.String()}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockAddressService := new(mocks.AddressService)
		addressHandler := handlers.NewAddressHandler(mockAddressService)
		mockAddressService.On("DeleteAddress", mock.Anything, userID, addressID).Return(nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/addresses/"+addressID.String(), nil, userID, pathParams)
		rr := httptest.NewRecorder()

		// Act
		addressHandler.DeleteAddress().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("Failure - Someone Else's Address", func(t *testing.T) {
		// Arrange
		mockAddressService := new(mocks.AddressService)
		addressHandler := handlers.NewAddressHandler(mockAddressService)
		mockAddressService.On("DeleteAddress", mock.Anything, userID, addressID).Return(appErrors.NotFoundError("Address not found")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/addresses/"+addressID.String(), nil, userID, pathParams)
		rr := httptest.NewRecorder()

		// Act
		addressHandler.DeleteAddress().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestListShippingMethodsHandler(t *testing.T) {
	tests := []struct {
		name       string
		admin      bool
		target     string
		activeOnly bool
	}{
		{name: "Customer Sees Active Only", target: "/api/v1/shipping-methods?all=true", activeOnly: true},
		{name: "Admin Without Flag", admin: true, target: "/api/v1/shipping-methods", activeOnly: true},
		{name: "Admin With Flag", admin: true, target: "/api/v1/shipping-methods?all=true", activeOnly: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			mockShippingService := new(mocks.ShippingService)
			shippingHandler := handlers.NewShippingHandler(mockShippingService)
			mockShippingService.On("ListMethods", mock.Anything, tt.activeOnly).
				Return([]*models.ShippingMethod{{ID: uuid.New(), Name: "Standard", Cost: decimal.RequireFromString("4.99"), Active: true}}, nil).Once()

			req := testutils.CreateTestRequestWithContext(http.MethodGet, tt.target, nil, uuid.New(), nil)
			if tt.admin {
				req = testutils.CreateAdminTestRequest(http.MethodGet, tt.target, nil, uuid.New(), nil)
			}
			rr := httptest.NewRecorder()

			// Act
			shippingHandler.ListMethods().ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, http.StatusOK, rr.Code)
			mockShippingService.AssertExpectations(t)
		})
	}
}

func TestCreateShippingMethodHandler(t *testing.T) {
	body := models.ShippingMethodRequest{Name: "Express", Cost: decimal.RequireFromString("12.50"), EstimatedDays: 1}

	mockShippingService := new(mocks.ShippingService)
	shippingHandler := handlers.NewShippingHandler(mockShippingService)
	mockShippingService.On("CreateMethod", mock.Anything, mock.MatchedBy(func(r *models.ShippingMethodRequest) bool {
		return r.Name == "Express" && r.Cost.Equal(body.Cost)
	})).Return(&models.ShippingMethod{ID: uuid.New(), Name: "Express", Cost: body.Cost, Active: true}, nil).Once()

	req := testutils.CreateAdminTestRequest(http.MethodPost, "/api/v1/admin/shipping-methods", jsonBody(t, body), uuid.New(), nil)
	rr := httptest.NewRecorder()

	shippingHandler.CreateMethod().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	mockShippingService.AssertExpectations(t)
}

func TestApplyVoucherHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockVoucherService := new(mocks.VoucherService)
		voucherHandler := handlers.NewVoucherHandler(mockVoucherService)
		mockVoucherService.On("ApplyVoucher", mock.Anything, "SAVE10", mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(45))
		})).Return(&models.VoucherDiscount{Code: "SAVE10", Discount: decimal.RequireFromString("4.50")}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/vouchers/apply",
			jsonBody(t, models.ApplyVoucherRequest{Code: "SAVE10", Subtotal: decimal.NewFromInt(45)}), uuid.New(), nil)
		rr := httptest.NewRecorder()

		// Act
		voucherHandler.ApplyVoucher().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		var got models.VoucherDiscount
		decodeData(t, rr, &got)
		assert.True(t, got.Discount.Equal(decimal.RequireFromString("4.5")))
	})

	t.Run("Failure - Negative Subtotal", func(t *testing.T) {
		// Arrange
		mockVoucherService := new(mocks.VoucherService)
		voucherHandler := handlers.NewVoucherHandler(mockVoucherService)

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/vouchers/apply",
			jsonBody(t, models.ApplyVoucherRequest{Code: "SAVE10", Subtotal: decimal.NewFromInt(-1)}), uuid.New(), nil)
		rr := httptest.NewRecorder()

		// Act
		voucherHandler.ApplyVoucher().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockVoucherService.AssertNotCalled(t, "ApplyVoucher", mock.Anything, mock.Anything, mock.Anything)
	})
}
