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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRegister(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)
		body := models.RegisterRequest{Email: "new@example.com", Password: "secret123", Name: "New Buyer"}
		created := &models.User{ID: uuid.New(), Email: body.Email, Name: body.Name, Role: models.RoleCustomer}

		mockUserService.On("Register", mock.Anything, &body).Return(created, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/auth/register", jsonBody(t, body), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Register().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var user models.User
		decodeData(t, rr, &user)
		assert.Equal(t, created.ID, user.ID)
		assert.NotContains(t, rr.Body.String(), "password")
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Validation", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)
		body := models.RegisterRequest{Email: "not-an-email", Password: "123"}

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/auth/register", jsonBody(t, body), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Register().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		errResp := decodeError(t, rr)
		assert.Equal(t, appErrors.ErrCodeValidation, errResp.Code)
		assert.NotEmpty(t, errResp.Details)
		mockUserService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Duplicate Email", func(t *testing.T) {
		// Arrange
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)
		body := models.RegisterRequest{Email: "taken@example.com", Password: "secret123", Name: "Taken"}

		mockUserService.On("Register", mock.Anything, mock.Anything).Return(nil, appErrors.DuplicateEntryError("Email already registered")).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/auth/register", jsonBody(t, body), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Register().ServeHTTP(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, appErrors.ErrCodeDuplicateEntry, decodeError(t, rr).Code)
	})
}

func TestLogin(t *testing.T) {
	body := models.LoginRequest{Email: "buyer@example.com", Password: "secret123"}

	tests := []struct {
		name       string
		resp       *models.LoginResponse
		wantStatus int
		wantCode   string
	}{
		{
			name:       "Success",
			resp:       &models.LoginResponse{Success: true, AccessToken: "jwt", RefreshToken: uuid.NewString(), ExpiresIn: 900},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Wrong Password",
			resp:       &models.LoginResponse{Success: false, RemainingTries: 3, Message: "Invalid email or password"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   appErrors.ErrCodeUnauthorized,
		},
		{
			name:       "Rate Limited",
			resp:       &models.LoginResponse{Success: false, RetryAfter: 60, Message: "Too many login attempts. Please try again later."},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   appErrors.ErrCodeTooManyRequests,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			mockUserService := new(mocks.UserService)
			userHandler := handlers.NewUserHandler(mockUserService)
			mockUserService.On("Login", mock.Anything, &body).Return(tc.resp, nil).Once()

			req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/auth/login", jsonBody(t, body), nil)
			rr := httptest.NewRecorder()

			// Act
			userHandler.Login().ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, tc.wantStatus, rr.Code)

			if tc.wantCode == "" {
				var resp models.LoginResponse
				decodeData(t, rr, &resp)
				assert.Equal(t, "jwt", resp.AccessToken)
				return
			}

			assert.Equal(t, tc.wantCode, decodeError(t, rr).Code)
		})
	}
}

func TestRefreshTokenHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)
		body := models.RefreshTokenRequest{RefreshToken: uuid.NewString()}
		mockUserService.On("RefreshToken", mock.Anything, &body).
			Return(&models.LoginResponse{Success: true, AccessToken: "new-jwt", RefreshToken: uuid.NewString()}, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/auth/refresh-token", jsonBody(t, body), nil)
		rr := httptest.NewRecorder()

		userHandler.RefreshToken().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp models.LoginResponse
		decodeData(t, rr, &resp)
		assert.Equal(t, "new-jwt", resp.AccessToken)
	})

	t.Run("Failure - Unknown Token", func(t *testing.T) {
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)
		body := models.RefreshTokenRequest{RefreshToken: uuid.NewString()}
		mockUserService.On("RefreshToken", mock.Anything, mock.Anything).Return(nil, appErrors.UnauthorizedError("Invalid refresh token")).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/auth/refresh-token", jsonBody(t, body), nil)
		rr := httptest.NewRecorder()

		userHandler.RefreshToken().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestProfile(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)
		userID := uuid.New()
		mockUserService.On("GetUserByID", mock.Anything, userID).Return(&models.User{ID: userID, Email: "test@example.com"}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/users/profile", nil, userID, nil)
		rr := httptest.NewRecorder()

		userHandler.Profile().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var user models.User
		decodeData(t, rr, &user)
		assert.Equal(t, userID, user.ID)
	})

	t.Run("Failure - Unauthenticated", func(t *testing.T) {
		mockUserService := new(mocks.UserService)
		userHandler := handlers.NewUserHandler(mockUserService)

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/users/profile", nil, nil)
		rr := httptest.NewRecorder()

		userHandler.Profile().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockUserService.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})
}
