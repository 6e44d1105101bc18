package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
)

func CreateTestRequestWithContext(method, target string, body io.Reader, userID uuid.UUID, pathParams map[string]string) *http.Request {
	return createTestRequest(method, target, body, &models.Claims{UserID: userID, Email: "test@example.com", Role: models.RoleCustomer}, pathParams)
}

// CreateAdminTestRequest is CreateTestRequestWithContext for an admin caller.
func CreateAdminTestRequest(method, target string, body io.Reader, userID uuid.UUID, pathParams map[string]string) *http.Request {
	return createTestRequest(method, target, body, &models.Claims{UserID: userID, Email: "admin@example.com", Role: models.RoleAdmin}, pathParams)
}

func CreateTestRequestWithoutContext(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	return createTestRequest(method, target, body, nil, pathParams)
}

func createTestRequest(method, target string, body io.Reader, claims *models.Claims, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.WithValue(req.Context(), middleware.LoggerKey, logger)

	if claims != nil {
		ctx = context.WithValue(ctx, middleware.UserContextKey, claims)
	}

	return req.WithContext(ctx)
}
