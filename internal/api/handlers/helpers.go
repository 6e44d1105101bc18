package handlers

import (
	stdErrors "errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils/response"
)

// authenticated returns the caller's claims and a logger scoped to them.
// It writes the 401 envelope itself when the request carries no claims.
func authenticated(w http.ResponseWriter, r *http.Request) (*models.Claims, *slog.Logger, bool) {
	logger := middleware.LoggerFromContext(r.Context())

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		logger.Warn("Unauthorized access attempt")
		response.Error(w, errors.UnauthorizedError("Authentication required"))

		return nil, logger, false
	}

	return claims, logger.With(slog.String("userId", claims.UserID.String())), true
}

func paginated(data any, total, page, pageSize int) models.PaginatedResponse {
	return models.PaginatedResponse{Data: data, Total: total, Page: page, PageSize: pageSize}
}

// multipart framing on top of the file itself
const uploadOverhead = 64 << 10

// formImage reads a single file field from a multipart body capped at
// maxSize. The caller closes the returned file.
func formImage(w http.ResponseWriter, r *http.Request, field string, maxSize int64) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+uploadOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if stdErrors.As(err, &tooLarge) {
			response.Error(w, errors.PayloadTooLargeError("File exceeds the upload size limit"))
			return nil, false
		}

		response.Error(w, errors.BadRequestError("Expected a multipart/form-data body").WithError(err))

		return nil, false
	}

	file, _, err := r.FormFile(field)
	if err != nil {
		response.Error(w, errors.BadRequestError("Missing file field: "+field).WithError(err))
		return nil, false
	}

	return file, true
}
