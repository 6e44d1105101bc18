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

type NotificationHandler struct {
	notificationService service.NotificationService
	validator           *validator.Validate
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		validator:           validator.New(),
	}
}

// SendEmail lets an admin send a one-off email. The record is kept under
// the admin's id.
func (h *NotificationHandler) SendEmail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		var req models.EmailNotificationRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid notification input")
			return
		}

		logger.Info("Attempting to send email notification")

		notification, err := h.notificationService.SendEmail(r.Context(), claims.UserID, nil, &req)
		if err != nil {
			logger.Error("Failed to send notification",
				slog.String("type", "email"),
				slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Notification sent", slog.String("notificationId", notification.ID.String()))
		response.Success(w, http.StatusCreated, notification)
	}
}

func (h *NotificationHandler) ListNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, logger, ok := authenticated(w, r)
		if !ok {
			return
		}

		page, pageSize := utils.ParsePagination(r)

		notifications, total, err := h.notificationService.ListNotifications(r.Context(), claims.UserID, page, pageSize)
		if err != nil {
			logger.Error("Failed to list notifications", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Debug("Notifications listed", slog.Int("count", len(notifications)), slog.Int("total", total))
		response.Success(w, http.StatusOK, paginated(notifications, total, page, pageSize))
	}
}
