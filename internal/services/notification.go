package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/pkg/sendgrid"
	"github.com/google/uuid"
)

type NotificationService interface {
	SendEmail(ctx context.Context, userID uuid.UUID, orderID *uuid.UUID, req *models.EmailNotificationRequest) (*models.Notification, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Notification, int, error)
	// NotifyOrderStatus and NotifyPaymentConfirmed are best effort: failures
	// are logged and never reported to the caller.
	NotifyOrderStatus(ctx context.Context, order *models.Order)
	NotifyPaymentConfirmed(ctx context.Context, order *models.Order, invoice *models.Invoice)
}

type notificationService struct {
	repo         repository.NotificationRepository
	users        repository.UserRepository
	emailService sendgrid.EmailService
}

// NewNotificationService accepts a nil emailService, in which case
// notifications are recorded as failed instead of delivered.
func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository, emailService sendgrid.EmailService) NotificationService {
	return &notificationService{repo: repo, users: users, emailService: emailService}
}

func (n *notificationService) SendEmail(ctx context.Context, userID uuid.UUID, orderID *uuid.UUID, req *models.EmailNotificationRequest) (*models.Notification, error) {
	notification := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		OrderID:   orderID,
		Type:      models.NotificationTypeEmail,
		Recipient: req.To,
		Subject:   req.Subject,
		Content:   req.Content,
		Status:    models.StatusPending,
	}

	if err := n.repo.CreateNotification(ctx, notification); err != nil {
		return nil, appErrors.DatabaseError("Failed to create notification record").WithError(err)
	}

	sendErr := n.deliver(ctx, req)
	if sendErr != nil {
		notification.Status = models.StatusFailed
		notification.Error = sendErr.Error()
	} else {
		notification.Status = models.StatusSent
	}

	if err := n.repo.UpdateNotificationStatus(ctx, notification.ID, notification.Status, notification.Error); err != nil {
		return nil, appErrors.DatabaseError("Failed to update notification status").WithError(err)
	}

	if sendErr != nil {
		return notification, appErrors.ThirdPartyError("Failed to send email").WithError(sendErr)
	}

	return notification, nil
}

func (n *notificationService) deliver(ctx context.Context, req *models.EmailNotificationRequest) error {
	if n.emailService == nil {
		return fmt.Errorf("email delivery is not configured")
	}

	return n.emailService.Send(ctx, req)
}

func (n *notificationService) ListNotifications(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Notification, int, error) {
	notifications, total, err := n.repo.ListNotificationsByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch notifications").WithError(err)
	}

	return notifications, total, nil
}

func (n *notificationService) NotifyOrderStatus(ctx context.Context, order *models.Order) {
	subject := fmt.Sprintf("Order %s is now %s", shortID(order.ID), order.Status)
	content := fmt.Sprintf("Your order %s has been updated to %s.", order.ID, order.Status)

	if order.Status == models.OrderStatusShipped && order.Shipment != nil {
		content += fmt.Sprintf(" Carrier: %s, tracking number: %s.", order.Shipment.Carrier, order.Shipment.TrackingNumber)
	}

	n.notifyCustomer(ctx, order, subject, content)
}

func (n *notificationService) NotifyPaymentConfirmed(ctx context.Context, order *models.Order, invoice *models.Invoice) {
	subject := fmt.Sprintf("Payment received for order %s", shortID(order.ID))
	content := fmt.Sprintf("We received your payment of %s for order %s. Invoice %s has been issued.",
		invoice.Amount.StringFixed(2), order.ID, invoice.Number)

	n.notifyCustomer(ctx, order, subject, content)
}

func (n *notificationService) notifyCustomer(ctx context.Context, order *models.Order, subject, content string) {
	logger := middleware.LoggerFromContext(ctx).With(slog.String("orderId", order.ID.String()))

	user, err := n.users.GetUserByID(ctx, order.UserID)
	if err != nil {
		logger.Warn("Skipping notification, customer lookup failed", slog.Any("error", err))
		return
	}

	orderID := order.ID
	req := &models.EmailNotificationRequest{To: user.Email, Subject: subject, Content: content}

	if _, err := n.SendEmail(ctx, user.ID, &orderID, req); err != nil {
		logger.Warn("Customer notification failed", slog.String("subject", subject), slog.Any("error", err))
	}
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
