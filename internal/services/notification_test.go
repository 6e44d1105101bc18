package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	sendgridMocks "github.com/aaravmahajanofficial/storefront/pkg/sendgrid/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newNotificationService() (service.NotificationService, *mocks.NotificationRepository, *mocks.UserRepository, *sendgridMocks.EmailService) {
	repo := new(mocks.NotificationRepository)
	users := new(mocks.UserRepository)
	email := new(sendgridMocks.EmailService)

	return service.NewNotificationService(repo, users, email), repo, users, email
}

func TestSendEmail(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	req := &models.EmailNotificationRequest{To: "buyer@example.com", Subject: "Hi", Content: "Hello"}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		notificationService, repo, _, email := newNotificationService()
		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
			return n.Status == models.StatusPending && n.Recipient == req.To
		})).Return(nil).Once()
		email.On("Send", mock.Anything, req).Return(nil).Once()
		repo.On("UpdateNotificationStatus", mock.Anything, mock.AnythingOfType("uuid.UUID"), models.StatusSent, "").Return(nil).Once()

		// Act
		notification, err := notificationService.SendEmail(ctx, userID, nil, req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.StatusSent, notification.Status)
		repo.AssertExpectations(t)
		email.AssertExpectations(t)
	})

	t.Run("Failure - Provider Error Is Recorded", func(t *testing.T) {
		// Arrange
		notificationService, repo, _, email := newNotificationService()
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
		email.On("Send", mock.Anything, req).Return(errors.New("quota exceeded")).Once()
		repo.On("UpdateNotificationStatus", mock.Anything, mock.Anything, models.StatusFailed, "quota exceeded").Return(nil).Once()

		// Act
		notification, err := notificationService.SendEmail(ctx, userID, nil, req)

		// Assert
		assertAppError(t, err, appErrors.ErrCodeThirdPartyError)
		require.NotNil(t, notification)
		assert.Equal(t, models.StatusFailed, notification.Status)
		repo.AssertExpectations(t)
	})

	t.Run("Failure - Delivery Not Configured", func(t *testing.T) {
		// Arrange
		repo := new(mocks.NotificationRepository)
		notificationService := service.NewNotificationService(repo, new(mocks.UserRepository), nil)
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil).Once()
		repo.On("UpdateNotificationStatus", mock.Anything, mock.Anything, models.StatusFailed, mock.AnythingOfType("string")).Return(nil).Once()

		// Act
		_, err := notificationService.SendEmail(ctx, userID, nil, req)

		// Assert
		assertAppError(t, err, appErrors.ErrCodeThirdPartyError)
	})

	t.Run("Failure - Record Not Created", func(t *testing.T) {
		// Arrange
		notificationService, repo, _, email := newNotificationService()
		repo.On("CreateNotification", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

		// Act
		notification, err := notificationService.SendEmail(ctx, userID, nil, req)

		// Assert
		assert.Nil(t, notification)
		assertAppError(t, err, appErrors.ErrCodeDatabaseError)
		email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestNotifyOrderStatus(t *testing.T) {
	ctx := context.Background()
	customer := &models.User{ID: uuid.New(), Email: "buyer@example.com"}

	t.Run("Shipped Order Includes Tracking", func(t *testing.T) {
		// Arrange
		notificationService, repo, users, email := newNotificationService()
		order := &models.Order{
			ID:       uuid.New(),
			UserID:   customer.ID,
			Status:   models.OrderStatusShipped,
			Shipment: &models.Shipment{Carrier: "DHL", TrackingNumber: "JD0001"},
		}

		users.On("GetUserByID", mock.Anything, customer.ID).Return(customer, nil).Once()
		repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *models.Notification) bool {
			return n.OrderID != nil && *n.OrderID == order.ID
		})).Return(nil).Once()
		email.On("Send", mock.Anything, mock.MatchedBy(func(r *models.EmailNotificationRequest) bool {
			return r.To == customer.Email &&
				r.Subject == "Order "+order.ID.String()[:8]+" is now shipped" &&
				strings.Contains(r.Content, "Carrier: DHL, tracking number: JD0001")
		})).Return(nil).Once()
		repo.On("UpdateNotificationStatus", mock.Anything, mock.Anything, models.StatusSent, "").Return(nil).Once()

		// Act
		notificationService.NotifyOrderStatus(ctx, order)

		// Assert
		email.AssertExpectations(t)
	})

	t.Run("Customer Lookup Failure Is Swallowed", func(t *testing.T) {
		// Arrange
		notificationService, repo, users, email := newNotificationService()
		order := &models.Order{ID: uuid.New(), UserID: customer.ID, Status: models.OrderStatusConfirmed}
		users.On("GetUserByID", mock.Anything, customer.ID).Return(nil, sqlNoRows()).Once()

		// Act
		notificationService.NotifyOrderStatus(ctx, order)

		// Assert
		repo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything)
		email.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestListNotifications(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	notificationService, repo, _, _ := newNotificationService()
	repo.On("ListNotificationsByUser", mock.Anything, userID, 2, 5).Return([]*models.Notification{{ID: uuid.New()}}, 6, nil).Once()

	items, total, err := notificationService.ListNotifications(ctx, userID, 2, 5)

	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 6, total)
}
