package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) SendEmail(ctx context.Context, userID uuid.UUID, orderID *uuid.UUID, req *models.EmailNotificationRequest) (*models.Notification, error) {
	args := m.Called(ctx, userID, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Notification, int, error) {
	args := m.Called(ctx, userID, page, size)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Notification), args.Int(1), args.Error(2)
}

func (m *NotificationService) NotifyOrderStatus(ctx context.Context, order *models.Order) {
	m.Called(ctx, order)
}

func (m *NotificationService) NotifyPaymentConfirmed(ctx context.Context, order *models.Order, invoice *models.Invoice) {
	m.Called(ctx, order, invoice)
}
