package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type OrderService struct {
	mock.Mock
}

func (m *OrderService) order(args mock.Arguments) (*models.Order, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *OrderService) orders(args mock.Arguments) ([]*models.Order, int, error) {
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Order), args.Int(1), args.Error(2)
}

func (m *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	return m.order(m.Called(ctx, userID, req))
}

func (m *OrderService) GetOrder(ctx context.Context, requester *models.Claims, id uuid.UUID) (*models.Order, error) {
	return m.order(m.Called(ctx, requester, id))
}

func (m *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	return m.orders(m.Called(ctx, userID, page, size))
}

func (m *OrderService) CancelOrder(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	return m.order(m.Called(ctx, userID, id))
}

func (m *OrderService) ListAllOrders(ctx context.Context, status models.OrderStatus, page, size int) ([]*models.Order, int, error) {
	return m.orders(m.Called(ctx, status, page, size))
}

func (m *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	return m.order(m.Called(ctx, id, req))
}
