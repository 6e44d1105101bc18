package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type AddressRepository struct {
	mock.Mock
}

func (m *AddressRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *AddressRepository) GetAddressByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *AddressRepository) ListAddressesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Address), args.Error(1)
}

func (m *AddressRepository) UpdateAddress(ctx context.Context, address *models.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *AddressRepository) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type ShippingRepository struct {
	mock.Mock
}

func (m *ShippingRepository) CreateMethod(ctx context.Context, method *models.ShippingMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

func (m *ShippingRepository) GetMethodByID(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShippingMethod), args.Error(1)
}

func (m *ShippingRepository) ListMethods(ctx context.Context, activeOnly bool) ([]*models.ShippingMethod, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ShippingMethod), args.Error(1)
}

func (m *ShippingRepository) UpdateMethod(ctx context.Context, method *models.ShippingMethod) error {
	args := m.Called(ctx, method)
	return args.Error(0)
}

type VoucherRepository struct {
	mock.Mock
}

func (m *VoucherRepository) CreateVoucher(ctx context.Context, voucher *models.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *VoucherRepository) GetVoucherByCode(ctx context.Context, code string) (*models.Voucher, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Voucher), args.Error(1)
}

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *NotificationRepository) UpdateNotificationStatus(ctx context.Context, id uuid.UUID, status models.NotificationStatus, errorMsg string) error {
	args := m.Called(ctx, id, status, errorMsg)
	return args.Error(0)
}

func (m *NotificationRepository) ListNotificationsByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Notification, int, error) {
	args := m.Called(ctx, userID, page, size)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Notification), args.Int(1), args.Error(2)
}
