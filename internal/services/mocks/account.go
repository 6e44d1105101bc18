package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type AddressService struct {
	mock.Mock
}

func (m *AddressService) address(args mock.Arguments) (*models.Address, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *AddressService) CreateAddress(ctx context.Context, userID uuid.UUID, req *models.AddressRequest) (*models.Address, error) {
	return m.address(m.Called(ctx, userID, req))
}

func (m *AddressService) GetAddress(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	return m.address(m.Called(ctx, userID, id))
}

func (m *AddressService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]*models.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Address), args.Error(1)
}

func (m *AddressService) UpdateAddress(ctx context.Context, userID, id uuid.UUID, req *models.AddressRequest) (*models.Address, error) {
	return m.address(m.Called(ctx, userID, id, req))
}

func (m *AddressService) DeleteAddress(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type ShippingService struct {
	mock.Mock
}

func (m *ShippingService) method(args mock.Arguments) (*models.ShippingMethod, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ShippingMethod), args.Error(1)
}

func (m *ShippingService) ListMethods(ctx context.Context, activeOnly bool) ([]*models.ShippingMethod, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ShippingMethod), args.Error(1)
}

func (m *ShippingService) GetMethod(ctx context.Context, id uuid.UUID) (*models.ShippingMethod, error) {
	return m.method(m.Called(ctx, id))
}

func (m *ShippingService) CreateMethod(ctx context.Context, req *models.ShippingMethodRequest) (*models.ShippingMethod, error) {
	return m.method(m.Called(ctx, req))
}

func (m *ShippingService) UpdateMethod(ctx context.Context, id uuid.UUID, req *models.ShippingMethodRequest) (*models.ShippingMethod, error) {
	return m.method(m.Called(ctx, id, req))
}

type VoucherService struct {
	mock.Mock
}

func (m *VoucherService) CreateVoucher(ctx context.Context, req *models.CreateVoucherRequest) (*models.Voucher, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Voucher), args.Error(1)
}

func (m *VoucherService) ApplyVoucher(ctx context.Context, code string, subtotal decimal.Decimal) (*models.VoucherDiscount, error) {
	args := m.Called(ctx, code, subtotal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VoucherDiscount), args.Error(1)
}
