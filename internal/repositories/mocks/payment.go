package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *PaymentRepository) GetPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *PaymentRepository) GetPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *PaymentRepository) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *PaymentRepository) ConfirmPayment(ctx context.Context, id uuid.UUID, reviewerID *uuid.UUID, note string, invoice *models.Invoice) error {
	args := m.Called(ctx, id, reviewerID, note, invoice)
	return args.Error(0)
}

func (m *PaymentRepository) TransitionPayment(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus, reviewerID *uuid.UUID, note string) error {
	args := m.Called(ctx, id, from, to, reviewerID, note)
	return args.Error(0)
}

func (m *PaymentRepository) GetInvoiceByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}
