package mocks

import (
	"context"
	"io"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	stripeClient "github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type PaymentService struct {
	mock.Mock
}

func (m *PaymentService) payment(args mock.Arguments) (*models.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *PaymentService) UploadProof(ctx context.Context, userID, orderID uuid.UUID, file io.Reader) (*models.Payment, error) {
	return m.payment(m.Called(ctx, userID, orderID, file))
}

func (m *PaymentService) CreateCardPayment(ctx context.Context, userID, orderID uuid.UUID) (*models.CardPaymentResponse, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CardPaymentResponse), args.Error(1)
}

func (m *PaymentService) ListOrderPayments(ctx context.Context, requester *models.Claims, orderID uuid.UUID) ([]*models.Payment, error) {
	args := m.Called(ctx, requester, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Payment), args.Error(1)
}

func (m *PaymentService) GetInvoice(ctx context.Context, requester *models.Claims, orderID uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, requester, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *PaymentService) ConfirmPayment(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*models.PaymentConfirmation, error) {
	args := m.Called(ctx, adminID, paymentID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentConfirmation), args.Error(1)
}

func (m *PaymentService) RejectPayment(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*models.Payment, error) {
	return m.payment(m.Called(ctx, adminID, paymentID, note))
}

func (m *PaymentService) RefundPayment(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*models.Payment, error) {
	return m.payment(m.Called(ctx, adminID, paymentID, note))
}

func (m *PaymentService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (stripeClient.Event, error) {
	args := m.Called(ctx, payload, signature)
	return args.Get(0).(stripeClient.Event), args.Error(1)
}
