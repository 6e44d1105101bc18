package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/aaravmahajanofficial/storefront/internal/storage"
	stripeClient "github.com/aaravmahajanofficial/storefront/pkg/stripe"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
)

const proofFolder = "payment-proofs"

type PaymentService interface {
	UploadProof(ctx context.Context, userID, orderID uuid.UUID, file io.Reader) (*models.Payment, error)
	CreateCardPayment(ctx context.Context, userID, orderID uuid.UUID) (*models.CardPaymentResponse, error)
	ListOrderPayments(ctx context.Context, requester *models.Claims, orderID uuid.UUID) ([]*models.Payment, error)
	GetInvoice(ctx context.Context, requester *models.Claims, orderID uuid.UUID) (*models.Invoice, error)
	ConfirmPayment(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*models.PaymentConfirmation, error)
	RejectPayment(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*models.Payment, error)
	RefundPayment(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*models.Payment, error)
	ProcessWebhook(ctx context.Context, payload []byte, signature string) (stripeClient.Event, error)
}

type paymentService struct {
	repo         repository.PaymentRepository
	orders       repository.OrderRepository
	store        storage.FileStore
	stripeClient stripeClient.Client
	notifier     NotificationService
	currency     string
	now          func() time.Time
}

// NewPaymentService accepts a nil stripe client; card payments and
// webhooks are then rejected.
func NewPaymentService(
	repo repository.PaymentRepository,
	orders repository.OrderRepository,
	store storage.FileStore,
	cards stripeClient.Client,
	notifier NotificationService,
	currency string,
) PaymentService {
	return &paymentService{
		repo:         repo,
		orders:       orders,
		store:        store,
		stripeClient: cards,
		notifier:     notifier,
		currency:     strings.ToLower(currency),
		now:          time.Now,
	}
}

// UploadProof stores a bank transfer receipt and records a pending payment
// awaiting admin review. The order's payment status is left untouched.
func (s *paymentService) UploadProof(ctx context.Context, userID, orderID uuid.UUID, file io.Reader) (*models.Payment, error) {
	order, err := s.payableOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	url, err := s.store.SaveImage(ctx, proofFolder, file)
	if err != nil {
		return nil, uploadError(err)
	}

	payment := &models.Payment{
		ID:       uuid.New(),
		OrderID:  order.ID,
		UserID:   userID,
		Amount:   order.Total,
		Currency: s.currency,
		Method:   models.PaymentMethodBankTransfer,
		Status:   models.PaymentStatusPending,
		ProofURL: url,
	}

	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		if rmErr := s.store.Remove(ctx, url); rmErr != nil {
			middleware.LoggerFromContext(ctx).Warn("Failed to remove orphaned proof", slog.String("url", url), slog.Any("error", rmErr))
		}

		return nil, appErrors.DatabaseError("Failed to record payment").WithError(err)
	}

	metrics.RecordPayment(string(payment.Method), string(payment.Status))

	return payment, nil
}

func (s *paymentService) CreateCardPayment(ctx context.Context, userID, orderID uuid.UUID) (*models.CardPaymentResponse, error) {
	if s.stripeClient == nil {
		return nil, appErrors.BadRequestError("Card payments are not enabled")
	}

	order, err := s.payableOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	intent, err := s.stripeClient.CreatePaymentIntent(ctx,
		stripeClient.ToMinorUnits(order.Total),
		s.currency,
		"Order "+order.ID.String(),
		map[string]string{"order_id": order.ID.String(), "user_id": userID.String()},
	)
	if err != nil {
		return nil, appErrors.ThirdPartyError("Failed to create payment intent").WithError(err)
	}

	payment := &models.Payment{
		ID:             uuid.New(),
		OrderID:        order.ID,
		UserID:         userID,
		Amount:         order.Total,
		Currency:       s.currency,
		Method:         models.PaymentMethodCard,
		Status:         models.PaymentStatusPending,
		StripeIntentID: intent.ID,
	}

	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, appErrors.DatabaseError("Failed to record payment").WithError(err)
	}

	metrics.RecordPayment(string(payment.Method), string(payment.Status))

	return &models.CardPaymentResponse{Payment: payment, ClientSecret: intent.ClientSecret}, nil
}

func (s *paymentService) ListOrderPayments(ctx context.Context, requester *models.Claims, orderID uuid.UUID) ([]*models.Payment, error) {
	if _, err := s.accessibleOrder(ctx, requester, orderID); err != nil {
		return nil, err
	}

	payments, err := s.repo.ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch payments").WithError(err)
	}

	return payments, nil
}

func (s *paymentService) GetInvoice(ctx context.Context, requester *models.Claims, orderID uuid.UUID) (*models.Invoice, error) {
	if _, err := s.accessibleOrder(ctx, requester, orderID); err != nil {
		return nil, err
	}

	invoice, err := s.repo.GetInvoiceByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Invoice has not been issued for this order").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to load invoice").WithError(err)
	}

	return invoice, nil
}

// ConfirmPayment accepts a pending payment: the order becomes paid, a
// pending order is confirmed and an invoice is issued.
func (s *paymentService) ConfirmPayment(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*models.PaymentConfirmation, error) {
	payment, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, lookupError(err, "Payment not found")
	}

	if payment.Status != models.PaymentStatusPending {
		return nil, appErrors.ConflictError(fmt.Sprintf("Only pending payments can be confirmed, payment is %s", payment.Status))
	}

	return s.confirm(ctx, payment, &adminID, note)
}

func (s *paymentService) RejectPayment(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*models.Payment, error) {
	payment, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, lookupError(err, "Payment not found")
	}

	if payment.Status != models.PaymentStatusPending {
		return nil, appErrors.ConflictError(fmt.Sprintf("Only pending payments can be rejected, payment is %s", payment.Status))
	}

	return s.transition(ctx, payment, models.PaymentStatusFailed, &adminID, note)
}

// RefundPayment refunds a settled payment. Card payments are refunded
// through Stripe before the record changes.
func (s *paymentService) RefundPayment(ctx context.Context, adminID, paymentID uuid.UUID, note string) (*models.Payment, error) {
	payment, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, lookupError(err, "Payment not found")
	}

	if payment.Status != models.PaymentStatusPaid {
		return nil, appErrors.ConflictError(fmt.Sprintf("Only paid payments can be refunded, payment is %s", payment.Status))
	}

	if payment.Method == models.PaymentMethodCard {
		if s.stripeClient == nil {
			return nil, appErrors.BadRequestError("Card payments are not enabled")
		}

		if _, err := s.stripeClient.RefundPayment(ctx, payment.StripeIntentID); err != nil {
			return nil, appErrors.ThirdPartyError("Failed to refund payment").WithError(err)
		}
	}

	return s.transition(ctx, payment, models.PaymentStatusRefunded, &adminID, note)
}

// ProcessWebhook applies Stripe payment events. Events for unknown intents
// and repeated deliveries are acknowledged without changes.
func (s *paymentService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (stripeClient.Event, error) {
	logger := middleware.LoggerFromContext(ctx)

	if s.stripeClient == nil {
		return stripeClient.Event{}, appErrors.BadRequestError("Card payments are not enabled")
	}

	event, err := s.stripeClient.VerifyWebhookSignature(payload, signature)
	if err != nil {
		return stripeClient.Event{}, appErrors.BadRequestError("Webhook signature verification failed").WithError(err)
	}

	logger = logger.With(slog.String("eventId", event.ID), slog.String("eventType", string(event.Type)))

	var intentID string
	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return event, appErrors.BadRequestError("Malformed payment intent in webhook").WithError(err)
		}
		intentID = intent.ID

	case "charge.refunded":
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return event, appErrors.BadRequestError("Malformed charge in webhook").WithError(err)
		}
		if charge.PaymentIntent != nil {
			intentID = charge.PaymentIntent.ID
		}

	default:
		logger.Debug("Ignoring unhandled webhook event")
		return event, nil
	}

	if intentID == "" {
		return event, appErrors.BadRequestError("Missing payment intent ID in webhook")
	}

	payment, err := s.repo.GetPaymentByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn("Webhook for unknown payment intent", slog.String("intentId", intentID))
			return event, nil
		}

		return event, appErrors.DatabaseError("Failed to load payment").WithError(err)
	}

	switch {
	case event.Type == "payment_intent.succeeded" && payment.Status == models.PaymentStatusPending:
		_, err = s.confirm(ctx, payment, nil, "confirmed by stripe")
	case event.Type == "payment_intent.payment_failed" && payment.Status == models.PaymentStatusPending:
		_, err = s.transition(ctx, payment, models.PaymentStatusFailed, nil, "declined by stripe")
	case event.Type == "charge.refunded" && payment.Status == models.PaymentStatusPaid:
		_, err = s.transition(ctx, payment, models.PaymentStatusRefunded, nil, "refunded in stripe")
	default:
		logger.Debug("Webhook already applied", slog.String("paymentStatus", string(payment.Status)))
	}

	if appErr, ok := appErrors.IsAppError(err); ok && appErr.Code == appErrors.ErrCodeConflict {
		return event, nil
	}

	return event, err
}

func (s *paymentService) confirm(ctx context.Context, payment *models.Payment, reviewerID *uuid.UUID, note string) (*models.PaymentConfirmation, error) {
	invoice := &models.Invoice{
		ID:     uuid.New(),
		Number: invoiceNumber(s.now()),
		Amount: payment.Amount,
	}

	if err := s.repo.ConfirmPayment(ctx, payment.ID, reviewerID, note, invoice); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, appErrors.ConflictError("Payment was reviewed concurrently").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to confirm payment").WithError(err)
	}

	metrics.RecordPayment(string(payment.Method), string(models.PaymentStatusPaid))

	updated, err := s.repo.GetPaymentByID(ctx, payment.ID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to reload payment").WithError(err)
	}

	if order, err := s.orders.GetOrderByID(ctx, payment.OrderID); err == nil {
		s.notifier.NotifyPaymentConfirmed(ctx, order, invoice)
	} else {
		middleware.LoggerFromContext(ctx).Warn("Skipping payment notification, order lookup failed",
			slog.String("orderId", payment.OrderID.String()), slog.Any("error", err))
	}

	return &models.PaymentConfirmation{Payment: updated, Invoice: invoice}, nil
}

func (s *paymentService) transition(ctx context.Context, payment *models.Payment, to models.PaymentStatus, reviewerID *uuid.UUID, note string) (*models.Payment, error) {
	if err := s.repo.TransitionPayment(ctx, payment.ID, payment.Status, to, reviewerID, note); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, appErrors.ConflictError("Payment was reviewed concurrently").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to update payment status").WithError(err)
	}

	metrics.RecordPayment(string(payment.Method), string(to))

	updated, err := s.repo.GetPaymentByID(ctx, payment.ID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to reload payment").WithError(err)
	}

	return updated, nil
}

// payableOrder loads an order the customer can still pay for.
func (s *paymentService) payableOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, lookupError(err, "Order not found")
	}

	if order.UserID != userID {
		return nil, appErrors.ForbiddenError("You can only pay for your own orders")
	}

	if order.Status == models.OrderStatusCancelled {
		return nil, appErrors.BadRequestError("Cancelled orders cannot be paid")
	}

	if order.PaymentStatus == models.PaymentStatusPaid || order.PaymentStatus == models.PaymentStatusRefunded {
		return nil, appErrors.ConflictError("Order is already paid")
	}

	return order, nil
}

func (s *paymentService) accessibleOrder(ctx context.Context, requester *models.Claims, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, lookupError(err, "Order not found")
	}

	if !canAccess(requester, order.UserID) {
		return nil, appErrors.ForbiddenError("You do not have permission to view this order")
	}

	return order, nil
}

// invoiceNumber has the form INV-YYYYMMDD-xxxxxxxx.
func invoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("20060102"), strings.ToUpper(uuid.NewString()[:8]))
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, storage.ErrFileTooLarge):
		return appErrors.PayloadTooLargeError("File exceeds the upload size limit").WithError(err)
	case errors.Is(err, storage.ErrUnsupportedType):
		return appErrors.BadRequestError("Only JPEG, PNG and WebP images are accepted").WithError(err)
	case errors.Is(err, storage.ErrEmptyFile):
		return appErrors.BadRequestError("Uploaded file is empty").WithError(err)
	default:
		return appErrors.InternalError("Failed to store upload").WithError(err)
	}
}
