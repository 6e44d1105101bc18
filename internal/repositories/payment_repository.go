package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
)

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *models.Payment) error
	GetPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	GetPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.Payment, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID, reviewerID *uuid.UUID, note string, invoice *models.Invoice) error
	TransitionPayment(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus, reviewerID *uuid.UUID, note string) error
	GetInvoiceByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error)
}

type paymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepo(db *sql.DB) PaymentRepository {
	return &paymentRepository{DB: db}
}

const paymentColumns = `id, order_id, user_id, amount, currency, method, status, proof_url, stripe_intent_id,
	reviewed_by, reviewed_at, note, created_at, updated_at`

func scanPayment(row interface{ Scan(dest ...any) error }) (*models.Payment, error) {
	var (
		payment    models.Payment
		reviewedBy uuid.NullUUID
		reviewedAt sql.NullTime
	)

	err := row.Scan(&payment.ID, &payment.OrderID, &payment.UserID, &payment.Amount, &payment.Currency, &payment.Method,
		&payment.Status, &payment.ProofURL, &payment.StripeIntentID, &reviewedBy, &reviewedAt, &payment.Note,
		&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if reviewedBy.Valid {
		payment.ReviewedBy = &reviewedBy.UUID
	}
	if reviewedAt.Valid {
		payment.ReviewedAt = &reviewedAt.Time
	}

	return &payment, nil
}

func (r *paymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO payments (id, order_id, user_id, amount, currency, method, status, proof_url, stripe_intent_id, note, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at`

	return r.DB.QueryRowContext(dbCtx, query, payment.ID, payment.OrderID, payment.UserID, payment.Amount, payment.Currency,
		payment.Method, payment.Status, payment.ProofURL, payment.StripeIntentID, payment.Note).
		Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

func (r *paymentRepository) GetPaymentByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return scanPayment(r.DB.QueryRowContext(dbCtx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

func (r *paymentRepository) GetPaymentByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return scanPayment(r.DB.QueryRowContext(dbCtx, `SELECT `+paymentColumns+` FROM payments WHERE stripe_intent_id = $1`, intentID))
}

func (r *paymentRepository) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]*models.Payment, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rows, err := r.DB.QueryContext(dbCtx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY created_at DESC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*models.Payment{}
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment rows: %w", err)
	}

	return payments, nil
}

// ConfirmPayment marks a pending payment paid, flags the order paid,
// promotes a pending order to confirmed and issues the invoice. An order
// that already has an invoice keeps it and the stored one is returned.
func (r *paymentRepository) ConfirmPayment(ctx context.Context, id uuid.UUID, reviewerID *uuid.UUID, note string, invoice *models.Invoice) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return withTx(dbCtx, r.DB, func(tx *sql.Tx) error {
		var orderID uuid.UUID
		err := tx.QueryRowContext(dbCtx, `
			UPDATE payments SET status = $1, reviewed_by = $2, reviewed_at = NOW(), note = $3, updated_at = NOW()
			WHERE id = $4 AND status = $5
			RETURNING order_id`,
			models.PaymentStatusPaid, reviewerID, note, id, models.PaymentStatusPending).Scan(&orderID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrStatusChanged
			}
			return fmt.Errorf("failed to confirm payment: %w", err)
		}

		if _, err := tx.ExecContext(dbCtx, `
			UPDATE orders
			SET payment_status = $1,
			    status = CASE WHEN status = $2 THEN $3 ELSE status END,
			    updated_at = NOW()
			WHERE id = $4`,
			models.PaymentStatusPaid, models.OrderStatusPending, models.OrderStatusConfirmed, orderID); err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}

		invoice.OrderID = orderID
		if err := tx.QueryRowContext(dbCtx, `
			INSERT INTO invoices (id, order_id, number, amount, issued_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (order_id) DO UPDATE SET order_id = EXCLUDED.order_id
			RETURNING id, number, amount, issued_at`,
			invoice.ID, orderID, invoice.Number, invoice.Amount).
			Scan(&invoice.ID, &invoice.Number, &invoice.Amount, &invoice.IssuedAt); err != nil {
			return fmt.Errorf("failed to issue invoice: %w", err)
		}

		return nil
	})
}

// TransitionPayment moves a payment from one status to another and mirrors
// the new status on the order. A failed payment never overrides an order
// that another payment already settled.
func (r *paymentRepository) TransitionPayment(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus, reviewerID *uuid.UUID, note string) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return withTx(dbCtx, r.DB, func(tx *sql.Tx) error {
		var orderID uuid.UUID
		err := tx.QueryRowContext(dbCtx, `
			UPDATE payments
			SET status = $1, reviewed_by = COALESCE($2, reviewed_by), reviewed_at = NOW(), note = $3, updated_at = NOW()
			WHERE id = $4 AND status = $5
			RETURNING order_id`, to, reviewerID, note, id, from).Scan(&orderID)
		if err != nil {
			if err == sql.ErrNoRows {
				return ErrStatusChanged
			}
			return fmt.Errorf("failed to update payment status: %w", err)
		}

		query := `UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2`
		if to == models.PaymentStatusFailed {
			query += ` AND payment_status <> 'paid'`
		}

		if _, err := tx.ExecContext(dbCtx, query, to, orderID); err != nil {
			return fmt.Errorf("failed to update order payment status: %w", err)
		}

		return nil
	})
}

func (r *paymentRepository) GetInvoiceByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Invoice, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	invoice := &models.Invoice{}
	err := r.DB.QueryRowContext(dbCtx, `
		SELECT id, order_id, number, amount, issued_at FROM invoices WHERE order_id = $1`, orderID).
		Scan(&invoice.ID, &invoice.OrderID, &invoice.Number, &invoice.Amount, &invoice.IssuedAt)
	if err != nil {
		return nil, err
	}

	return invoice, nil
}
