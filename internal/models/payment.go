package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
)

type Payment struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        uuid.UUID       `json:"order_id"`
	UserID         uuid.UUID       `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Method         PaymentMethod   `json:"method"`
	Status         PaymentStatus   `json:"status"`
	ProofURL       string          `json:"proof_url,omitempty"`
	StripeIntentID string          `json:"stripe_intent_id,omitempty"`
	ReviewedBy     *uuid.UUID      `json:"reviewed_by,omitempty"`
	ReviewedAt     *time.Time      `json:"reviewed_at,omitempty"`
	Note           string          `json:"note,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ReviewPaymentRequest struct {
	Note string `json:"note,omitempty" validate:"omitempty,max=500"`
}

type CardPaymentResponse struct {
	Payment      *Payment `json:"payment"`
	ClientSecret string   `json:"client_secret"`
}

type PaymentConfirmation struct {
	Payment *Payment `json:"payment"`
	Invoice *Invoice `json:"invoice"`
}
