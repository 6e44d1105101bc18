package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VoucherType string

const (
	VoucherPercentage VoucherType = "percentage"
	VoucherFixed      VoucherType = "fixed"
)

type Voucher struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Type        VoucherType     `json:"type"`
	Value       decimal.Decimal `json:"value"`
	MinSubtotal decimal.Decimal `json:"min_subtotal"`
	Description string          `json:"description,omitempty"`
	Active      bool            `json:"active"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type CreateVoucherRequest struct {
	Code        string          `json:"code" validate:"required,alphanum,min=3,max=40"`
	Type        VoucherType     `json:"type" validate:"required,oneof=percentage fixed"`
	Value       decimal.Decimal `json:"value"`
	MinSubtotal decimal.Decimal `json:"min_subtotal"`
	Description string          `json:"description,omitempty" validate:"omitempty,max=200"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

type ApplyVoucherRequest struct {
	Code     string          `json:"code" validate:"required,max=40"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type VoucherDiscount struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	Description string          `json:"description,omitempty"`
}
