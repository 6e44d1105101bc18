package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShippingMethod struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedDays int             `json:"estimated_days"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ShippingMethodRequest struct {
	Name          string          `json:"name" validate:"required,max=80"`
	Description   string          `json:"description,omitempty" validate:"omitempty,max=300"`
	Cost          decimal.Decimal `json:"cost"`
	EstimatedDays int             `json:"estimated_days" validate:"gte=0"`
	Active        *bool           `json:"active,omitempty"`
}
