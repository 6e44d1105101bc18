package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

type Product struct {
	ID            uuid.UUID       `json:"id"`
	CategoryID    int64           `json:"category_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	SKU           string          `json:"sku"`
	ImageURL      string          `json:"image_url,omitempty"`
	Status        ProductStatus   `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p *Product) Purchasable() bool {
	return p.Status == ProductStatusActive
}

type ProductFilter struct {
	CategoryID int64
	Search     string
}

type CreateProductRequest struct {
	CategoryID    int64           `json:"category_id" validate:"required"`
	Name          string          `json:"name" validate:"required,min=3,max=200"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	SKU           string          `json:"sku" validate:"required,min=3,max=50"`
	ImageURL      string          `json:"image_url,omitempty" validate:"omitempty,url"`
}

type UpdateProductRequest struct {
	CategoryID    *int64           `json:"category_id,omitempty"`
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	ImageURL      *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Status        *ProductStatus   `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
}
