package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a cart line joined with the current product row.
type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	AddedAt   time.Time       `json:"added_at"`
}

// Cart totals are derived from the lines on every read and never stored.
type Cart struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Items       []CartItem      `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (c *Cart) Recalculate() {
	c.TotalItems = 0
	c.TotalAmount = decimal.Zero

	for i := range c.Items {
		line := &c.Items[i]
		line.Subtotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		c.TotalItems += line.Quantity
		c.TotalAmount = c.TotalAmount.Add(line.Subtotal)
	}
}

func (c *Cart) Item(productID uuid.UUID) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}

	return CartItem{}, false
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"required,min=1"`
}

// A quantity below one removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartLine struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type ValidateCartRequest struct {
	Items []CartLine `json:"items" validate:"required,min=1,dive"`
}

type LineValidation struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
	Valid     bool      `json:"valid"`
	Reason    string    `json:"reason,omitempty"`
}

type CartValidation struct {
	Valid bool             `json:"valid"`
	Items []LineValidation `json:"items"`
}
