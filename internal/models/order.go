package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID          uuid.UUID       `json:"id"`
	OrderID     uuid.UUID       `json:"order_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Order struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	Status           OrderStatus     `json:"status"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	ShippingAddress  *Address        `json:"shipping_address"`
	ShippingMethodID uuid.UUID       `json:"shipping_method_id"`
	ShippingCost     decimal.Decimal `json:"shipping_cost"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Discount         decimal.Decimal `json:"discount"`
	Total            decimal.Decimal `json:"total"`
	VoucherCode      string          `json:"voucher_code,omitempty"`
	Note             string          `json:"note,omitempty"`
	Items            []OrderItem     `json:"items"`
	Shipment         *Shipment       `json:"shipment,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (o *Order) Contains(productID uuid.UUID) bool {
	for _, item := range o.Items {
		if item.ProductID == productID {
			return true
		}
	}

	return false
}

type Shipment struct {
	ID             uuid.UUID  `json:"id"`
	OrderID        uuid.UUID  `json:"order_id"`
	Carrier        string     `json:"carrier"`
	TrackingNumber string     `json:"tracking_number"`
	ShippedAt      time.Time  `json:"shipped_at"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

type Invoice struct {
	ID       uuid.UUID       `json:"id"`
	OrderID  uuid.UUID       `json:"order_id"`
	Number   string          `json:"number"`
	Amount   decimal.Decimal `json:"amount"`
	IssuedAt time.Time       `json:"issued_at"`
}

type CreateOrderRequest struct {
	Items            []CartLine `json:"items" validate:"required,min=1,dive"`
	AddressID        uuid.UUID  `json:"address_id" validate:"required"`
	ShippingMethodID uuid.UUID  `json:"shipping_method_id" validate:"required"`
	VoucherCode      string     `json:"voucher_code,omitempty" validate:"omitempty,max=40"`
	Note             string     `json:"note,omitempty" validate:"omitempty,max=500"`
}

type UpdateOrderStatusRequest struct {
	Status         OrderStatus `json:"status" validate:"required,oneof=pending confirmed processing shipped delivered cancelled"`
	Carrier        string      `json:"carrier,omitempty" validate:"omitempty,max=80"`
	TrackingNumber string      `json:"tracking_number,omitempty" validate:"omitempty,max=120"`
}
