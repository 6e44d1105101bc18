package storefront

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type CartItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Stock     int             `json:"stock"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	ID          uuid.UUID       `json:"id"`
	Items       []CartItem      `json:"items"`
	TotalItems  int             `json:"total_items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (c *Cart) Item(productID uuid.UUID) (CartItem, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}

	return CartItem{}, false
}

func (c *Cart) clone() *Cart {
	if c == nil {
		return nil
	}

	out := *c
	out.Items = append([]CartItem(nil), c.Items...)

	return &out
}

// CartLine selects a quantity of one product.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
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

type VoucherDiscount struct {
	Code        string          `json:"code"`
	Discount    decimal.Decimal `json:"discount"`
	Description string          `json:"description,omitempty"`
}

type OrderItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingCost  decimal.Decimal `json:"shipping_cost"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	VoucherCode   string          `json:"voucher_code,omitempty"`
	Items         []OrderItem     `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Payment struct {
	ID       uuid.UUID       `json:"id"`
	OrderID  uuid.UUID       `json:"order_id"`
	Amount   decimal.Decimal `json:"amount"`
	Method   string          `json:"method"`
	Status   string          `json:"status"`
	ProofURL string          `json:"proof_url,omitempty"`
}

type createOrderRequest struct {
	Items            []CartLine `json:"items"`
	AddressID        uuid.UUID  `json:"address_id"`
	ShippingMethodID uuid.UUID  `json:"shipping_method_id"`
	VoucherCode      string     `json:"voucher_code,omitempty"`
	Note             string     `json:"note,omitempty"`
}
