package storefront

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot is the validated selection carried from the cart page to order
// creation. Stock may change after it is taken; the server re-checks it
// when the order is placed.
type Snapshot struct {
	Items       []CartLine      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Discount    decimal.Decimal `json:"discount"`
	Total       decimal.Decimal `json:"total"`
	VoucherCode string          `json:"voucher_code,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (s *Snapshot) clone() *Snapshot {
	out := *s
	out.Items = append([]CartLine(nil), s.Items...)

	return &out
}

// SessionStore keeps checkout snapshots between steps. Load returns
// ErrNoSnapshot when nothing is stored under key.
type SessionStore interface {
	Save(ctx context.Context, key string, snapshot *Snapshot) error
	Load(ctx context.Context, key string) (*Snapshot, error)
	Delete(ctx context.Context, key string) error
}

type MemorySessionStore struct {
	mu        sync.Mutex
	snapshots map[string]*Snapshot
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{snapshots: make(map[string]*Snapshot)}
}

func (m *MemorySessionStore) Save(_ context.Context, key string, snapshot *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.snapshots[key] = snapshot.clone()

	return nil
}

func (m *MemorySessionStore) Load(_ context.Context, key string) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot, ok := m.snapshots[key]
	if !ok {
		return nil, ErrNoSnapshot
	}

	return snapshot.clone(), nil
}

func (m *MemorySessionStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.snapshots, key)

	return nil
}

// Checkout drives one shopper's checkout: validate the selection, place the
// order, then upload the bank transfer proof.
type Checkout struct {
	client   *Client
	cart     *CartStore
	sessions SessionStore
	key      string
}

func NewCheckout(client *Client, cart *CartStore, sessions SessionStore, sessionKey string) *Checkout {
	return &Checkout{client: client, cart: cart, sessions: sessions, key: sessionKey}
}

// Begin validates the selected lines against current stock. An invalid
// selection refreshes the cart store and returns a *CheckoutError wrapping
// ErrCheckoutInvalid. A valid one is priced from the cached cart, with the
// voucher applied when given, and saved as the session snapshot.
func (c *Checkout) Begin(ctx context.Context, selection []CartLine, voucherCode string) (*Snapshot, error) {
	if len(selection) == 0 {
		return nil, &CheckoutError{}
	}

	validation, err := NewCartAPI(c.client).Validate(ctx, selection)
	if err != nil {
		return nil, err
	}

	if !validation.Valid {
		invalid := make([]LineValidation, 0, len(validation.Items))
		for _, line := range validation.Items {
			if !line.Valid {
				invalid = append(invalid, line)
			}
		}

		checkoutErr := &CheckoutError{Lines: invalid}
		if _, refreshErr := c.cart.Refresh(ctx); refreshErr != nil {
			return nil, errors.Join(checkoutErr, refreshErr)
		}

		return nil, checkoutErr
	}

	subtotal, err := c.price(ctx, selection)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Items:     append([]CartLine(nil), selection...),
		Subtotal:  subtotal,
		Discount:  decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}

	if code := strings.TrimSpace(voucherCode); code != "" {
		var discount VoucherDiscount

		body := map[string]any{"code": code, "subtotal": subtotal}
		if err := c.client.do(ctx, http.MethodPost, "/api/v1/vouchers/apply", body, &discount); err != nil {
			return nil, err
		}

		snapshot.VoucherCode = discount.Code
		snapshot.Discount = discount.Discount
	}

	snapshot.Total = snapshot.Subtotal.Sub(snapshot.Discount)

	if err := c.sessions.Save(ctx, c.key, snapshot); err != nil {
		return nil, fmt.Errorf("storefront: save checkout snapshot: %w", err)
	}

	return snapshot.clone(), nil
}

// price totals the selection from the cached cart. A cache that lacks a
// selected line is refreshed once before the line is reported missing.
func (c *Checkout) price(ctx context.Context, selection []CartLine) (decimal.Decimal, error) {
	cart, fresh := c.cart.Cart(), false
	if cart == nil {
		var err error
		if cart, err = c.cart.Refresh(ctx); err != nil {
			return decimal.Zero, err
		}
		fresh = true
	}

	for {
		subtotal, missing := priceLines(cart, selection)
		if missing == nil {
			return subtotal, nil
		}

		if fresh {
			return decimal.Zero, &CheckoutError{Lines: []LineValidation{*missing}}
		}

		var err error
		if cart, err = c.cart.Refresh(ctx); err != nil {
			return decimal.Zero, err
		}
		fresh = true
	}
}

func priceLines(cart *Cart, selection []CartLine) (decimal.Decimal, *LineValidation) {
	subtotal := decimal.Zero

	for _, line := range selection {
		item, ok := cart.Item(line.ProductID)
		if !ok {
			return decimal.Zero, &LineValidation{
				ProductID: line.ProductID,
				Requested: line.Quantity,
				Reason:    "not in cart",
			}
		}

		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	return subtotal, nil
}

// Snapshot returns the checkout in progress.
func (c *Checkout) Snapshot(ctx context.Context) (*Snapshot, error) {
	return c.sessions.Load(ctx, c.key)
}

// PlaceOrder turns the saved snapshot into an order. The snapshot is
// dropped and the cart store refreshed once the server accepts it.
func (c *Checkout) PlaceOrder(ctx context.Context, addressID, shippingMethodID uuid.UUID, note string) (*Order, error) {
	snapshot, err := c.sessions.Load(ctx, c.key)
	if err != nil {
		return nil, err
	}

	req := createOrderRequest{
		Items:            snapshot.Items,
		AddressID:        addressID,
		ShippingMethodID: shippingMethodID,
		VoucherCode:      snapshot.VoucherCode,
		Note:             note,
	}

	var order Order
	if err := c.client.do(ctx, http.MethodPost, "/api/v1/orders", req, &order); err != nil {
		return nil, err
	}

	if err := c.sessions.Delete(ctx, c.key); err != nil {
		c.client.logger.Warn("Failed to drop checkout snapshot", slog.Any("error", err))
	}

	if _, err := c.cart.Refresh(ctx); err != nil {
		c.client.logger.Warn("Cart refresh after order failed", slog.Any("error", err))
	}

	return &order, nil
}

// UploadProof posts a bank transfer receipt for orderID.
func (c *Checkout) UploadProof(ctx context.Context, orderID uuid.UUID, filename string, image io.Reader) (*Payment, error) {
	var payment Payment

	path := "/api/v1/payments/orders/" + orderID.String() + "/proof"
	if err := c.client.upload(ctx, path, "proof", filename, image, &payment); err != nil {
		return nil, err
	}

	return &payment, nil
}
