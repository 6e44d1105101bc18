package storefront

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeProduct struct {
	name  string
	price decimal.Decimal
	stock int
}

type fakeLine struct {
	productID uuid.UUID
	quantity  int
}

// fakeAPI mimics the storefront server closely enough for client tests.
// Requests with anything but the current access token get 403.
type fakeAPI struct {
	mu sync.Mutex

	access          string
	refresh         string
	refreshAttempts int
	rotations       int

	products map[uuid.UUID]fakeProduct
	lines    []fakeLine
	cartGets int

	orders []createOrderRequest
	proofs []string

	server *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{
		access:   "access-0",
		refresh:  "refresh-0",
		products: make(map[uuid.UUID]fakeProduct),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", f.login)
	mux.HandleFunc("POST /auth/refresh-token", f.refreshToken)
	mux.HandleFunc("GET /api/v1/cart", f.authed(f.getCart))
	mux.HandleFunc("DELETE /api/v1/cart", f.authed(f.clearCart))
	mux.HandleFunc("POST /api/v1/cart/items", f.authed(f.addItem))
	mux.HandleFunc("PUT /api/v1/cart/items/{id}", f.authed(f.updateItem))
	mux.HandleFunc("DELETE /api/v1/cart/items/{id}", f.authed(f.removeItem))
	mux.HandleFunc("POST /api/v1/cart/validate", f.authed(f.validate))
	mux.HandleFunc("POST /api/v1/vouchers/apply", f.authed(f.applyVoucher))
	mux.HandleFunc("POST /api/v1/orders", f.authed(f.createOrder))
	mux.HandleFunc("POST /api/v1/payments/orders/{id}/proof", f.authed(f.uploadProof))
	mux.HandleFunc("POST /api/v1/reviews", f.authed(func(w http.ResponseWriter, _ *http.Request) {
		writeFakeError(w, http.StatusUnprocessableEntity, "NOT_ELIGIBLE", "You cannot review this product")
	}))
	mux.HandleFunc("GET /api/v1/admin/orders", f.authed(func(w http.ResponseWriter, _ *http.Request) {
		writeFakeError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
	}))

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeAPI) addProduct(name, price string, stock int) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.New()
	f.products[id] = fakeProduct{name: name, price: decimal.RequireFromString(price), stock: stock}

	return id
}

func (f *fakeAPI) setStock(id uuid.UUID, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.products[id]
	p.stock = stock
	f.products[id] = p
}

func (f *fakeAPI) gets() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.cartGets
}

func (f *fakeAPI) stats() (attempts, rotations int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.refreshAttempts, f.rotations
}

// expireAccess invalidates the access token the client currently holds.
func (f *fakeAPI) expireAccess() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.access = "access-rotated-out"
}

func (f *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		ok := r.Header.Get("Authorization") == "Bearer "+f.access
		f.mu.Unlock()

		if !ok {
			writeFakeError(w, http.StatusForbidden, "FORBIDDEN", "token expired")
			return
		}

		next(w, r)
	}
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	if body["password"] != "secret" {
		writeFakeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return
	}

	f.mu.Lock()
	pair := TokenPair{AccessToken: f.access, RefreshToken: f.refresh, ExpiresIn: 900}
	f.mu.Unlock()

	writeFakeData(w, http.StatusOK, pair)
}

func (f *fakeAPI) refreshToken(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.refreshAttempts++

	if body["refresh_token"] != f.refresh {
		writeFakeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired refresh token")
		return
	}

	f.rotations++
	f.access = fmt.Sprintf("access-%d", f.rotations)
	f.refresh = fmt.Sprintf("refresh-%d", f.rotations)

	writeFakeData(w, http.StatusOK, TokenPair{AccessToken: f.access, RefreshToken: f.refresh, ExpiresIn: 900})
}

func (f *fakeAPI) cartLocked() Cart {
	cart := Cart{ID: uuid.Nil, Items: []CartItem{}, TotalAmount: decimal.Zero}

	for _, line := range f.lines {
		p := f.products[line.productID]
		subtotal := p.price.Mul(decimal.NewFromInt(int64(line.quantity)))

		cart.Items = append(cart.Items, CartItem{
			ProductID: line.productID,
			Name:      p.name,
			UnitPrice: p.price,
			Quantity:  line.quantity,
			Stock:     p.stock,
			Subtotal:  subtotal,
		})
		cart.TotalItems += line.quantity
		cart.TotalAmount = cart.TotalAmount.Add(subtotal)
	}

	return cart
}

func (f *fakeAPI) getCart(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cartGets++
	writeFakeData(w, http.StatusOK, f.cartLocked())
}

func (f *fakeAPI) clearCart(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lines = nil
	writeFakeData(w, http.StatusOK, f.cartLocked())
}

func (f *fakeAPI) addItem(w http.ResponseWriter, r *http.Request) {
	var line CartLine
	_ = json.NewDecoder(r.Body).Decode(&line)

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.products[line.ProductID]
	if !ok {
		writeFakeError(w, http.StatusNotFound, "NOT_FOUND", "Product not found")
		return
	}

	for i := range f.lines {
		if f.lines[i].productID == line.ProductID {
			if f.lines[i].quantity+line.Quantity > p.stock {
				writeFakeError(w, http.StatusConflict, "CONFLICT", "Insufficient stock")
				return
			}

			f.lines[i].quantity += line.Quantity
			writeFakeData(w, http.StatusOK, f.cartLocked())

			return
		}
	}

	if line.Quantity > p.stock {
		writeFakeError(w, http.StatusConflict, "CONFLICT", "Insufficient stock")
		return
	}

	f.lines = append(f.lines, fakeLine{productID: line.ProductID, quantity: line.Quantity})
	writeFakeData(w, http.StatusOK, f.cartLocked())
}

func (f *fakeAPI) updateItem(w http.ResponseWriter, r *http.Request) {
	id := uuid.MustParse(r.PathValue("id"))

	var body map[string]int
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.lines {
		if f.lines[i].productID != id {
			continue
		}

		if body["quantity"] < 1 {
			f.lines = append(f.lines[:i], f.lines[i+1:]...)
		} else {
			f.lines[i].quantity = body["quantity"]
		}

		writeFakeData(w, http.StatusOK, f.cartLocked())

		return
	}

	writeFakeError(w, http.StatusNotFound, "NOT_FOUND", "Item not found in cart")
}

func (f *fakeAPI) removeItem(w http.ResponseWriter, r *http.Request) {
	id := uuid.MustParse(r.PathValue("id"))

	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.lines {
		if f.lines[i].productID == id {
			f.lines = append(f.lines[:i], f.lines[i+1:]...)
			writeFakeData(w, http.StatusOK, f.cartLocked())

			return
		}
	}

	writeFakeError(w, http.StatusNotFound, "NOT_FOUND", "Item not found in cart")
}

func (f *fakeAPI) validate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []CartLine `json:"items"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	defer f.mu.Unlock()

	result := CartValidation{Valid: true}

	for _, line := range body.Items {
		v := LineValidation{ProductID: line.ProductID, Requested: line.Quantity}

		p, ok := f.products[line.ProductID]
		switch {
		case !ok:
			v.Reason = "product not found"
		case line.Quantity > p.stock:
			v.Available = p.stock
			v.Reason = "insufficient stock"
		default:
			v.Available = p.stock
			v.Valid = true
		}

		if !v.Valid {
			result.Valid = false
		}

		result.Items = append(result.Items, v)
	}

	writeFakeData(w, http.StatusOK, result)
}

func (f *fakeAPI) applyVoucher(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code     string          `json:"code"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if body.Code != "SAVE10" {
		writeFakeError(w, http.StatusNotFound, "NOT_FOUND", "Voucher not found")
		return
	}

	writeFakeData(w, http.StatusOK, VoucherDiscount{
		Code:     "SAVE10",
		Discount: body.Subtotal.Mul(decimal.RequireFromString("0.10")).Round(2),
	})
}

func (f *fakeAPI) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.orders = append(f.orders, req)

	ordered := make(map[uuid.UUID]int, len(req.Items))
	for _, item := range req.Items {
		ordered[item.ProductID] += item.Quantity
	}

	kept := f.lines[:0]
	for _, line := range f.lines {
		line.quantity -= ordered[line.productID]
		if line.quantity > 0 {
			kept = append(kept, line)
		}
	}
	f.lines = kept

	writeFakeData(w, http.StatusCreated, Order{ID: uuid.New(), Status: "pending", PaymentStatus: "unpaid", VoucherCode: req.VoucherCode})
}

func (f *fakeAPI) uploadProof(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("proof")
	if err != nil {
		writeFakeError(w, http.StatusBadRequest, "BAD_REQUEST", "Missing proof image")
		return
	}
	defer file.Close()

	content, _ := io.ReadAll(file)

	f.mu.Lock()
	f.proofs = append(f.proofs, string(content))
	f.mu.Unlock()

	orderID := uuid.MustParse(r.PathValue("id"))
	writeFakeData(w, http.StatusCreated, Payment{ID: uuid.New(), OrderID: orderID, Method: "bank_transfer", Status: "pending", ProofURL: "/uploads/payment-proofs/p.png"})
}

func writeFakeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func writeFakeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]any{"code": code, "message": message},
	})
}

func (f *fakeAPI) placedOrders() []createOrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]createOrderRequest(nil), f.orders...)
}

func (f *fakeAPI) uploadedProofs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.proofs...)
}
