package main

import (
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/handlers"
	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	httpSwagger "github.com/swaggo/http-swagger"
)

type apiHandlers struct {
	users         *handlers.UserHandler
	products      *handlers.ProductHandler
	shipping      *handlers.ShippingHandler
	addresses     *handlers.AddressHandler
	vouchers      *handlers.VoucherHandler
	carts         *handlers.CartHandler
	orders        *handlers.OrderHandler
	payments      *handlers.PaymentHandler
	reviews       *handlers.ReviewHandler
	notifications *handlers.NotificationHandler
}

type opsHandlers struct {
	health      http.Handler
	uploads     http.Handler
	uploadsPath string
}

func newRouter(h *apiHandlers, ops *opsHandlers, auth *middleware.AuthMiddleware) *http.ServeMux {
	mux := http.NewServeMux()
	user := auth.Authenticate
	admin := auth.RequireAdmin

	// Auth
	mux.HandleFunc("POST /auth/register", h.users.Register())
	mux.HandleFunc("POST /auth/login", h.users.Login())
	mux.HandleFunc("POST /auth/refresh-token", h.users.RefreshToken())
	mux.HandleFunc("GET /api/v1/users/profile", user(h.users.Profile()))

	// Catalogue
	mux.HandleFunc("GET /api/v1/products", h.products.ListProducts())
	mux.HandleFunc("GET /api/v1/products/{id}", h.products.GetProduct())
	mux.HandleFunc("GET /api/v1/products/{id}/reviews", h.reviews.ListProductReviews())
	mux.HandleFunc("GET /api/v1/shipping-methods", h.shipping.ListMethods())
	mux.HandleFunc("GET /api/v1/shipping-methods/{id}", h.shipping.GetMethod())

	// Addresses
	mux.HandleFunc("GET /api/v1/addresses", user(h.addresses.ListAddresses()))
	mux.HandleFunc("POST /api/v1/addresses", user(h.addresses.CreateAddress()))
	mux.HandleFunc("GET /api/v1/addresses/{id}", user(h.addresses.GetAddress()))
	mux.HandleFunc("PUT /api/v1/addresses/{id}", user(h.addresses.UpdateAddress()))
	mux.HandleFunc("DELETE /api/v1/addresses/{id}", user(h.addresses.DeleteAddress()))

	// Cart
	mux.HandleFunc("GET /api/v1/cart", user(h.carts.GetCart()))
	mux.HandleFunc("DELETE /api/v1/cart", user(h.carts.ClearCart()))
	mux.HandleFunc("POST /api/v1/cart/items", user(h.carts.AddItem()))
	mux.HandleFunc("PUT /api/v1/cart/items/{productId}", user(h.carts.UpdateQuantity()))
	mux.HandleFunc("DELETE /api/v1/cart/items/{productId}", user(h.carts.RemoveItem()))
	mux.HandleFunc("POST /api/v1/cart/validate", user(h.carts.ValidateItems()))

	mux.HandleFunc("POST /api/v1/vouchers/apply", user(h.vouchers.ApplyVoucher()))

	// Orders
	mux.HandleFunc("POST /api/v1/orders", user(h.orders.CreateOrder()))
	mux.HandleFunc("GET /api/v1/orders", user(h.orders.ListOrders()))
	mux.HandleFunc("GET /api/v1/orders/{id}", user(h.orders.GetOrder()))
	mux.HandleFunc("POST /api/v1/orders/{id}/cancel", user(h.orders.CancelOrder()))
	mux.HandleFunc("GET /api/v1/orders/{id}/invoice", user(h.payments.GetInvoice()))

	// Payments
	mux.HandleFunc("POST /api/v1/payments/orders/{id}/proof", user(h.payments.UploadProof()))
	mux.HandleFunc("POST /api/v1/payments/orders/{id}/card", user(h.payments.CreateCardPayment()))
	mux.HandleFunc("GET /api/v1/payments/orders/{id}", user(h.payments.ListOrderPayments()))
	mux.HandleFunc("POST /api/v1/payments/webhook", h.payments.HandleStripeWebhook())

	// Reviews
	mux.HandleFunc("GET /api/v1/reviews/eligibility", user(h.reviews.CheckEligibility()))
	mux.HandleFunc("POST /api/v1/reviews", user(h.reviews.CreateReview()))
	mux.HandleFunc("GET /api/v1/reviews/{id}", h.reviews.GetReview())
	mux.HandleFunc("PUT /api/v1/reviews/{id}", user(h.reviews.UpdateReview()))
	mux.HandleFunc("DELETE /api/v1/reviews/{id}", user(h.reviews.DeleteReview()))
	mux.HandleFunc("POST /api/v1/reviews/{id}/images", user(h.reviews.AddImage()))

	mux.HandleFunc("GET /api/v1/notifications", user(h.notifications.ListNotifications()))

	// Admin
	mux.HandleFunc("POST /api/v1/admin/products", admin(h.products.CreateProduct()))
	mux.HandleFunc("PUT /api/v1/admin/products/{id}", admin(h.products.UpdateProduct()))
	mux.HandleFunc("DELETE /api/v1/admin/products/{id}", admin(h.products.DeleteProduct()))
	mux.HandleFunc("GET /api/v1/admin/shipping-methods", admin(h.shipping.ListMethods()))
	mux.HandleFunc("POST /api/v1/admin/shipping-methods", admin(h.shipping.CreateMethod()))
	mux.HandleFunc("PUT /api/v1/admin/shipping-methods/{id}", admin(h.shipping.UpdateMethod()))
	mux.HandleFunc("POST /api/v1/admin/vouchers", admin(h.vouchers.CreateVoucher()))
	mux.HandleFunc("GET /api/v1/admin/orders", admin(h.orders.ListAllOrders()))
	mux.HandleFunc("PATCH /api/v1/admin/orders/{id}/status", admin(h.orders.UpdateOrderStatus()))
	mux.HandleFunc("POST /api/v1/admin/payments/{id}/confirm", admin(h.payments.ConfirmPayment()))
	mux.HandleFunc("POST /api/v1/admin/payments/{id}/reject", admin(h.payments.RejectPayment()))
	mux.HandleFunc("POST /api/v1/admin/payments/{id}/refund", admin(h.payments.RefundPayment()))
	mux.HandleFunc("POST /api/v1/admin/notifications/email", admin(h.notifications.SendEmail()))

	// Ops
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /health", ops.health)
	mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	mux.Handle("GET "+strings.TrimSuffix(ops.uploadsPath, "/")+"/", ops.uploads)

	return mux
}

// chain wraps the router outermost first: Recovery sees every panic and
// Logging puts the request logger in context before anything else runs.
func chain(next http.Handler, allowedOrigins []string, wrap func(http.Handler) http.Handler) http.Handler {
	handler := wrap(next)
	handler = middleware.CORS(allowedOrigins)(handler)
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)

	return handler
}
