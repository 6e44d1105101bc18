package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, requester *models.Claims, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error)
	CancelOrder(ctx context.Context, userID, id uuid.UUID) (*models.Order, error)
	ListAllOrders(ctx context.Context, status models.OrderStatus, page, size int) ([]*models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error)
}

type orderService struct {
	repo      repository.OrderRepository
	carts     repository.CartRepository
	products  repository.ProductRepository
	addresses repository.AddressRepository
	shipping  repository.ShippingRepository
	vouchers  VoucherService
	notifier  NotificationService
}

func NewOrderService(
	repo repository.OrderRepository,
	carts repository.CartRepository,
	products repository.ProductRepository,
	addresses repository.AddressRepository,
	shipping repository.ShippingRepository,
	vouchers VoucherService,
	notifier NotificationService,
) OrderService {
	return &orderService{
		repo:      repo,
		carts:     carts,
		products:  products,
		addresses: addresses,
		shipping:  shipping,
		vouchers:  vouchers,
		notifier:  notifier,
	}
}

// CreateOrder checks out the selected cart lines. Prices are taken from the
// current product rows; stock is reserved and the lines leave the cart in
// the same transaction that stores the order.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	logger := middleware.LoggerFromContext(ctx)

	lines := mergeLines(req.Items)

	cart, err := s.carts.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to load cart").WithError(err)
	}

	for _, line := range lines {
		item, ok := cart.Item(line.ProductID)
		if !ok {
			return nil, appErrors.BadRequestError("Item is not in the cart").WithDetail(line.ProductID.String())
		}
		if line.Quantity > item.Quantity {
			return nil, appErrors.BadRequestError("Requested quantity exceeds the quantity in the cart").WithDetail(line.ProductID.String())
		}
	}

	address, err := s.addresses.GetAddressByID(ctx, req.AddressID)
	if err != nil {
		return nil, lookupError(err, "Address not found")
	}
	if address.UserID != userID {
		return nil, appErrors.NotFoundError("Address not found")
	}

	method, err := s.shipping.GetMethodByID(ctx, req.ShippingMethodID)
	if err != nil {
		return nil, lookupError(err, "Shipping method not found")
	}
	if !method.Active {
		return nil, appErrors.BadRequestError("Shipping method is not available")
	}

	order := &models.Order{
		ID:               uuid.New(),
		UserID:           userID,
		Status:           models.OrderStatusPending,
		PaymentStatus:    models.PaymentStatusUnpaid,
		ShippingAddress:  address,
		ShippingMethodID: method.ID,
		ShippingCost:     method.Cost,
		Discount:         decimal.Zero,
		Note:             req.Note,
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		product, err := s.products.GetProductByID(ctx, line.ProductID)
		if err != nil {
			return nil, lookupError(err, "Product not found")
		}
		if !product.Purchasable() {
			return nil, appErrors.BadRequestError("Product is not available for purchase").WithDetail(product.Name)
		}
		if line.Quantity > product.StockQuantity {
			return nil, insufficientStock(product)
		}

		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		order.Items = append(order.Items, models.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    lineTotal,
		})
	}

	order.Subtotal = subtotal

	if code := strings.TrimSpace(req.VoucherCode); code != "" {
		discount, err := s.vouchers.ApplyVoucher(ctx, code, subtotal)
		if err != nil {
			return nil, err
		}

		order.VoucherCode = discount.Code
		order.Discount = discount.Discount
	}

	order.Total = order.Subtotal.Add(order.ShippingCost).Sub(order.Discount)

	if err := s.repo.CreateOrder(ctx, order, cart.ID); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, appErrors.ConflictError("Insufficient stock").WithDetail(err.Error()).WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
	}

	metrics.RecordOrderPlaced()
	logger.Info("Order placed", slog.String("orderId", order.ID.String()), slog.String("total", order.Total.String()))

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, requester *models.Claims, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Order not found")
	}

	if !canAccess(requester, order.UserID) {
		return nil, appErrors.ForbiddenError("You do not have permission to view this order")
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	orders, total, err := s.repo.ListOrdersByUser(ctx, userID, page, size)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

// CancelOrder lets a customer cancel an order that has not shipped yet.
// Reserved stock goes back to the products.
func (s *orderService) CancelOrder(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Order not found")
	}

	if order.UserID != userID {
		return nil, appErrors.ForbiddenError("You do not have permission to cancel this order")
	}

	if !order.Status.Cancellable() {
		return nil, appErrors.BadRequestError(fmt.Sprintf("Order cannot be cancelled once it is %s", order.Status))
	}

	return s.transition(ctx, order, models.OrderStatusCancelled, nil)
}

func (s *orderService) ListAllOrders(ctx context.Context, status models.OrderStatus, page, size int) ([]*models.Order, int, error) {
	orders, total, err := s.repo.ListOrders(ctx, status, page, size)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return orders, total, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Order not found")
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, appErrors.BadRequestError(fmt.Sprintf("Cannot change order status from %s to %s", order.Status, req.Status))
	}

	var shipment *models.Shipment

	if req.Status == models.OrderStatusShipped {
		if order.PaymentStatus != models.PaymentStatusPaid {
			return nil, appErrors.BadRequestError("Order must be paid before it can ship")
		}

		carrier, tracking := strings.TrimSpace(req.Carrier), strings.TrimSpace(req.TrackingNumber)
		if carrier == "" || tracking == "" {
			return nil, appErrors.ValidationError("Carrier and tracking number are required to ship an order")
		}

		shipment = &models.Shipment{
			ID:             uuid.New(),
			OrderID:        order.ID,
			Carrier:        carrier,
			TrackingNumber: tracking,
			ShippedAt:      time.Now().UTC(),
		}
	}

	return s.transition(ctx, order, req.Status, shipment)
}

func (s *orderService) transition(ctx context.Context, order *models.Order, to models.OrderStatus, shipment *models.Shipment) (*models.Order, error) {
	from := order.Status

	if err := s.repo.UpdateOrderStatus(ctx, order.ID, from, to, shipment); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, appErrors.ConflictError("Order status changed concurrently, reload and retry").WithError(err)
		}

		return nil, appErrors.DatabaseError("Failed to update order status").WithError(err)
	}

	metrics.RecordOrderTransition(string(from), string(to))

	updated, err := s.repo.GetOrderByID(ctx, order.ID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to reload order").WithError(err)
	}

	s.notifier.NotifyOrderStatus(ctx, updated)

	return updated, nil
}

// mergeLines folds duplicate products into one line, keeping first-seen order.
func mergeLines(lines []models.CartLine) []models.CartLine {
	merged := make([]models.CartLine, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))

	for _, line := range lines {
		if i, ok := index[line.ProductID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}

		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}

	return merged
}
