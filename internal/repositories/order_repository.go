package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order, cartID uuid.UUID) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error)
	ListOrders(ctx context.Context, status models.OrderStatus, page, size int) ([]*models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, shipment *models.Shipment) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

const orderSelect = `
	SELECT o.id, o.user_id, o.status, o.payment_status, o.shipping_address, o.shipping_method_id,
	       o.shipping_cost, o.subtotal, o.discount, o.total, o.voucher_code, o.note, o.created_at, o.updated_at,
	       s.id, s.carrier, s.tracking_number, s.shipped_at, s.delivered_at
	FROM orders o
	LEFT JOIN shipments s ON s.order_id = o.id`

// CreateOrder reserves stock, writes the order with its price snapshot and
// takes the ordered quantities out of the cart in a single transaction.
// A product without enough stock aborts everything with ErrInsufficientStock.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order, cartID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	return withTx(dbCtx, r.DB, func(tx *sql.Tx) error {
		for _, item := range order.Items {
			result, err := tx.ExecContext(dbCtx, `
				UPDATE products SET stock_quantity = stock_quantity - $1, updated_at = NOW()
				WHERE id = $2 AND stock_quantity >= $1`, item.Quantity, item.ProductID)
			if err != nil {
				return fmt.Errorf("failed to reserve stock: %w", err)
			}

			if err := expectAffected(result); err != nil {
				if err == sql.ErrNoRows {
					return fmt.Errorf("%w: product %s", ErrInsufficientStock, item.ProductID)
				}
				return err
			}
		}

		orderQuery := `
			INSERT INTO orders (id, user_id, status, payment_status, shipping_address, shipping_method_id,
			                    shipping_cost, subtotal, discount, total, voucher_code, note, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
			RETURNING created_at, updated_at`

		err := tx.QueryRowContext(dbCtx, orderQuery, order.ID, order.UserID, order.Status, order.PaymentStatus, address,
			order.ShippingMethodID, order.ShippingCost, order.Subtotal, order.Discount, order.Total, order.VoucherCode, order.Note).
			Scan(&order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		itemQuery := `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING created_at`

		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			if err := tx.QueryRowContext(dbCtx, itemQuery, item.ID, order.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice).
				Scan(&item.CreatedAt); err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}

		for _, item := range order.Items {
			if _, err := tx.ExecContext(dbCtx, `
				DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2 AND quantity <= $3`,
				cartID, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to remove cart item: %w", err)
			}

			if _, err := tx.ExecContext(dbCtx, `
				UPDATE cart_items SET quantity = quantity - $3, updated_at = NOW()
				WHERE cart_id = $1 AND product_id = $2 AND quantity > $3`,
				cartID, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("failed to reduce cart item: %w", err)
			}
		}

		return nil
	})
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(dbCtx, []*models.Order{order}); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID, page, size int) ([]*models.Order, int, error) {
	return r.listOrders(ctx, `o.user_id = $1`, userID, page, size)
}

// ListOrders lists every order, optionally narrowed to one status.
func (r *orderRepository) ListOrders(ctx context.Context, status models.OrderStatus, page, size int) ([]*models.Order, int, error) {
	if status == "" {
		return r.listOrders(ctx, "", nil, page, size)
	}

	return r.listOrders(ctx, `o.status = $1`, status, page, size)
}

func (r *orderRepository) listOrders(ctx context.Context, condition string, arg any, page, size int) ([]*models.Order, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var (
		args  []any
		where string
	)

	if condition != "" {
		where = " WHERE " + condition
		args = append(args, arg)
	}

	var total int
	if err := r.DB.QueryRowContext(dbCtx, `SELECT COUNT(*) FROM orders o`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`%s%s ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d`, orderSelect, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating order rows: %w", err)
	}

	if err := r.attachItems(dbCtx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateOrderStatus moves an order from one status to the next. The update
// only applies while the order still carries `from`, otherwise it fails
// with ErrStatusChanged. Cancelling puts the reserved stock back, shipping
// records the shipment and delivering stamps it.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, shipment *models.Shipment) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	return withTx(dbCtx, r.DB, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(dbCtx, `
			UPDATE orders SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3`, to, id, from)
		if err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		if err := expectAffected(result); err != nil {
			if err == sql.ErrNoRows {
				return ErrStatusChanged
			}
			return err
		}

		switch to {
		case models.OrderStatusCancelled:
			if _, err := tx.ExecContext(dbCtx, `
				UPDATE products p SET stock_quantity = p.stock_quantity + oi.quantity, updated_at = NOW()
				FROM order_items oi
				WHERE oi.order_id = $1 AND p.id = oi.product_id`, id); err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		case models.OrderStatusShipped:
			if shipment == nil {
				return fmt.Errorf("shipment details required to ship order %s", id)
			}
			shipment.OrderID = id
			if err := tx.QueryRowContext(dbCtx, `
				INSERT INTO shipments (id, order_id, carrier, tracking_number, shipped_at)
				VALUES ($1, $2, $3, $4, NOW())
				RETURNING shipped_at`, shipment.ID, id, shipment.Carrier, shipment.TrackingNumber).
				Scan(&shipment.ShippedAt); err != nil {
				return fmt.Errorf("failed to create shipment: %w", err)
			}
		case models.OrderStatusDelivered:
			if _, err := tx.ExecContext(dbCtx, `
				UPDATE shipments SET delivered_at = NOW() WHERE order_id = $1`, id); err != nil {
				return fmt.Errorf("failed to mark shipment delivered: %w", err)
			}
		}

		return nil
	})
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `
		UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order payment status: %w", err)
	}

	return expectAffected(result)
}

func (r *orderRepository) attachItems(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[uuid.UUID]*models.Order, len(orders))
	for i, order := range orders {
		ids[i] = order.ID.String()
		byID[order.ID] = order
		order.Items = []models.OrderItem{}
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, created_at
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY created_at`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		item.Subtotal = item.UnitPrice.Mul(decimalFromInt(item.Quantity))

		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	return rows.Err()
}

func scanOrder(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	var (
		order       models.Order
		address     []byte
		shipmentID  uuid.NullUUID
		carrier     sql.NullString
		tracking    sql.NullString
		shippedAt   sql.NullTime
		deliveredAt sql.NullTime
	)

	err := row.Scan(&order.ID, &order.UserID, &order.Status, &order.PaymentStatus, &address, &order.ShippingMethodID,
		&order.ShippingCost, &order.Subtotal, &order.Discount, &order.Total, &order.VoucherCode, &order.Note,
		&order.CreatedAt, &order.UpdatedAt, &shipmentID, &carrier, &tracking, &shippedAt, &deliveredAt)
	if err != nil {
		return nil, err
	}

	if len(address) > 0 {
		order.ShippingAddress = &models.Address{}
		if err := json.Unmarshal(address, order.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
		}
	}

	if shipmentID.Valid {
		order.Shipment = &models.Shipment{
			ID:             shipmentID.UUID,
			OrderID:        order.ID,
			Carrier:        carrier.String,
			TrackingNumber: tracking.String,
			ShippedAt:      shippedAt.Time,
		}
		if deliveredAt.Valid {
			order.Shipment.DeliveredAt = &deliveredAt.Time
		}
	}

	return &order, nil
}
