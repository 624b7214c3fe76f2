package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"techorbit/internal/models"
)

// CreateOrder inserts the order and its line items in one transaction and
// decrements stock for every item, rolling all of it back if any product
// has less stock than requested.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, total, status, payment_method, payment_status,
		 shipping_address, coupon_code, idempotency_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.UserID, order.Total, order.Status, order.PaymentMethod,
		order.PaymentStatus, order.ShippingAddress, order.CouponCode, order.IdempotencyKey)
	if err != nil {
		// A concurrent checkout carrying the same idempotency key already
		// committed; the caller resolves the existing order.
		if isUniqueViolation(err) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}

	order.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	for i := range items {
		items[i].OrderID = order.ID

		stockRes, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?",
			items[i].Quantity, items[i].ProductID, items[i].Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
		n, err := stockRes.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInsufficientStock
		}

		itemRes, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price, variant)
			 VALUES (?, ?, ?, ?, ?)`,
			items[i].OrderID, items[i].ProductID, items[i].Quantity,
			items[i].UnitPrice, items[i].Variant)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
		items[i].ID, err = itemRes.LastInsertId()
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key.
// A nil order with nil error means no matching order exists.
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE idempotency_key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves a buyer's orders, newest first
func (s *Store) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = ? ORDER BY created_at DESC", userID)
	return orders, err
}

// GetOrdersBySellerID retrieves orders containing at least one of the
// seller's products.
func (s *Store) GetOrdersBySellerID(ctx context.Context, sellerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		`SELECT DISTINCT o.* FROM orders o
		 JOIN order_items oi ON oi.order_id = o.id
		 JOIN products p ON p.id = oi.product_id
		 WHERE p.seller_id = ?
		 ORDER BY o.created_at DESC`, sellerID)
	return orders, err
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = ?", orderID)
	return items, err
}

// UpdateOrderStatus moves an order to a new status and attaches tracking
// details when provided.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID int64, status, trackingID, courier, estimatedDelivery string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE orders SET status = ?,
		 tracking_id = CASE WHEN ? != '' THEN ? ELSE tracking_id END,
		 courier = CASE WHEN ? != '' THEN ? ELSE courier END,
		 estimated_delivery = CASE WHEN ? != '' THEN ? ELSE estimated_delivery END,
		 updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		status,
		trackingID, trackingID,
		courier, courier,
		estimatedDelivery, estimatedDelivery,
		orderID)
	return err
}

// SetOrderPaymentStatus updates the payment status of an order
func (s *Store) SetOrderPaymentStatus(ctx context.Context, orderID int64, paymentStatus string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orders SET payment_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		paymentStatus, orderID)
	return err
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = ?)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO processed_events (event_id, event_type) VALUES (?, ?)",
		eventID, eventType)
	return err
}
