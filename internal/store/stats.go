package store

import (
	"context"

	"techorbit/internal/models"
)

// GetStats aggregates the admin analytics snapshot: entity counts, total
// revenue over non-cancelled orders, revenue per category and the best
// selling products by units.
func (s *Store) GetStats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}

	if err := s.db.GetContext(ctx, &stats.TotalUsers,
		"SELECT COUNT(*) FROM users"); err != nil {
		return nil, err
	}
	if err := s.db.GetContext(ctx, &stats.TotalProducts,
		"SELECT COUNT(*) FROM products"); err != nil {
		return nil, err
	}
	if err := s.db.GetContext(ctx, &stats.TotalOrders,
		"SELECT COUNT(*) FROM orders"); err != nil {
		return nil, err
	}
	if err := s.db.GetContext(ctx, &stats.TotalRevenue,
		"SELECT COALESCE(SUM(total), 0) FROM orders WHERE status != ?",
		models.OrderStatusCancelled); err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &stats.CategoryRevenue,
		`SELECT p.category AS category, SUM(oi.unit_price * oi.quantity) AS revenue
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.status != ?
		 GROUP BY p.category
		 ORDER BY revenue DESC`,
		models.OrderStatusCancelled); err != nil {
		return nil, err
	}

	if err := s.db.SelectContext(ctx, &stats.TopProducts,
		`SELECT p.id AS product_id, p.title AS title, SUM(oi.quantity) AS units
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 JOIN orders o ON o.id = oi.order_id
		 WHERE o.status != ?
		 GROUP BY p.id, p.title
		 ORDER BY units DESC
		 LIMIT 5`,
		models.OrderStatusCancelled); err != nil {
		return nil, err
	}

	return stats, nil
}
