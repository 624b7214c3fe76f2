package store

import (
	"context"

	"techorbit/internal/models"
)

// ToggleWishlist adds the (user, product) pair if absent, removes it if
// present. Returns true when the product ended up wishlisted.
func (s *Store) ToggleWishlist(ctx context.Context, userID, productID int64) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM wishlist WHERE user_id = ? AND product_id = ?)",
		userID, productID)
	if err != nil {
		return false, err
	}

	if exists {
		_, err = tx.ExecContext(ctx,
			"DELETE FROM wishlist WHERE user_id = ? AND product_id = ?", userID, productID)
	} else {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO wishlist (user_id, product_id) VALUES (?, ?)", userID, productID)
	}
	if err != nil {
		return false, err
	}

	return !exists, tx.Commit()
}

// GetWishlistByUserID retrieves the wishlisted products for a user.
func (s *Store) GetWishlistByUserID(ctx context.Context, userID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		`SELECT p.* FROM products p
		 JOIN wishlist w ON w.product_id = p.id
		 WHERE w.user_id = ?
		 ORDER BY p.created_at DESC`, userID)
	return products, err
}
