package store

import (
	"context"
	"fmt"

	"techorbit/internal/models"
)

// CreateReview inserts a review and recomputes the product's average rating
// inside the same transaction.
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO reviews (user_id, product_id, rating, comment) VALUES (?, ?, ?, ?)",
		review.UserID, review.ProductID, review.Rating, review.Comment)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	review.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE products SET rating =
		 (SELECT AVG(rating) FROM reviews WHERE product_id = ?)
		 WHERE id = ?`,
		review.ProductID, review.ProductID)
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}

	return tx.Commit()
}

// GetReviewsByProductID retrieves a product's reviews joined with the
// reviewer's name, newest first.
func (s *Store) GetReviewsByProductID(ctx context.Context, productID int64) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		`SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at,
		 u.name AS user_name
		 FROM reviews r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.product_id = ?
		 ORDER BY r.created_at DESC`, productID)
	return reviews, err
}
