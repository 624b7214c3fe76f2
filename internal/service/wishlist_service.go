package service

import (
	"context"

	"techorbit/internal/models"
	"techorbit/internal/store"
	"techorbit/internal/util"
)

// WishlistService handles the wishlist toggle pairs.
type WishlistService struct {
	store *store.Store
}

// NewWishlistService creates a new wishlist service
func NewWishlistService(st *store.Store) *WishlistService {
	return &WishlistService{store: st}
}

// Toggle flips the wishlist membership of (user, product): posting the
// same pair twice adds then removes. Returns true when the product ended
// up wishlisted.
func (s *WishlistService) Toggle(ctx context.Context, userID, productID int64) (bool, error) {
	if _, err := s.store.GetProductByID(ctx, productID); err != nil {
		return false, err
	}

	added, err := s.store.ToggleWishlist(ctx, userID, productID)
	if err != nil {
		return false, err
	}

	if added {
		util.WishlistTogglesTotal.WithLabelValues("added").Inc()
	} else {
		util.WishlistTogglesTotal.WithLabelValues("removed").Inc()
	}
	return added, nil
}

// List returns the products a user has wishlisted
func (s *WishlistService) List(ctx context.Context, userID int64) ([]models.Product, error) {
	return s.store.GetWishlistByUserID(ctx, userID)
}
