package service

import (
	"context"
	"errors"

	"techorbit/internal/models"
	"techorbit/internal/store"
	"techorbit/internal/util"

	"go.uber.org/zap"
)

// ErrInvalidRating rejects ratings outside 1..5.
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// ReviewService handles product reviews.
type ReviewService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewReviewService creates a new review service
func NewReviewService(st *store.Store) *ReviewService {
	return &ReviewService{store: st, logger: util.GetLogger()}
}

// CreateReviewRequest carries a new review
type CreateReviewRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

// CreateReview stores a review and refreshes the product's average rating.
func (s *ReviewService) CreateReview(ctx context.Context, userID int64, req *CreateReviewRequest) (*models.Review, error) {
	ctx, span := util.StartSpan(ctx, "ReviewService.CreateReview")
	defer span.End()

	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.store.GetProductByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	review := &models.Review{
		UserID:    userID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info("Review created",
		zap.Int64("product_id", req.ProductID),
		zap.Int("rating", req.Rating))
	return review, nil
}

// GetReviews lists a product's reviews with reviewer names
func (s *ReviewService) GetReviews(ctx context.Context, productID int64) ([]models.Review, error) {
	return s.store.GetReviewsByProductID(ctx, productID)
}
