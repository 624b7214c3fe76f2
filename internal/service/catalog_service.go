package service

import (
	"context"
	"errors"
	"fmt"

	"techorbit/internal/models"
	"techorbit/internal/store"
	"techorbit/internal/util"

	"go.uber.org/zap"
)

// ErrInvalidPrice rejects non-positive listing prices.
var ErrInvalidPrice = errors.New("price must be greater than zero")

// CatalogService handles product listings and catalog queries.
type CatalogService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(st *store.Store) *CatalogService {
	return &CatalogService{store: st, logger: util.GetLogger()}
}

// ListProducts runs the filtered catalog query
func (s *CatalogService) ListProducts(ctx context.Context, f store.ProductFilter) ([]models.Product, error) {
	return s.store.ListProducts(ctx, f)
}

// GetProduct retrieves a single product
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// GetProductsBySeller lists a seller's products
func (s *CatalogService) GetProductsBySeller(ctx context.Context, sellerID int64) ([]models.Product, error) {
	return s.store.GetProductsBySeller(ctx, sellerID)
}

// GetCategories lists the distinct catalog categories
func (s *CatalogService) GetCategories(ctx context.Context) ([]string, error) {
	return s.store.GetCategories(ctx)
}

// CreateProductRequest carries a new listing
type CreateProductRequest struct {
	Title       string  `json:"title" binding:"required"`
	Price       float64 `json:"price" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
	Stock       int     `json:"stock"`
	Variants    string  `json:"variants"`
}

// CreateProduct creates a listing owned by the acting seller. The owner is
// taken from the verified token, not the body.
func (s *CatalogService) CreateProduct(ctx context.Context, sellerID int64, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if req.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	product := &models.Product{
		Title:       req.Title,
		Price:       req.Price,
		Description: req.Description,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		SellerID:    sellerID,
		Stock:       req.Stock,
		Variants:    req.Variants,
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.Int64("product_id", product.ID),
		zap.Int64("seller_id", sellerID))
	return product, nil
}

// UpdateProduct rewrites a listing. Only the owning seller or an admin may
// modify it.
func (s *CatalogService) UpdateProduct(ctx context.Context, productID, actorID int64, actorRole string, req *CreateProductRequest) (*models.Product, error) {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && product.SellerID != actorID {
		return nil, ErrForbidden
	}
	if req.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	product.Title = req.Title
	product.Price = req.Price
	product.Description = req.Description
	product.Category = req.Category
	product.ImageURL = req.ImageURL
	product.Stock = req.Stock
	product.Variants = req.Variants

	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteProduct removes a listing. Only the owning seller or an admin may
// delete it.
func (s *CatalogService) DeleteProduct(ctx context.Context, productID, actorID int64, actorRole string) error {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if actorRole != models.RoleAdmin && product.SellerID != actorID {
		return ErrForbidden
	}
	return s.store.DeleteProduct(ctx, productID)
}
