package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"techorbit/internal/models"

	"github.com/jmoiron/sqlx"
)

// Product sort orders accepted by ListProducts
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortNewest    = "newest"
)

// ProductFilter narrows a catalog listing. Zero values mean "no filter".
type ProductFilter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	Page     int
	Limit    int
}

// ListProducts composes the catalog query from the optional filters:
// substring search on title/description, category equality, price range,
// sort order and offset pagination.
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	var conds []string
	var args []interface{}

	if f.Search != "" {
		conds = append(conds, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.MinPrice != nil {
		conds = append(conds, "price >= ?")
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price <= ?")
		args = append(args, *f.MaxPrice)
	}

	query := "SELECT * FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	switch f.Sort {
	case SortPriceAsc:
		query += " ORDER BY price ASC"
	case SortPriceDesc:
		query += " ORDER BY price DESC"
	default:
		query += " ORDER BY created_at DESC"
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, (page-1)*limit)

	var products []models.Product
	err := s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product, "SELECT * FROM products WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductsByIDs retrieves multiple products by IDs
func (s *Store) GetProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM products WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetProductsBySeller retrieves a seller's listings
func (s *Store) GetProductsBySeller(ctx context.Context, sellerID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE seller_id = ? ORDER BY created_at DESC", sellerID)
	return products, err
}

// CreateProduct inserts a new listing and fills in its generated ID.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (title, price, description, category, image_url, rating, seller_id, stock, variants)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Price, p.Description, p.Category, p.ImageURL, p.Rating,
		p.SellerID, p.Stock, p.Variants)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	p.ID, err = res.LastInsertId()
	return err
}

// UpdateProduct rewrites the mutable fields of a listing.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET title = ?, price = ?, description = ?, category = ?,
		 image_url = ?, stock = ?, variants = ? WHERE id = ?`,
		p.Title, p.Price, p.Description, p.Category, p.ImageURL, p.Stock, p.Variants, p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct removes a listing
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetCategories returns the distinct non-empty categories in the catalog.
func (s *Store) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.db.SelectContext(ctx, &categories,
		"SELECT DISTINCT category FROM products WHERE category != '' ORDER BY category")
	return categories, err
}
