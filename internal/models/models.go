package models

import "time"

// User roles
const (
	RoleUser   = "user"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User represents a storefront account
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Address      string    `db:"address" json:"address,omitempty"`
	City         string    `db:"city" json:"city,omitempty"`
	Pincode      string    `db:"pincode" json:"pincode,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Product represents a catalog listing owned by a seller
type Product struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Price       float64   `db:"price" json:"price"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	Rating      float64   `db:"rating" json:"rating"`
	SellerID    int64     `db:"seller_id" json:"seller_id"`
	Stock       int       `db:"stock" json:"stock"`
	Variants    string    `db:"variants" json:"variants,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Order statuses
const (
	OrderStatusProcessing     = "Processing"
	OrderStatusShipped        = "Shipped"
	OrderStatusOutForDelivery = "Out for Delivery"
	OrderStatusDelivered      = "Delivered"
	OrderStatusCancelled      = "Cancelled"
)

// Payment methods
const (
	PaymentMethodCard = "Card"
	PaymentMethodUPI  = "UPI"
	PaymentMethodCOD  = "COD"
)

// Payment statuses
const (
	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "Paid"
)

// Order represents a customer order
type Order struct {
	ID                int64     `db:"id" json:"id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	Total             float64   `db:"total" json:"total"`
	Status            string    `db:"status" json:"status"`
	PaymentMethod     string    `db:"payment_method" json:"payment_method"`
	PaymentStatus     string    `db:"payment_status" json:"payment_status"`
	ShippingAddress   string    `db:"shipping_address" json:"shipping_address"`
	TrackingID        string    `db:"tracking_id" json:"tracking_id,omitempty"`
	Courier           string    `db:"courier" json:"courier,omitempty"`
	EstimatedDelivery string    `db:"estimated_delivery" json:"estimated_delivery,omitempty"`
	CouponCode        string    `db:"coupon_code" json:"coupon_code,omitempty"`
	IdempotencyKey    string    `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// OrderItem is the line-item snapshot taken at purchase time
type OrderItem struct {
	ID        int64   `db:"id" json:"id"`
	OrderID   int64   `db:"order_id" json:"order_id"`
	ProductID int64   `db:"product_id" json:"product_id"`
	Quantity  int     `db:"quantity" json:"quantity"`
	UnitPrice float64 `db:"unit_price" json:"unit_price"`
	Variant   string  `db:"variant" json:"variant,omitempty"`
}

// Review is a customer rating on a product
type Review struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Rating    int       `db:"rating" json:"rating"`
	Comment   string    `db:"comment" json:"comment"`
	UserName  string    `db:"user_name" json:"user_name,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// WishlistItem marks a product as wishlisted by a user
type WishlistItem struct {
	UserID    int64 `db:"user_id" json:"user_id"`
	ProductID int64 `db:"product_id" json:"product_id"`
}

// Notification is a message delivered to a user's inbox
type Notification struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}

// Stats is the admin analytics snapshot
type Stats struct {
	TotalUsers      int64             `json:"total_users"`
	TotalProducts   int64             `json:"total_products"`
	TotalOrders     int64             `json:"total_orders"`
	TotalRevenue    float64           `json:"total_revenue"`
	CategoryRevenue []CategoryRevenue `json:"category_revenue"`
	TopProducts     []TopProduct      `json:"top_products"`
}

// CategoryRevenue is revenue summed per product category
type CategoryRevenue struct {
	Category string  `db:"category" json:"category"`
	Revenue  float64 `db:"revenue" json:"revenue"`
}

// TopProduct is a product ranked by units sold
type TopProduct struct {
	ProductID int64  `db:"product_id" json:"product_id"`
	Title     string `db:"title" json:"title"`
	Units     int64  `db:"units" json:"units"`
}

var orderTransitions = map[string][]string{
	OrderStatusProcessing:     {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:        {OrderStatusOutForDelivery, OrderStatusDelivered},
	OrderStatusOutForDelivery: {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
// Delivered and Cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a status admits no further transitions.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}
