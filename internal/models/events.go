package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published after checkout commits
type OrderPlacedEvent struct {
	BaseEvent
	OrderID   int64           `json:"order_id"`
	UserID    int64           `json:"user_id"`
	Total     float64         `json:"total"`
	Items     []OrderItemData `json:"items"`
	SellerIDs []int64         `json:"seller_ids"`
}

// OrderStatusChangedEvent published on every status transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    int64  `json:"order_id"`
	UserID     int64  `json:"user_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	TrackingID string `json:"tracking_id,omitempty"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
