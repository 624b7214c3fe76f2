package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"techorbit/internal/cart"
	"techorbit/internal/models"
	"techorbit/internal/store"
	"techorbit/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrForbidden         = errors.New("not allowed")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrCannotCancel      = errors.New("order can only be cancelled while processing")
)

// OrderEventPublisher publishes the order lifecycle events.
// *broker.EventPublisher satisfies it.
type OrderEventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// IdempotencyCache caches idempotency keys for fast duplicate detection.
// *redisclient.Client satisfies it.
type IdempotencyCache interface {
	GetIdempotencyKey(ctx context.Context, key string) (string, error)
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// OrderService handles checkout and the order lifecycle.
type OrderService struct {
	store          *store.Store
	cache          IdempotencyCache
	eventPublisher OrderEventPublisher
	coupons        *CouponService
	payments       *PaymentService
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	st *store.Store,
	cache IdempotencyCache,
	eventPublisher OrderEventPublisher,
	coupons *CouponService,
	payments *PaymentService,
) *OrderService {
	return &OrderService{
		store:          st,
		cache:          cache,
		eventPublisher: eventPublisher,
		coupons:        coupons,
		payments:       payments,
		logger:         util.GetLogger(),
	}
}

// CheckoutItem is one line of an incoming checkout request.
type CheckoutItem struct {
	ProductID int64             `json:"product_id" binding:"required"`
	Quantity  int               `json:"quantity" binding:"required,min=1"`
	Variant   map[string]string `json:"variant,omitempty"`
}

// CheckoutRequest represents a request to place an order. UserID comes
// from the verified token, never from the body.
type CheckoutRequest struct {
	UserID          int64          `json:"-"`
	Items           []CheckoutItem `json:"items" binding:"required,min=1"`
	ShippingAddress string         `json:"shipping_address" binding:"required"`
	PaymentMethod   string         `json:"payment_method" binding:"required"`
	CouponCode      string         `json:"coupon_code,omitempty"`
	IdempotencyKey  string         `json:"idempotency_key,omitempty"`
}

// CheckoutResponse is returned after an order is placed.
type CheckoutResponse struct {
	OrderID       int64   `json:"order_id"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	Subtotal      float64 `json:"subtotal"`
	Discount      float64 `json:"discount"`
	Total         float64 `json:"total"`
}

// Checkout validates the cart, simulates payment and persists the order,
// its line items and the stock decrement in one transaction. The total is
// computed from stored unit prices; client-supplied amounts are ignored.
func (s *OrderService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Checkout")
	defer span.End()

	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	if resp, ok := s.lookupDuplicate(ctx, req.IdempotencyKey); ok {
		return resp, nil
	}

	productIDs := make([]int64, 0, len(req.Items))
	seen := make(map[int64]bool)
	for _, item := range req.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			productIDs = append(productIDs, item.ProductID)
		}
	}

	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	if len(products) != len(productIDs) {
		util.OrdersFailedTotal.WithLabelValues("unknown_product").Inc()
		return nil, store.ErrNotFound
	}

	productMap := make(map[int64]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	// Duplicate product+variant lines from the client merge into one.
	bag := cart.New()
	for _, item := range req.Items {
		product := productMap[item.ProductID]
		bag.Add(item.ProductID, cart.VariantKey(item.Variant), item.Quantity, product.Price)
	}
	if bag.Len() == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := bag.Subtotal()
	discount, err := s.coupons.Discount(subtotal, req.CouponCode)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_coupon").Inc()
		return nil, err
	}
	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	paymentStatus, err := s.payments.Process(ctx, req.PaymentMethod, total)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("payment").Inc()
		return nil, err
	}

	order := &models.Order{
		UserID:          req.UserID,
		Total:           total,
		Status:          models.OrderStatusProcessing,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   paymentStatus,
		ShippingAddress: req.ShippingAddress,
		CouponCode:      req.CouponCode,
		IdempotencyKey:  req.IdempotencyKey,
	}

	lines := bag.Lines()
	items := make([]models.OrderItem, len(lines))
	for i, line := range lines {
		items[i] = models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Variant:   line.Variant,
		}
	}

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		if errors.Is(err, store.ErrInsufficientStock) {
			util.OrdersFailedTotal.WithLabelValues("insufficient_stock").Inc()
			return nil, err
		}
		// Lost a race against a concurrent checkout with the same key; the
		// committed order wins.
		if errors.Is(err, store.ErrDuplicateOrder) {
			if resp, ok := s.lookupDuplicate(ctx, req.IdempotencyKey); ok {
				return resp, nil
			}
			return nil, fmt.Errorf("failed to resolve duplicate order: %w", err)
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", order.UserID),
		zap.Float64("total", total))

	if err := s.cache.SetIdempotencyKey(ctx, req.IdempotencyKey,
		strconv.FormatInt(order.ID, 10), 24*time.Hour); err != nil {
		s.logger.Warn("Failed to cache idempotency key", zap.Error(err))
	}

	s.publishOrderPlaced(ctx, order, items, productMap)

	return &CheckoutResponse{
		OrderID:       order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Subtotal:      subtotal,
		Discount:      discount,
		Total:         total,
	}, nil
}

// lookupDuplicate resolves an idempotency key to an already-placed order,
// checking the redis cache first and the orders table second.
func (s *OrderService) lookupDuplicate(ctx context.Context, key string) (*CheckoutResponse, bool) {
	var order *models.Order

	if cached, err := s.cache.GetIdempotencyKey(ctx, key); err == nil && cached != "" {
		if id, err := strconv.ParseInt(cached, 10, 64); err == nil {
			order, _ = s.store.GetOrderByID(ctx, id)
		}
	}
	if order == nil {
		order, _ = s.store.GetOrderByIdempotencyKey(ctx, key)
	}
	if order == nil {
		return nil, false
	}

	s.logger.Info("Duplicate checkout request",
		zap.String("idempotency_key", key),
		zap.Int64("order_id", order.ID))

	return &CheckoutResponse{
		OrderID:       order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.Total,
	}, true
}

func (s *OrderService) publishOrderPlaced(ctx context.Context, order *models.Order, items []models.OrderItem, productMap map[int64]*models.Product) {
	eventItems := make([]models.OrderItemData, len(items))
	sellerSeen := make(map[int64]bool)
	var sellerIDs []int64
	for i, item := range items {
		eventItems[i] = models.OrderItemData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		if p := productMap[item.ProductID]; p != nil && !sellerSeen[p.SellerID] {
			sellerSeen[p.SellerID] = true
			sellerIDs = append(sellerIDs, p.SellerID)
		}
	}

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		Items:     eventItems,
		SellerIDs: sellerIDs,
	}

	if err := s.eventPublisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
}

// UpdateStatusRequest carries a status transition with optional tracking
// details attached by the seller.
type UpdateStatusRequest struct {
	Status            string `json:"status" binding:"required"`
	TrackingID        string `json:"tracking_id,omitempty"`
	Courier           string `json:"courier,omitempty"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
}

// UpdateStatus applies a status transition on behalf of an actor. Buyers
// may only cancel their own order while it is still Processing; sellers
// may advance orders that contain their products; admins may do both.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, actorID int64, actorRole string, req *UpdateStatusRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateStatus")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch actorRole {
	case models.RoleAdmin:
		// full control
	case models.RoleSeller:
		owns, err := s.sellerOwnsOrder(ctx, actorID, orderID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, ErrForbidden
		}
	default:
		if order.UserID != actorID {
			return nil, ErrForbidden
		}
		if req.Status != models.OrderStatusCancelled {
			return nil, ErrForbidden
		}
	}

	if models.IsTerminalStatus(order.Status) {
		return nil, ErrInvalidTransition
	}
	if req.Status == models.OrderStatusCancelled && order.Status != models.OrderStatusProcessing {
		return nil, ErrCannotCancel
	}
	if !models.CanTransition(order.Status, req.Status) {
		return nil, ErrInvalidTransition
	}

	if req.Status == models.OrderStatusShipped && req.TrackingID == "" {
		req.TrackingID = fmt.Sprintf("TRK-%s", uuid.New().String()[:8])
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, req.Status,
		req.TrackingID, req.Courier, req.EstimatedDelivery); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	util.OrderStatusUpdatesTotal.WithLabelValues(req.Status).Inc()
	if req.Status == models.OrderStatusCancelled {
		util.OrdersCancelledTotal.Inc()
	}

	// Cash on delivery settles when the courier hands the package over.
	if req.Status == models.OrderStatusDelivered && order.PaymentStatus == models.PaymentStatusPending {
		if err := s.store.SetOrderPaymentStatus(ctx, orderID, models.PaymentStatusPaid); err != nil {
			s.logger.Error("Failed to settle payment on delivery", zap.Error(err))
		}
	}

	s.logger.Info("Order status updated",
		zap.Int64("order_id", orderID),
		zap.String("from", order.Status),
		zap.String("to", req.Status))

	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    orderID,
		UserID:     order.UserID,
		OldStatus:  order.Status,
		NewStatus:  req.Status,
		TrackingID: req.TrackingID,
	}
	if err := s.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}

	return s.store.GetOrderByID(ctx, orderID)
}

// sellerOwnsOrder reports whether any line item of the order belongs to
// the seller's products.
func (s *OrderService) sellerOwnsOrder(ctx context.Context, sellerID, orderID int64) (bool, error) {
	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return false, err
	}
	for _, p := range products {
		if p.SellerID == sellerID {
			return true, nil
		}
	}
	return false, nil
}

// OrderDetail bundles an order with its line items and tracker position.
type OrderDetail struct {
	Order    *models.Order      `json:"order"`
	Items    []models.OrderItem `json:"items"`
	Tracking TrackingProgress   `json:"tracking"`
}

// GetOrderDetail retrieves an order with items and tracking progress.
// Buyers see only their own orders; sellers and admins see any.
func (s *OrderService) GetOrderDetail(ctx context.Context, orderID, actorID int64, actorRole string) (*OrderDetail, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if actorRole == models.RoleUser && order.UserID != actorID {
		return nil, ErrForbidden
	}

	items, err := s.store.GetOrderItemsByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &OrderDetail{
		Order:    order,
		Items:    items,
		Tracking: TrackOrder(order.Status),
	}, nil
}

// GetOrdersByUser lists a buyer's orders
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.store.GetOrdersByUserID(ctx, userID)
}

// GetOrdersBySeller lists orders containing a seller's products
func (s *OrderService) GetOrdersBySeller(ctx context.Context, sellerID int64) ([]models.Order, error) {
	return s.store.GetOrdersBySellerID(ctx, sellerID)
}
