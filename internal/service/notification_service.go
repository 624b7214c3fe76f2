package service

import (
	"context"
	"encoding/json"
	"fmt"

	"techorbit/internal/models"
	"techorbit/internal/store"
	"techorbit/internal/util"

	"go.uber.org/zap"
)

// NotificationPublisher pushes a stored notification to any live streams.
// *redisclient.Client satisfies it.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, userID int64, payload []byte) error
}

// NotificationService persists inbox messages and pushes them to any live
// notification streams over redis pub/sub.
type NotificationService struct {
	store     *store.Store
	publisher NotificationPublisher
	logger    *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(st *store.Store, publisher NotificationPublisher) *NotificationService {
	return &NotificationService{store: st, publisher: publisher, logger: util.GetLogger()}
}

// Notify stores a message for a user and publishes it for live delivery.
// The publish is best-effort; the stored row is the source of truth.
func (s *NotificationService) Notify(ctx context.Context, userID int64, message string) (*models.Notification, error) {
	n := &models.Notification{UserID: userID, Message: message}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	util.NotificationsCreatedTotal.Inc()

	payload, err := json.Marshal(n)
	if err == nil {
		if err := s.publisher.PublishNotification(ctx, userID, payload); err != nil {
			s.logger.Warn("Failed to publish notification", zap.Error(err))
		}
	}
	return n, nil
}

// List returns a user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID int64) ([]models.Notification, error) {
	return s.store.GetNotificationsByUserID(ctx, userID)
}

// MarkRead flags a notification as read. Only the notification's owner or
// an admin may do so.
func (s *NotificationService) MarkRead(ctx context.Context, id, actorID int64, actorRole string) error {
	n, err := s.store.GetNotificationByID(ctx, id)
	if err != nil {
		return err
	}
	if actorRole != models.RoleAdmin && n.UserID != actorID {
		return ErrForbidden
	}
	return s.store.MarkNotificationRead(ctx, id)
}

// NotifyOrderPlaced tells every seller with a product in the order that a
// new order arrived.
func (s *NotificationService) NotifyOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	for _, sellerID := range event.SellerIDs {
		msg := fmt.Sprintf("New order #%d placed for %.2f", event.OrderID, event.Total)
		if _, err := s.Notify(ctx, sellerID, msg); err != nil {
			return err
		}
	}
	return nil
}

// NotifyStatusChanged tells the buyer their order moved to a new status.
func (s *NotificationService) NotifyStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	msg := fmt.Sprintf("Order #%d is now %s", event.OrderID, event.NewStatus)
	if event.TrackingID != "" {
		msg = fmt.Sprintf("%s (tracking %s)", msg, event.TrackingID)
	}
	_, err := s.Notify(ctx, event.UserID, msg)
	return err
}
