package worker

import (
	"context"
	"fmt"
	"log"

	"techorbit/internal/broker"
	"techorbit/internal/models"
	"techorbit/internal/service"
	"techorbit/internal/store"
	"techorbit/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes order events and turns them into inbox
// notifications: sellers hear about new orders, buyers hear about status
// changes. Events are deduplicated through the processed_events table so a
// redelivered message never double-notifies.
type NotificationWorker struct {
	consumer      *broker.Consumer
	eventHandler  *broker.EventHandler
	store         *store.Store
	notifications *service.NotificationService
	logger        *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(
	consumer *broker.Consumer,
	st *store.Store,
	notifications *service.NotificationService,
) *NotificationWorker {
	w := &NotificationWorker{
		consumer:      consumer,
		store:         st,
		notifications: notifications,
		logger:        util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := w.notifications.NotifyOrderPlaced(ctx, event); err != nil {
		return fmt.Errorf("failed to notify sellers: %w", err)
	}

	if err := w.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}

func (w *NotificationWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := w.notifications.NotifyStatusChanged(ctx, event); err != nil {
		return fmt.Errorf("failed to notify buyer: %w", err)
	}

	if err := w.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}
