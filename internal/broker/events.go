package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"techorbit/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderPlaced publishes an OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderStatusChanged publishes an OrderStatusChanged event
func (ep *EventPublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	key := fmt.Sprintf("order-%d", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming events to registered callbacks
type EventHandler struct {
	onOrderPlaced        func(context.Context, *models.OrderPlacedEvent) error
	onOrderStatusChanged func(context.Context, *models.OrderStatusChangedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderPlaced registers a handler for OrderPlaced events
func (eh *EventHandler) OnOrderPlaced(handler func(context.Context, *models.OrderPlacedEvent) error) {
	eh.onOrderPlaced = handler
}

// OnOrderStatusChanged registers a handler for OrderStatusChanged events
func (eh *EventHandler) OnOrderStatusChanged(handler func(context.Context, *models.OrderStatusChangedEvent) error) {
	eh.onOrderStatusChanged = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderPlaced:
		if eh.onOrderPlaced != nil {
			var event models.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
			}
			return eh.onOrderPlaced(ctx, &event)
		}

	case models.EventTypeOrderStatusChanged:
		if eh.onOrderStatusChanged != nil {
			var event models.OrderStatusChangedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderStatusChanged event: %w", err)
			}
			return eh.onOrderStatusChanged(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
