package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"seller-insight/internal/models"
	"seller-insight/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing insight events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishRestockAlert publishes RestockAlert event
func (ep *EventPublisher) PublishRestockAlert(ctx context.Context, event *models.RestockAlertEvent) error {
	return ep.producer.PublishEvent(ctx, productKey(event.ProductID), event)
}

// PublishCampaignSuggested publishes CampaignSuggested event
func (ep *EventPublisher) PublishCampaignSuggested(ctx context.Context, event *models.CampaignSuggestedEvent) error {
	return ep.producer.PublishEvent(ctx, productKey(event.Suggestion.ProductID), event)
}

// productKey keeps every event of one product on one partition.
func productKey(id models.ProductID) string {
	return fmt.Sprintf("product-%s", id)
}

// EventHandler handles incoming events
type EventHandler struct {
	onRestockAlert      func(context.Context, *models.RestockAlertEvent) error
	onCampaignSuggested func(context.Context, *models.CampaignSuggestedEvent) error
	logger              *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnRestockAlert registers a handler for RestockAlert events
func (eh *EventHandler) OnRestockAlert(handler func(context.Context, *models.RestockAlertEvent) error) {
	eh.onRestockAlert = handler
}

// OnCampaignSuggested registers a handler for CampaignSuggested events
func (eh *EventHandler) OnCampaignSuggested(handler func(context.Context, *models.CampaignSuggestedEvent) error) {
	eh.onCampaignSuggested = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeRestockAlert:
		if eh.onRestockAlert != nil {
			var event models.RestockAlertEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal RestockAlert event: %w", err)
			}
			return eh.onRestockAlert(ctx, &event)
		}

	case models.EventTypeCampaignSuggested:
		if eh.onCampaignSuggested != nil {
			var event models.CampaignSuggestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CampaignSuggested event: %w", err)
			}
			return eh.onCampaignSuggested(ctx, &event)
		}

	default:
		eh.logger.Warn("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}
