package worker

import (
	"context"
	"time"

	"seller-insight/internal/broker"
	"seller-insight/internal/models"
	"seller-insight/internal/util"

	"go.uber.org/zap"
)

// seenTTL bounds how long a handled event id is remembered.
const seenTTL = 24 * time.Hour

// Deduper remembers handled event ids. *redisclient.Client implements it.
type Deduper interface {
	MarkEventSeen(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
}

// AlertWorker consumes insight events and turns them into seller alerts
type AlertWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	dedup        Deduper
	logger       *zap.Logger
}

// NewAlertWorker creates a new alert worker. dedup may be nil, in which
// case redelivered events are alerted again.
func NewAlertWorker(consumer *broker.Consumer, dedup Deduper) *AlertWorker {
	w := &AlertWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		dedup:        dedup,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnRestockAlert(w.handleRestockAlert)
	w.eventHandler.OnCampaignSuggested(w.handleCampaignSuggested)

	return w
}

// Start starts the worker
func (w *AlertWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting alert worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AlertWorker) Stop() error {
	w.logger.Info("Stopping alert worker")
	return w.consumer.Close()
}

func (w *AlertWorker) handleRestockAlert(ctx context.Context, event *models.RestockAlertEvent) error {
	if !w.firstDelivery(ctx, event.BaseEvent) {
		return nil
	}

	w.logger.Warn("Restock needed for high-sales product",
		zap.String("product_id", string(event.ProductID)),
		zap.Any("title", event.Title),
		zap.Int("orders_30d", event.OrderCount))
	util.InsightEventsConsumedTotal.WithLabelValues(event.EventType, "alerted").Inc()
	return nil
}

func (w *AlertWorker) handleCampaignSuggested(ctx context.Context, event *models.CampaignSuggestedEvent) error {
	if !w.firstDelivery(ctx, event.BaseEvent) {
		return nil
	}

	w.logger.Info("Campaign suggested",
		zap.String("product_id", string(event.Suggestion.ProductID)),
		zap.String("campaign", event.Suggestion.SuggestedCampaign),
		zap.Float64("conversion_rate", event.Suggestion.ConversionRate),
		zap.Float64("avg_conversion_rate", event.Suggestion.AvgConversionRate))
	util.InsightEventsConsumedTotal.WithLabelValues(event.EventType, "alerted").Inc()
	return nil
}

// firstDelivery reports whether the event has not been handled before.
// Dedup failures let the event through.
func (w *AlertWorker) firstDelivery(ctx context.Context, event models.BaseEvent) bool {
	if w.dedup == nil || event.EventID == "" {
		return true
	}

	first, err := w.dedup.MarkEventSeen(ctx, event.EventID, seenTTL)
	if err != nil {
		w.logger.Warn("Event dedup unavailable", zap.String("event_id", event.EventID), zap.Error(err))
		return true
	}
	if !first {
		util.InsightEventsConsumedTotal.WithLabelValues(event.EventType, "duplicate").Inc()
		w.logger.Debug("Skipping duplicate event", zap.String("event_id", event.EventID))
	}
	return first
}
