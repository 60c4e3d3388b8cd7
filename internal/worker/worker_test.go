package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"seller-insight/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryDeduper struct {
	seen map[string]bool
	err  error
}

func (m *memoryDeduper) MarkEventSeen(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.seen[eventID] {
		return false, nil
	}
	m.seen[eventID] = true
	return true, nil
}

func restockMessage(t *testing.T, id string) kafka.Message {
	t.Helper()
	value, err := json.Marshal(models.RestockAlertEvent{
		BaseEvent:  models.BaseEvent{EventID: id, EventType: models.EventTypeRestockAlert},
		ProductID:  "42",
		OrderCount: 12,
	})
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestFirstDelivery(t *testing.T) {
	dedup := &memoryDeduper{seen: map[string]bool{}}
	w := NewAlertWorker(nil, dedup)
	ctx := context.Background()

	event := models.BaseEvent{EventID: "e1", EventType: models.EventTypeRestockAlert}
	assert.True(t, w.firstDelivery(ctx, event))
	assert.False(t, w.firstDelivery(ctx, event))

	// no id, nothing to dedup on
	assert.True(t, w.firstDelivery(ctx, models.BaseEvent{}))

	dedup.err = errors.New("redis down")
	assert.True(t, w.firstDelivery(ctx, event))

	assert.True(t, NewAlertWorker(nil, nil).firstDelivery(ctx, event))
}

func TestHandleMessage(t *testing.T) {
	dedup := &memoryDeduper{seen: map[string]bool{}}
	w := NewAlertWorker(nil, dedup)
	ctx := context.Background()

	require.NoError(t, w.eventHandler.HandleMessage(ctx, restockMessage(t, "e1")))
	require.NoError(t, w.eventHandler.HandleMessage(ctx, restockMessage(t, "e1")))
	assert.True(t, dedup.seen["e1"])

	value, err := json.Marshal(models.CampaignSuggestedEvent{
		BaseEvent:  models.BaseEvent{EventID: "e2", EventType: models.EventTypeCampaignSuggested},
		Suggestion: models.CampaignSuggestion{ProductID: "7", SuggestedCampaign: "Campaign for Lamp"},
	})
	require.NoError(t, err)
	require.NoError(t, w.eventHandler.HandleMessage(ctx, kafka.Message{Value: value}))
	assert.True(t, dedup.seen["e2"])
}
