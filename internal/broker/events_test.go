package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"seller-insight/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event any) kafka.Message {
	t.Helper()
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestHandleMessageRoutesByType(t *testing.T) {
	title := "Mug"
	var restock *models.RestockAlertEvent
	var campaign *models.CampaignSuggestedEvent

	eh := NewEventHandler()
	eh.OnRestockAlert(func(_ context.Context, e *models.RestockAlertEvent) error {
		restock = e
		return nil
	})
	eh.OnCampaignSuggested(func(_ context.Context, e *models.CampaignSuggestedEvent) error {
		campaign = e
		return nil
	})

	ctx := context.Background()
	err := eh.HandleMessage(ctx, message(t, models.RestockAlertEvent{
		BaseEvent:  models.BaseEvent{EventID: "e1", EventType: models.EventTypeRestockAlert, Timestamp: time.Now()},
		ProductID:  "42",
		Title:      title,
		OrderCount: 9,
	}))
	require.NoError(t, err)
	require.NotNil(t, restock)
	assert.Equal(t, models.ProductID("42"), restock.ProductID)
	assert.Equal(t, 9, restock.OrderCount)
	assert.Equal(t, "Mug", restock.Title)
	assert.Nil(t, campaign)

	err = eh.HandleMessage(ctx, message(t, models.CampaignSuggestedEvent{
		BaseEvent:  models.BaseEvent{EventID: "e2", EventType: models.EventTypeCampaignSuggested},
		Suggestion: models.CampaignSuggestion{ProductID: "7", SuggestedCampaign: "Campaign for Lamp"},
	}))
	require.NoError(t, err)
	require.NotNil(t, campaign)
	assert.Equal(t, "Campaign for Lamp", campaign.Suggestion.SuggestedCampaign)
}

func TestHandleMessageIgnoresUnknownAndRejectsGarbage(t *testing.T) {
	eh := NewEventHandler()
	ctx := context.Background()

	assert.NoError(t, eh.HandleMessage(ctx, message(t, models.BaseEvent{EventType: "SOMETHING_ELSE"})))
	assert.Error(t, eh.HandleMessage(ctx, kafka.Message{Value: []byte("not json")}))
}

func TestProductKey(t *testing.T) {
	assert.Equal(t, "product-16587276", productKey("16587276"))
}
