package models

import "time"

// Event types
const (
	EventTypeRestockAlert      = "RESTOCK_ALERT"
	EventTypeCampaignSuggested = "CAMPAIGN_SUGGESTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// RestockAlertEvent published when a high-sales product is out of stock
type RestockAlertEvent struct {
	BaseEvent
	ProductID  ProductID `json:"product_id"`
	Title      any       `json:"title"`
	OrderCount int       `json:"order_count"`
}

// CampaignSuggestedEvent published for every campaign suggestion
type CampaignSuggestedEvent struct {
	BaseEvent
	Suggestion CampaignSuggestion `json:"suggestion"`
}
