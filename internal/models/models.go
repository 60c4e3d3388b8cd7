package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ProductID is the upstream product identifier. Upstream ids may be
// numeric or not, so it is kept as an opaque string.
type ProductID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ProductID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// MarshalJSON renders an empty id as null.
func (id ProductID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

// ProductIDSet is a set of product ids.
type ProductIDSet map[ProductID]struct{}

func (s ProductIDSet) Has(id ProductID) bool {
	_, ok := s[id]
	return ok
}

// Product is one item of the approved seller catalog. Display fields are
// passed through with whatever JSON type upstream sent.
type Product struct {
	VariantsCount     any       `json:"variants_count"`
	Site              any       `json:"site"`
	Title             any       `json:"title"`
	Status            any       `json:"status"`
	ProductID         ProductID `json:"product_id"`
	Fake              any       `json:"fake"`
	StatusData        any       `json:"status_data"`
	IsOwner           any       `json:"is_owner"`
	MainCategoryTitle any       `json:"main_category_title"`
	Active            any       `json:"active"`
	TitleFa           any       `json:"title_fa"`
	TitleEn           any       `json:"title_en"`
	BrandID           any       `json:"brand_id"`
	BrandTitleEn      any       `json:"brand_title_en"`
	BrandTitleFa      any       `json:"brand_title_fa"`
	ProductURL        any       `json:"product_url"`
	ImageSrc          any       `json:"image_src"`
	DimensionLevel    any       `json:"dimension_level"`
	BrandTitle        any       `json:"brand_title"`
	ModerationStatus  any       `json:"moderation_status"`
	AdvergeURL        any       `json:"adverge_url"`
}

// InventoryItem is one row of the inventory listing
type InventoryItem struct {
	ProductID      ProductID `json:"product_id"`
	WarehouseStock Stock     `json:"warehouse_stock"`
}

// InStock reports whether the warehouse stock is positive.
func (i InventoryItem) InStock() bool {
	return i.WarehouseStock > 0
}

// OrderRecord is one processed order from the order history
type OrderRecord struct {
	ID        any       `json:"id"`
	ProductID ProductID `json:"product_id"`
}

// SalesReportItem is one loosely typed row of the sales report. Field
// presence matters to campaign suggestions, so the raw mapping is kept.
type SalesReportItem map[string]json.RawMessage

// Has reports whether the key is present, even when its value is null.
func (it SalesReportItem) Has(key string) bool {
	_, ok := it[key]
	return ok
}

// ConversionRate returns conversion_rate, or 0 when absent or not a number.
func (it SalesReportItem) ConversionRate() float64 {
	var rate float64
	if raw, ok := it["conversion_rate"]; ok {
		if err := json.Unmarshal(raw, &rate); err != nil {
			return 0
		}
	}
	return rate
}

// SalesReport holds the item groups of one sales report page
type SalesReport struct {
	Items [][]SalesReportItem `json:"items"`
}

// FirstGroup returns items[0], or nil when the report has no groups.
func (r *SalesReport) FirstGroup() []SalesReportItem {
	if r == nil || len(r.Items) == 0 {
		return nil
	}
	return r.Items[0]
}

// CampaignSuggestion is emitted for a product converting above average
type CampaignSuggestion struct {
	ProductID         ProductID `json:"product_id"`
	Title             any       `json:"title"`
	Image             string    `json:"image"`
	ConversionRate    float64   `json:"conversion_rate"`
	AvgConversionRate float64   `json:"avg_conversion_rate"`
	SuggestedCampaign string    `json:"suggested_campaign"`
}

// InsightRun summarizes one computed insight. Only the summary is kept,
// never the upstream payload.
type InsightRun struct {
	ID          string    `db:"id" json:"id"`
	Kind        string    `db:"kind" json:"kind"`
	Subject     string    `db:"subject" json:"subject,omitempty"`
	ResultCount int       `db:"result_count" json:"result_count"`
	Score       *float64  `db:"score" json:"score,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Insight run kinds
const (
	RunKindHighSalesNotInStock = "HIGH_SALES_NOT_IN_STOCK"
	RunKindProductSEO          = "PRODUCT_SEO"
	RunKindCampaigns           = "CAMPAIGN_RECOMMENDATION"
)
