package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"seller-insight/internal/models"
	"seller-insight/internal/upstream"
	"seller-insight/internal/util"

	"go.uber.org/zap"
)

// DefaultReportRange is the sales report window used for campaigns.
const DefaultReportRange = "last_7_days"

// SalesReportClient reads the sales insight report
type SalesReportClient struct {
	fetcher     DataFetcher
	reportRange string
	logger      *zap.Logger
}

// NewSalesReportClient creates a sales report client for reportRange.
func NewSalesReportClient(fetcher DataFetcher, reportRange string) *SalesReportClient {
	if reportRange == "" {
		reportRange = DefaultReportRange
	}
	return &SalesReportClient{
		fetcher:     fetcher,
		reportRange: reportRange,
		logger:      util.GetLogger(),
	}
}

// FetchSalesReport returns one page of the sales report.
func (sc *SalesReportClient) FetchSalesReport(ctx context.Context) (*models.SalesReport, error) {
	ctx, span := util.StartSpan(ctx, "SalesReportClient.FetchSalesReport")
	defer span.End()

	params := url.Values{}
	params.Set("range", sc.reportRange)

	data, err := sc.fetcher.Fetch(ctx, upstream.SalesReports, params)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to fetch sales report: %w", err)
	}

	var report models.SalesReport
	if err := json.Unmarshal(data, &report); err != nil {
		util.RecordError(span, err)
		return nil, malformed(upstream.SalesReports, err)
	}
	return &report, nil
}

// AverageConversionRate is the mean conversion_rate of items, 0 when empty.
func AverageConversionRate(items []models.SalesReportItem) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range items {
		total += item.ConversionRate()
	}
	return total / float64(len(items))
}

// SuggestCampaigns suggests a campaign for every item converting strictly
// above the average. Suggested items must carry product_id and title.
func SuggestCampaigns(items []models.SalesReportItem) ([]models.CampaignSuggestion, error) {
	average := AverageConversionRate(items)
	suggestions := make([]models.CampaignSuggestion, 0)

	for i, item := range items {
		rate := item.ConversionRate()
		if rate <= average {
			continue
		}

		for _, field := range []string{"product_id", "title"} {
			if !item.Has(field) {
				return nil, &MissingFieldError{Record: "sales report", Index: i, Field: field}
			}
		}

		var s models.CampaignSuggestion
		if err := json.Unmarshal(item["product_id"], &s.ProductID); err != nil {
			return nil, malformed(upstream.SalesReports, fmt.Errorf("item %d: product_id: %w", i, err))
		}
		if err := decodeData(item["title"], &s.Title); err != nil {
			return nil, malformed(upstream.SalesReports, fmt.Errorf("item %d: title: %w", i, err))
		}

		image := ""
		if raw, ok := item["image"]; ok {
			if err := json.Unmarshal(raw, &image); err != nil {
				util.GetLogger().Warn("Ignoring non-text sales report image",
					zap.Int("index", i),
					zap.ByteString("image", raw))
			}
		}

		title := displayText(s.Title)
		s.Image = ExtractImageURL(image)
		s.ConversionRate = rate
		s.AvgConversionRate = average
		s.SuggestedCampaign = "Campaign for " + title
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

// displayText renders a passthrough value the way it reads in JSON, with
// null as the empty string.
func displayText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		out, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(out)
	}
}

// ExtractImageURL cuts imageURL right after its first ".jpg", dropping
// resize parameters. URLs without ".jpg" are returned unchanged.
func ExtractImageURL(imageURL string) string {
	idx := strings.Index(imageURL, ".jpg")
	if idx < 0 {
		return imageURL
	}
	return imageURL[:idx+len(".jpg")]
}
