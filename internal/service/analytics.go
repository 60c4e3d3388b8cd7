package service

import (
	"context"

	"seller-insight/internal/models"
)

// MarketAnalysis bundles the competitor and keyword figures of a product
type MarketAnalysis struct {
	Competitors models.CompetitorAnalysis
	Keywords    models.KeywordAnalysis
}

// AnalyticsSource provides market figures for a product
type AnalyticsSource interface {
	Analyze(ctx context.Context, productID string) (*MarketAnalysis, error)
}

// StaticAnalytics serves a fixed template until a real analytics source
// is connected.
type StaticAnalytics struct{}

var _ AnalyticsSource = StaticAnalytics{}

func (StaticAnalytics) Analyze(_ context.Context, productID string) (*MarketAnalysis, error) {
	metric := func(value, top5 float64) models.CompetitorMetric {
		return models.CompetitorMetric{ProductID: productID, Value: value, Top5CompetitorsAvg: top5}
	}

	return &MarketAnalysis{
		Competitors: models.CompetitorAnalysis{
			"Sales":             metric(76953, 52907),
			"Revenue":           metric(768760.47, 531363.81),
			"Price":             metric(9.99, 10.97),
			"BSR":               metric(106, 1283),
			"Number of Reviews": metric(2250, 43525),
			"Rating":            metric(4.4, 4.5),
		},
		Keywords: models.KeywordAnalysis{
			TotalKeywords:     5451,
			Top10Keywords:     877,
			TotalSearchVolume: 6491241,
			Top10SearchVolume: 1905035,
		},
	}, nil
}
