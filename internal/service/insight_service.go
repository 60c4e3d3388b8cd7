package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seller-insight/internal/models"
	"seller-insight/internal/util"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// EventPublisher publishes insight events. *broker.EventPublisher is the
// Kafka implementation.
type EventPublisher interface {
	PublishRestockAlert(ctx context.Context, event *models.RestockAlertEvent) error
	PublishCampaignSuggested(ctx context.Context, event *models.CampaignSuggestedEvent) error
}

// RunRecorder keeps summaries of computed insights. *store.Store is the
// Postgres implementation.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.InsightRun) error
	ListRecentRuns(ctx context.Context, limit int) ([]models.InsightRun, error)
}

// ErrRunsDisabled is returned by RecentRuns when no recorder is configured.
var ErrRunsDisabled = errors.New("insight run audit is not configured")

// ProductDetails pairs the product and edit views of one listing
type ProductDetails struct {
	ProductInfo *models.ProductInfo `json:"product_info"`
	EditInfo    *models.EditData    `json:"edit_info"`
}

// InsightService computes the insight views served over HTTP
type InsightService struct {
	inventory *InventoryClient
	catalog   *CatalogClient
	orders    *OrderHistoryClient
	details   *ProductDetailClient
	reports   *SalesReportClient
	scorer    *SEOScorer
	analytics AnalyticsSource
	events    EventPublisher
	runs      RunRecorder
	eventWait time.Duration
	logger    *zap.Logger
}

// DefaultEventTimeout bounds all event publishes of one request.
const DefaultEventTimeout = 2 * time.Second

// Deps holds the collaborators of an InsightService. Events and Runs are
// optional; a zero OrderQuery means DefaultOrderQuery and a zero
// EventTimeout means DefaultEventTimeout.
type Deps struct {
	Fetcher      DataFetcher
	Images       ImageInspector
	Analytics    AnalyticsSource
	Events       EventPublisher
	Runs         RunRecorder
	OrderQuery   OrderQuery
	ReportRange  string
	EventTimeout time.Duration
}

// NewInsightService creates a new insight service
func NewInsightService(d Deps) *InsightService {
	analytics := d.Analytics
	if analytics == nil {
		analytics = StaticAnalytics{}
	}
	if d.OrderQuery.Page == 0 {
		d.OrderQuery = DefaultOrderQuery()
	}
	if d.EventTimeout <= 0 {
		d.EventTimeout = DefaultEventTimeout
	}
	return &InsightService{
		inventory: NewInventoryClient(d.Fetcher),
		catalog:   NewCatalogClient(d.Fetcher),
		orders:    NewOrderHistoryClient(d.Fetcher, d.OrderQuery),
		details:   NewProductDetailClient(d.Fetcher),
		reports:   NewSalesReportClient(d.Fetcher, d.ReportRange),
		scorer:    NewSEOScorer(d.Images),
		analytics: analytics,
		events:    d.Events,
		runs:      d.Runs,
		eventWait: d.EventTimeout,
		logger:    util.GetLogger(),
	}
}

// ListProducts returns one page of the approved seller catalog.
func (s *InsightService) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	return s.catalog.FetchAndParseProducts(ctx, q)
}

// HighSalesNotInStock returns the catalog products that sell above average
// but have no warehouse stock.
func (s *InsightService) HighSalesNotInStock(ctx context.Context) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "InsightService.HighSalesNotInStock")
	defer span.End()

	products, err := s.catalog.FetchAndParseProducts(ctx, DefaultProductQuery())
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	stockIDs, err := s.inventory.StockProductIDs(ctx)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	highSales := s.orders.HighSalesProducts(ctx)
	result := CrossReference(products, stockIDs, highSales)

	util.RestockAlertsTotal.Add(float64(len(result)))
	s.logger.Info("High-sales products out of stock",
		zap.Int("catalog", len(products)),
		zap.Int("in_stock", len(stockIDs)),
		zap.Int("high_sales", len(highSales)),
		zap.Int("result", len(result)))

	s.publishRestockAlerts(ctx, result, highSales)
	s.recordRun(ctx, &models.InsightRun{
		Kind:        models.RunKindHighSalesNotInStock,
		ResultCount: len(result),
	})

	return result, nil
}

// CrossReference keeps the products that are out of stock and among the
// high sellers, in catalog order.
func CrossReference(products []models.Product, stockIDs models.ProductIDSet, highSales map[models.ProductID]int) []models.Product {
	result := make([]models.Product, 0)
	for _, p := range products {
		if stockIDs.Has(p.ProductID) {
			continue
		}
		if _, ok := highSales[p.ProductID]; !ok {
			continue
		}
		result = append(result, p)
	}
	return result
}

// ProductSEO scores the listing of productID.
func (s *InsightService) ProductSEO(ctx context.Context, productID string) (*models.SEOInfo, error) {
	ctx, span := util.StartSpan(ctx, "InsightService.ProductSEO",
		attribute.String("product_id", productID))
	defer span.End()

	detail, err := s.details.FetchProductData(ctx, productID)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	// A listing without a readable edit view is not scored.
	if _, err := s.details.FetchEditData(ctx, productID); err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	info := s.scorer.Evaluate(ctx, detail)

	market, err := s.analytics.Analyze(ctx, productID)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to analyze market for %s: %w", productID, err)
	}
	info.CompetitorAnalysis = market.Competitors
	info.TopKeywordAnalysis = market.Keywords

	span.SetAttributes(attribute.Float64("score_percent", info.ScorePercent))
	score := info.ScorePercent
	s.recordRun(ctx, &models.InsightRun{
		Kind:        models.RunKindProductSEO,
		Subject:     productID,
		ResultCount: info.Score,
		Score:       &score,
	})

	return info, nil
}

// ProductDetails returns the product and edit views of productID.
func (s *InsightService) ProductDetails(ctx context.Context, productID string) (*ProductDetails, error) {
	ctx, span := util.StartSpan(ctx, "InsightService.ProductDetails",
		attribute.String("product_id", productID))
	defer span.End()

	detail, err := s.details.FetchProductData(ctx, productID)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	edit, err := s.details.FetchEditData(ctx, productID)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	return &ProductDetails{
		ProductInfo: detail.Info(),
		EditInfo:    edit.Info(),
	}, nil
}

// CampaignRecommendations suggests campaigns from the first sales report
// group.
func (s *InsightService) CampaignRecommendations(ctx context.Context) ([]models.CampaignSuggestion, error) {
	ctx, span := util.StartSpan(ctx, "InsightService.CampaignRecommendations")
	defer span.End()

	report, err := s.reports.FetchSalesReport(ctx)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	suggestions, err := SuggestCampaigns(report.FirstGroup())
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	util.CampaignSuggestionsTotal.Add(float64(len(suggestions)))
	s.publishCampaignsSuggested(ctx, suggestions)
	s.recordRun(ctx, &models.InsightRun{
		Kind:        models.RunKindCampaigns,
		ResultCount: len(suggestions),
	})

	return suggestions, nil
}

// RecentRuns lists the latest insight run summaries.
func (s *InsightService) RecentRuns(ctx context.Context, limit int) ([]models.InsightRun, error) {
	if s.runs == nil {
		return nil, ErrRunsDisabled
	}
	runs, err := s.runs.ListRecentRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list insight runs: %w", err)
	}
	return runs, nil
}

// publishRestockAlerts sends one event per product. All sends share one
// deadline; once it passes, the remaining events are dropped.
func (s *InsightService) publishRestockAlerts(ctx context.Context, products []models.Product, orderCounts map[models.ProductID]int) {
	if s.events == nil || len(products) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.eventWait)
	defer cancel()

	for i, p := range products {
		if ctx.Err() != nil {
			s.logger.Warn("Event deadline reached, dropping RestockAlert events",
				zap.Int("dropped", len(products)-i))
			return
		}
		event := &models.RestockAlertEvent{
			BaseEvent:  newBaseEvent(models.EventTypeRestockAlert),
			ProductID:  p.ProductID,
			Title:      p.Title,
			OrderCount: orderCounts[p.ProductID],
		}
		if err := s.events.PublishRestockAlert(ctx, event); err != nil {
			s.logger.Error("Failed to publish RestockAlert event",
				zap.String("product_id", string(p.ProductID)),
				zap.Error(err))
		}
	}
}

func (s *InsightService) publishCampaignsSuggested(ctx context.Context, suggestions []models.CampaignSuggestion) {
	if s.events == nil || len(suggestions) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.eventWait)
	defer cancel()

	for i, suggestion := range suggestions {
		if ctx.Err() != nil {
			s.logger.Warn("Event deadline reached, dropping CampaignSuggested events",
				zap.Int("dropped", len(suggestions)-i))
			return
		}
		event := &models.CampaignSuggestedEvent{
			BaseEvent:  newBaseEvent(models.EventTypeCampaignSuggested),
			Suggestion: suggestion,
		}
		if err := s.events.PublishCampaignSuggested(ctx, event); err != nil {
			s.logger.Error("Failed to publish CampaignSuggested event",
				zap.String("product_id", string(suggestion.ProductID)),
				zap.Error(err))
		}
	}
}

// recordRun never fails the request; the audit is best-effort.
func (s *InsightService) recordRun(ctx context.Context, run *models.InsightRun) {
	if s.runs == nil {
		return
	}
	run.ID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()
	if err := s.runs.RecordRun(ctx, run); err != nil {
		s.logger.Error("Failed to record insight run",
			zap.String("kind", run.Kind),
			zap.Error(err))
	}
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
