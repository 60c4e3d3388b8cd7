package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"time"

	"seller-insight/internal/models"
	"seller-insight/internal/upstream"
	"seller-insight/internal/util"

	"go.uber.org/zap"
)

// orderWindow is the trailing window the order history is read over.
const orderWindow = 30 * 24 * time.Hour

// OrderQuery selects one page of processed orders. Empty CategoryID or
// SearchText leave that filter out.
type OrderQuery struct {
	Page       int
	Size       int
	CategoryID string
	SearchText string
}

// DefaultOrderQuery is the first page of 50 with the stock filters.
func DefaultOrderQuery() OrderQuery {
	return OrderQuery{Page: 1, Size: 50, CategoryID: "123", SearchText: "1234"}
}

func (q OrderQuery) params(now time.Time) url.Values {
	to := formatTimestamp(now)
	from := formatTimestamp(now.Add(-orderWindow))

	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	v.Set("sort", "id")
	v.Set("order", "asc")
	v.Set("order_type", "processed")
	if q.CategoryID != "" {
		v.Set("category_id", q.CategoryID)
	}
	v.Set("order_created_at_from", from)
	v.Set("order_created_at_to", to)
	v.Set("exit_from_warehouse_date_from", from)
	v.Set("exit_from_warehouse_date_to", to)
	v.Set("returned_to_warehouse_date_from", from)
	v.Set("returned_to_warehouse_date_to", to)
	if q.SearchText != "" {
		v.Set("search_text_all", q.SearchText)
	}
	v.Set("b2b_active", "true")
	return v
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000") + "Z"
}

var errNoOrderItems = errors.New("order history has no items")

// OrderHistoryClient reads the last 30 days of processed orders. It never
// fails its caller: unusable answers are replaced by an empty history.
type OrderHistoryClient struct {
	fetcher DataFetcher
	query   OrderQuery
	now     func() time.Time
	logger  *zap.Logger
}

// NewOrderHistoryClient creates an order history client that uses query
// for OrdersPerProduct and HighSalesProducts.
func NewOrderHistoryClient(fetcher DataFetcher, query OrderQuery) *OrderHistoryClient {
	return &OrderHistoryClient{
		fetcher: fetcher,
		query:   query,
		now:     time.Now,
		logger:  util.GetLogger(),
	}
}

// FetchOrders returns one page of orders, or none when the upstream
// answer is unusable.
func (oc *OrderHistoryClient) FetchOrders(ctx context.Context, q OrderQuery) []models.OrderRecord {
	ctx, span := util.StartSpan(ctx, "OrderHistoryClient.FetchOrders")
	defer span.End()

	data, err := oc.fetcher.Fetch(ctx, upstream.OrderHistory, q.params(oc.now()))
	if err != nil {
		oc.degrade(err)
		util.RecordError(span, err)
		return nil
	}

	orders, err := ParseOrders(data)
	if err != nil {
		oc.degrade(malformed(upstream.OrderHistory, err))
		util.RecordError(span, err)
		return nil
	}
	return orders
}

func (oc *OrderHistoryClient) degrade(err error) {
	var upErr *upstream.UpstreamError
	reason := "transport"
	switch {
	case errors.As(err, &upErr):
		reason = "status"
	case errors.Is(err, upstream.ErrMalformedResponse):
		reason = "malformed"
	}
	util.OrderHistoryDegradedTotal.WithLabelValues(reason).Inc()
	oc.logger.Warn("Order history unavailable, using empty history",
		zap.String("reason", reason),
		zap.Error(err))
}

// OrdersPerProduct counts orders per product over the trailing window.
func (oc *OrderHistoryClient) OrdersPerProduct(ctx context.Context) map[models.ProductID]int {
	return CountOrdersPerProduct(oc.FetchOrders(ctx, oc.query))
}

// HighSalesProducts returns the products ordered more often than average.
func (oc *OrderHistoryClient) HighSalesProducts(ctx context.Context) map[models.ProductID]int {
	return SelectHighSales(oc.OrdersPerProduct(ctx))
}

// ParseOrders reads data.items. Items that are not objects are skipped.
func ParseOrders(data json.RawMessage) ([]models.OrderRecord, error) {
	var page struct {
		Items *[]json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		return nil, errNoOrderItems
	}

	orders := make([]models.OrderRecord, 0, len(*page.Items))
	for _, raw := range *page.Items {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			continue
		}
		var order models.OrderRecord
		if err := decodeData(raw, &order); err != nil {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// CountOrdersPerProduct counts orders by product id; orders without an
// id are ignored.
func CountOrdersPerProduct(orders []models.OrderRecord) map[models.ProductID]int {
	counts := make(map[models.ProductID]int)
	for _, order := range orders {
		if order.ProductID == "" {
			continue
		}
		counts[order.ProductID]++
	}
	return counts
}

// SelectHighSales keeps the products whose count is strictly above the
// mean count.
func SelectHighSales(counts map[models.ProductID]int) map[models.ProductID]int {
	high := make(map[models.ProductID]int)
	if len(counts) == 0 {
		return high
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	average := float64(total) / float64(len(counts))

	for id, n := range counts {
		if float64(n) > average {
			high[id] = n
		}
	}
	return high
}
