package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"seller-insight/internal/models"
	"seller-insight/internal/upstream"
	"seller-insight/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProductQuery selects one page of the seller catalog
type ProductQuery struct {
	Page  int
	Size  int
	Sort  string
	Order string
}

// DefaultProductQuery is the first page of 50, ordered by id.
func DefaultProductQuery() ProductQuery {
	return ProductQuery{Page: 1, Size: 50, Sort: "id", Order: "asc"}
}

func (q ProductQuery) params() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("size", strconv.Itoa(q.Size))
	v.Set("sort", q.Sort)
	v.Set("order", q.Order)
	v.Set("search[moderation_status]", "approved")
	return v
}

// CatalogClient reads the approved seller catalog
type CatalogClient struct {
	fetcher DataFetcher
	logger  *zap.Logger
}

// NewCatalogClient creates a new catalog client
func NewCatalogClient(fetcher DataFetcher) *CatalogClient {
	return &CatalogClient{
		fetcher: fetcher,
		logger:  util.GetLogger(),
	}
}

// FetchAndParseProducts returns exactly one page of approved products.
func (cc *CatalogClient) FetchAndParseProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	ctx, span := util.StartSpan(ctx, "CatalogClient.FetchAndParseProducts",
		attribute.Int("page", q.Page),
		attribute.Int("size", q.Size))
	defer span.End()

	data, err := cc.fetcher.Fetch(ctx, upstream.SellerProducts, q.params())
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to fetch seller products: %w", err)
	}

	products, err := ParseProducts(data)
	if err != nil {
		util.RecordError(span, err)
		return nil, malformed(upstream.SellerProducts, err)
	}

	cc.logger.Debug("Seller products fetched",
		zap.Int("page", q.Page),
		zap.Int("count", len(products)))
	return products, nil
}

// sellerProductItem shadows moderation_status, which upstream nests as
// {"title": ...}.
type sellerProductItem struct {
	models.Product
	ModerationStatus json.RawMessage `json:"moderation_status"`
}

// ParseProducts projects data.items onto Product records. Items whose
// product_id cannot be read are dropped.
func ParseProducts(data json.RawMessage) ([]models.Product, error) {
	items, err := decodeItems[sellerProductItem](upstream.SellerProducts, data)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(items))
	for _, item := range items {
		p := item.Product
		p.ModerationStatus = moderationTitle(item.ModerationStatus)
		products = append(products, p)
	}
	return products, nil
}

func moderationTitle(raw json.RawMessage) any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var status struct {
		Title any `json:"title"`
	}
	if err := decodeData(raw, &status); err != nil {
		return nil
	}
	return status.Title
}
