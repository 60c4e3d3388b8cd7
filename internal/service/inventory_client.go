package service

import (
	"context"
	"encoding/json"
	"fmt"

	"seller-insight/internal/models"
	"seller-insight/internal/upstream"
	"seller-insight/internal/util"

	"go.uber.org/zap"
)

// InventoryClient reads warehouse stock from the seller API
type InventoryClient struct {
	fetcher DataFetcher
	logger  *zap.Logger
}

// NewInventoryClient creates a new inventory client
func NewInventoryClient(fetcher DataFetcher) *InventoryClient {
	return &InventoryClient{
		fetcher: fetcher,
		logger:  util.GetLogger(),
	}
}

// FetchInventory returns the raw inventory items. Upstream failures are
// returned to the caller.
func (ic *InventoryClient) FetchInventory(ctx context.Context) ([]models.InventoryItem, error) {
	ctx, span := util.StartSpan(ctx, "InventoryClient.FetchInventory")
	defer span.End()

	data, err := ic.fetcher.Fetch(ctx, upstream.Inventories, nil)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}

	items, err := ParseInventory(data)
	if err != nil {
		util.RecordError(span, err)
		return nil, malformed(upstream.Inventories, err)
	}

	ic.logger.Debug("Inventory fetched", zap.Int("items", len(items)))
	return items, nil
}

// ParseInventory decodes data.items. Rows with an unusable product_id are
// skipped; a non-numeric warehouse_stock counts as zero.
func ParseInventory(data json.RawMessage) ([]models.InventoryItem, error) {
	return decodeItems[models.InventoryItem](upstream.Inventories, data)
}

// StockProductIDs fetches the inventory and returns the ids that have
// warehouse stock.
func (ic *InventoryClient) StockProductIDs(ctx context.Context) (models.ProductIDSet, error) {
	items, err := ic.FetchInventory(ctx)
	if err != nil {
		return nil, err
	}
	return StockProductIDs(items), nil
}

// ProductsWithStock keeps the items whose warehouse_stock is positive.
func ProductsWithStock(items []models.InventoryItem) []models.InventoryItem {
	inStock := make([]models.InventoryItem, 0, len(items))
	for _, item := range items {
		if item.InStock() {
			inStock = append(inStock, item)
		}
	}
	return inStock
}

// StockProductIDs collapses ProductsWithStock into a set of ids.
func StockProductIDs(items []models.InventoryItem) models.ProductIDSet {
	ids := make(models.ProductIDSet)
	for _, item := range ProductsWithStock(items) {
		ids[item.ProductID] = struct{}{}
	}
	return ids
}
