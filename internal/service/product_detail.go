package service

import (
	"context"
	"fmt"

	"seller-insight/internal/models"
	"seller-insight/internal/upstream"
	"seller-insight/internal/util"

	"go.opentelemetry.io/otel/attribute"
)

// ProductDetailClient reads the be-seller and edit views of one product.
// Both fail hard on upstream errors.
type ProductDetailClient struct {
	fetcher DataFetcher
}

// NewProductDetailClient creates a new product detail client
func NewProductDetailClient(fetcher DataFetcher) *ProductDetailClient {
	return &ProductDetailClient{fetcher: fetcher}
}

// FetchProductData returns the be-seller view of productID.
func (pc *ProductDetailClient) FetchProductData(ctx context.Context, productID string) (*models.ProductDetail, error) {
	ctx, span := util.StartSpan(ctx, "ProductDetailClient.FetchProductData",
		attribute.String("product_id", productID))
	defer span.End()

	res := upstream.ProductCreation(productID)
	data, err := pc.fetcher.Fetch(ctx, res, nil)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to fetch product %s: %w", productID, err)
	}

	var detail models.ProductDetail
	if err := decodeData(data, &detail); err != nil {
		util.RecordError(span, err)
		return nil, malformed(res, err)
	}
	return &detail, nil
}

// FetchEditData returns the edit/moderation view of productID.
func (pc *ProductDetailClient) FetchEditData(ctx context.Context, productID string) (*models.EditData, error) {
	ctx, span := util.StartSpan(ctx, "ProductDetailClient.FetchEditData",
		attribute.String("product_id", productID))
	defer span.End()

	res := upstream.ProductEdit(productID)
	data, err := pc.fetcher.Fetch(ctx, res, nil)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to fetch edit data for %s: %w", productID, err)
	}

	var edit models.EditData
	if err := decodeData(data, &edit); err != nil {
		util.RecordError(span, err)
		return nil, malformed(res, err)
	}
	return &edit, nil
}
