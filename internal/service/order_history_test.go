package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"seller-insight/internal/models"
	"seller-insight/internal/upstream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 31, 12, 30, 0, 0, time.UTC)
}

func TestOrderQueryParams(t *testing.T) {
	params := DefaultOrderQuery().params(fixedClock())

	assert.Equal(t, "1", params.Get("page"))
	assert.Equal(t, "50", params.Get("size"))
	assert.Equal(t, "processed", params.Get("order_type"))
	assert.Equal(t, "123", params.Get("category_id"))
	assert.Equal(t, "1234", params.Get("search_text_all"))
	assert.Equal(t, "true", params.Get("b2b_active"))
	assert.Equal(t, "2024-03-01T12:30:00.000000Z", params.Get("order_created_at_from"))
	assert.Equal(t, "2024-03-31T12:30:00.000000Z", params.Get("order_created_at_to"))
	assert.Equal(t, params.Get("order_created_at_from"), params.Get("exit_from_warehouse_date_from"))
	assert.Equal(t, params.Get("order_created_at_to"), params.Get("returned_to_warehouse_date_to"))

	params = OrderQuery{Page: 2, Size: 10}.params(fixedClock())
	assert.False(t, params.Has("category_id"))
	assert.False(t, params.Has("search_text_all"))
}

func TestFormatTimestampIsUTC(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	ts := time.Date(2024, 1, 2, 3, 30, 0, 0, tehran)
	assert.Equal(t, "2024-01-02T00:00:00.000000Z", formatTimestamp(ts))
}

func TestOrdersPerProduct(t *testing.T) {
	f := newFakeFetcher().on(upstream.OrderHistory, `{"items": [
		{"id": 1, "product_id": 10},
		{"id": 2, "product_id": "10"},
		{"id": 3, "product_id": 20},
		{"id": 4},
		{"id": 5, "product_id": null},
		"not an order",
		7
	]}`)

	oc := NewOrderHistoryClient(f, DefaultOrderQuery())
	oc.now = fixedClock

	counts := oc.OrdersPerProduct(context.Background())
	assert.Equal(t, map[models.ProductID]int{"10": 2, "20": 1}, counts)

	sum := 0
	for _, n := range counts {
		sum += n
	}
	assert.Equal(t, 3, sum)
}

func TestFetchOrdersDegrades(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
	}{
		{name: "status", fetcher: newFakeFetcher().fail(upstream.OrderHistory, &upstream.UpstreamError{Resource: "orders_history", StatusCode: 503})},
		{name: "transport", fetcher: newFakeFetcher().fail(upstream.OrderHistory, errors.New("connection refused"))},
		{name: "malformed", fetcher: newFakeFetcher().fail(upstream.OrderHistory, upstream.ErrMalformedResponse)},
		{name: "missing items", fetcher: newFakeFetcher().on(upstream.OrderHistory, `{"total": 0}`)},
		{name: "items not a list", fetcher: newFakeFetcher().on(upstream.OrderHistory, `{"items": 5}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oc := NewOrderHistoryClient(tt.fetcher, DefaultOrderQuery())
			assert.Empty(t, oc.FetchOrders(context.Background(), DefaultOrderQuery()))
			assert.Empty(t, oc.HighSalesProducts(context.Background()))
		})
	}
}

func TestSelectHighSales(t *testing.T) {
	tests := []struct {
		name   string
		counts map[models.ProductID]int
		want   map[models.ProductID]int
	}{
		{name: "empty", counts: map[models.ProductID]int{}, want: map[models.ProductID]int{}},
		{name: "equal counts", counts: map[models.ProductID]int{"a": 3, "b": 3}, want: map[models.ProductID]int{}},
		{name: "above mean", counts: map[models.ProductID]int{"a": 1, "b": 2, "c": 6}, want: map[models.ProductID]int{"c": 6}},
		{name: "exactly mean excluded", counts: map[models.ProductID]int{"a": 1, "b": 2, "c": 3}, want: map[models.ProductID]int{"c": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectHighSales(tt.counts))
		})
	}
}

func TestParseOrdersMissingItems(t *testing.T) {
	_, err := ParseOrders([]byte(`{}`))
	require.ErrorIs(t, err, errNoOrderItems)
}
