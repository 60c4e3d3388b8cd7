package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"seller-insight/internal/upstream"
	"seller-insight/internal/util"

	"go.uber.org/zap"
)

// DataFetcher returns the data payload of one seller API resource.
// *upstream.Client is the production implementation.
type DataFetcher interface {
	Fetch(ctx context.Context, res upstream.Resource, params url.Values) (json.RawMessage, error)
}

// MissingFieldError is returned when a record lacks a field that the
// routine reading it requires.
type MissingFieldError struct {
	Record string
	Index  int
	Field  string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s item %d: missing required field %q", e.Record, e.Index, e.Field)
}

// decodeData decodes an upstream payload keeping numbers exact, so that
// passthrough ids are not rounded through float64.
func decodeData(data json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func malformed(res upstream.Resource, err error) error {
	return fmt.Errorf("%w: %s: %v", upstream.ErrMalformedResponse, res.Name, err)
}

// decodeItems decodes data.items one element at a time. An element that
// does not fit T is logged and skipped; only a page whose items are not
// a list is an error.
func decodeItems[T any](res upstream.Resource, data json.RawMessage) ([]T, error) {
	var page struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := decodeData(data, &page); err != nil {
		return nil, err
	}

	items := make([]T, 0, len(page.Items))
	for i, raw := range page.Items {
		var item T
		if err := decodeData(raw, &item); err != nil {
			util.GetLogger().Warn("Skipping undecodable upstream item",
				zap.String("resource", res.Name),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
