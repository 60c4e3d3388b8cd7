package models

import (
	"bytes"
	"encoding/json"
)

// ProductDetail is the be-seller view of one product
type ProductDetail struct {
	Name                       LooseString      `json:"name"`
	Brand                      any              `json:"brand"`
	ProductID                  any              `json:"productId"`
	Commission                 *Commission      `json:"commission"`
	ProductURL                 any              `json:"productURL"`
	ReferencePrice             any              `json:"referencePrice"`
	ProductImage               LooseString      `json:"productImage"`
	FulfillmentAndDeliveryCost *FulfillmentCost `json:"fulfillmentAndDeliveryCost"`
	Category                   *Category        `json:"category"`
	Site                       any              `json:"site"`
	ProductDimension           *Dimension       `json:"product_dimension"`
	PriceType                  any              `json:"price_type"`
	Images                     json.RawMessage  `json:"images"`
	Videos                     json.RawMessage  `json:"videos"`
	Description                LooseString      `json:"description"`
	Attributes                 json.RawMessage  `json:"attributes"`
}

type Commission struct {
	CanSell    any `json:"canSell"`
	Commission any `json:"commission"`
}

type FulfillmentCost struct {
	Factor      any `json:"factor"`
	MinimumCost any `json:"minimum_cost"`
	MaximumCost any `json:"maximum_cost"`
}

type Category struct {
	ID    any `json:"id"`
	Title any `json:"title"`
	Theme any `json:"theme"`
}

type Dimension struct {
	Width  any `json:"width"`
	Length any `json:"length"`
	Height any `json:"height"`
	Weight any `json:"weight"`
}

// ProductInfo is the flattened summary of a ProductDetail
type ProductInfo struct {
	Status                     string          `json:"status"`
	Name                       LooseString     `json:"name"`
	Brand                      any             `json:"brand"`
	ProductID                  any             `json:"productId"`
	CanSell                    any             `json:"canSell"`
	Commission                 any             `json:"commission"`
	ProductURL                 any             `json:"productURL"`
	ReferencePrice             any             `json:"referencePrice"`
	ProductImage               LooseString     `json:"productImage"`
	FulfillmentAndDeliveryCost FulfillmentCost `json:"fulfillmentAndDeliveryCost"`
	Category                   Category        `json:"category"`
	Site                       any             `json:"site"`
	ProductDimension           Dimension       `json:"product_dimension"`
	PriceType                  any             `json:"price_type"`
}

// Info projects the detail onto its summary. Missing nested objects
// yield null members.
func (d *ProductDetail) Info() *ProductInfo {
	info := &ProductInfo{
		Status:         "ok",
		Name:           d.Name,
		Brand:          d.Brand,
		ProductID:      d.ProductID,
		ProductURL:     d.ProductURL,
		ReferencePrice: d.ReferencePrice,
		ProductImage:   d.ProductImage,
		Site:           d.Site,
		PriceType:      d.PriceType,
	}
	if d.Commission != nil {
		info.CanSell = d.Commission.CanSell
		info.Commission = d.Commission.Commission
	}
	if d.FulfillmentAndDeliveryCost != nil {
		info.FulfillmentAndDeliveryCost = *d.FulfillmentAndDeliveryCost
	}
	if d.Category != nil {
		info.Category = *d.Category
	}
	if d.ProductDimension != nil {
		info.ProductDimension = *d.ProductDimension
	}
	return info
}

// ImageCount returns the number of listed images.
func (d *ProductDetail) ImageCount() int {
	return jsonLen(d.Images)
}

// VideoCount returns the number of listed videos.
func (d *ProductDetail) VideoCount() int {
	return jsonLen(d.Videos)
}

// AttributeValueCount sums the values of every attribute. Attributes
// normally map a name to a list of values.
func (d *ProductDetail) AttributeValueCount() int {
	raw := bytes.TrimSpace(d.Attributes)
	if len(raw) == 0 {
		return 0
	}

	var values []json.RawMessage
	switch raw[0] {
	case '{':
		var byName map[string]json.RawMessage
		if err := json.Unmarshal(raw, &byName); err != nil {
			return 0
		}
		for _, v := range byName {
			values = append(values, v)
		}
	case '[':
		if err := json.Unmarshal(raw, &values); err != nil {
			return 0
		}
	default:
		return 0
	}

	total := 0
	for _, v := range values {
		total += valueCount(v)
	}
	return total
}

// jsonLen counts array elements or object keys; anything else is empty.
func jsonLen(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return 0
		}
		return len(items)
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return 0
		}
		return len(fields)
	}
	return 0
}

func valueCount(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	if raw[0] == '[' || raw[0] == '{' {
		return jsonLen(raw)
	}
	return 1
}

// EditData is the product-edit view of one product
type EditData struct {
	Status                any             `json:"status"`
	ProductData           json.RawMessage `json:"product_data"`
	ModerationResponse    json.RawMessage `json:"moderation_response"`
	StepsModerationStatus json.RawMessage `json:"steps_moderation_status"`
	LockedForModeration   any             `json:"locked_for_moderation"`
	MultiSellerProduct    any             `json:"multi_seller_product"`
	EditStatus            any             `json:"edit_status"`
}

// Info returns a copy of the edit data with absent nested objects set to {}.
func (e *EditData) Info() *EditData {
	return &EditData{
		Status:                e.Status,
		ProductData:           objectOrEmpty(e.ProductData),
		ModerationResponse:    objectOrEmpty(e.ModerationResponse),
		StepsModerationStatus: objectOrEmpty(e.StepsModerationStatus),
		LockedForModeration:   e.LockedForModeration,
		MultiSellerProduct:    e.MultiSellerProduct,
		EditStatus:            e.EditStatus,
	}
}

func objectOrEmpty(raw json.RawMessage) json.RawMessage {
	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("{}")
	}
	return raw
}
