package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// LooseString is an upstream value that should be a string but is not
// guaranteed to be one. The original JSON is kept for passthrough.
type LooseString struct {
	Raw   json.RawMessage
	Value string
	Valid bool
}

// NewLooseString wraps a known string value.
func NewLooseString(s string) LooseString {
	raw, _ := json.Marshal(s)
	return LooseString{Raw: raw, Value: s, Valid: true}
}

// UnmarshalJSON never fails: any JSON value is kept, Valid only for strings.
func (s *LooseString) UnmarshalJSON(b []byte) error {
	*s = LooseString{Raw: append(json.RawMessage(nil), b...)}
	var v string
	if err := json.Unmarshal(b, &v); err == nil && bytes.HasPrefix(bytes.TrimSpace(b), []byte(`"`)) {
		s.Value, s.Valid = v, true
	}
	return nil
}

// MarshalJSON renders the original value, or null when absent.
func (s LooseString) MarshalJSON() ([]byte, error) {
	if !s.Present() {
		return []byte("null"), nil
	}
	return s.Raw, nil
}

// Present reports whether upstream sent a non-null value.
func (s LooseString) Present() bool {
	raw := bytes.TrimSpace(s.Raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

// Ptr returns the string, or nil when the value is absent or not a string.
func (s LooseString) Ptr() *string {
	if !s.Valid {
		return nil
	}
	v := s.Value
	return &v
}

// Stock is a warehouse quantity. Integers, decimals and numeric strings
// are accepted; anything else counts as no stock.
type Stock float64

func (q *Stock) UnmarshalJSON(b []byte) error {
	*q = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(s)
	}
	if f, err := strconv.ParseFloat(string(b), 64); err == nil {
		*q = Stock(f)
	}
	return nil
}

// decodeObject fills v from b when b is a JSON object and leaves it zero
// otherwise.
func decodeObject(b []byte, v any) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}

func (c *Commission) UnmarshalJSON(b []byte) error {
	type plain Commission
	return decodeObject(b, (*plain)(c))
}

func (f *FulfillmentCost) UnmarshalJSON(b []byte) error {
	type plain FulfillmentCost
	return decodeObject(b, (*plain)(f))
}

func (c *Category) UnmarshalJSON(b []byte) error {
	type plain Category
	return decodeObject(b, (*plain)(c))
}

func (d *Dimension) UnmarshalJSON(b []byte) error {
	type plain Dimension
	return decodeObject(b, (*plain)(d))
}
