package besparks

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Number decodes a JSON number that the API may serve as a number, a
// numeric string, null or an empty string. Valid is false when the field
// was missing or unparseable; callers decide whether that means zero-fill.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = Number{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			// unparseable values coerce to invalid rather than
			// failing the whole fetch
			*n = Number{}
			return nil
		}
		*n = Number{Value: v, Valid: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Number{Value: v, Valid: true}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Bool decodes a JSON bool that may arrive as a bool or as a string such as
// "true"/"True".
type Bool struct {
	Value bool
}

func (f *Bool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = Bool{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Bool{Value: strings.EqualFold(strings.TrimSpace(s), "true")}
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Bool{Value: v}
	return nil
}

type SalesHistoryRow struct {
	Sku          string `json:"sku"`
	Date         string `json:"date"`
	QuantitySold Number `json:"quantity_sold"`
}

type ProductRow struct {
	Sku         string `json:"sku"`
	Price       Number `json:"price"`
	SkuCost     Number `json:"sku_cost"`
	GrossMargin Number `json:"gross_margin"`
	ProductLine string `json:"product_line"`
	Type        string `json:"type"`
	IsTangible  Bool   `json:"is_tangible"`
	Status      string `json:"status"`
}

type OrderItem struct {
	Barcode  string `json:"barcode"`
	SalesQty int    `json:"sales_qty"`
}

type DailyOrder struct {
	ChannelId      int         `json:"channel_id"`
	ChannelOrderNo string      `json:"channel_order_no"`
	Orders         []OrderItem `json:"orders"`
	Timestamp      string      `json:"timestamp"`
}

// Duration is a time.Duration that unmarshals from a duration string such
// as "2s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
