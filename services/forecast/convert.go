package forecast

import (
	"log/slog"
	"strings"

	"besparks-backend/lib/besparks"
	"besparks-backend/lib/chrono"

	"github.com/shopspring/decimal"
)

// SalesRecordsFromRows coerces raw API rows into typed records. Rows with
// unparseable dates are dropped with a warning, unparseable quantities
// zero-fill.
func SalesRecordsFromRows(rows []besparks.SalesHistoryRow) []SalesRecord {
	out := make([]SalesRecord, 0, len(rows))
	for _, row := range rows {
		month, err := chrono.ParseMonth(row.Date)
		if err != nil {
			slog.Warn("dropping sales row with invalid date", "sku", row.Sku, "date", row.Date)
			continue
		}
		qty := 0.0
		if row.QuantitySold.Valid {
			qty = row.QuantitySold.Value
		}
		out = append(out, SalesRecord{
			Sku:      row.Sku,
			Month:    month,
			Quantity: qty,
		})
	}
	return out
}

// ProductsFromRows coerces raw product-master rows. A missing gross_margin
// is derived as (price - cost) / price when both are present, mirroring the
// API's two margin conventions.
func ProductsFromRows(rows []besparks.ProductRow) []Product {
	out := make([]Product, 0, len(rows))
	for _, row := range rows {
		p := Product{
			Sku:         row.Sku,
			ProductLine: row.ProductLine,
			Type:        strings.ToLower(strings.TrimSpace(row.Type)),
			Tangible:    row.IsTangible.Value,
			Status:      row.Status,
		}
		if row.Price.Valid {
			p.Price = decimal.NewFromFloat(row.Price.Value)
			p.HasPrice = true
		}
		if row.SkuCost.Valid {
			p.Cost = decimal.NewFromFloat(row.SkuCost.Value)
			p.HasCost = true
		}
		switch {
		case row.GrossMargin.Valid:
			p.GrossMargin = decimal.NewFromFloat(row.GrossMargin.Value)
			p.HasMargin = true
		case p.HasPrice && p.HasCost && !p.Price.IsZero():
			p.GrossMargin = p.Price.Sub(p.Cost).Div(p.Price)
			p.HasMargin = true
		}
		out = append(out, p)
	}
	return out
}
