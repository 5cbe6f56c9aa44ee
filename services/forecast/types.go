// Package forecast computes next-month SKU-level sales forecasts from
// monthly sales history and the product master. The default strategy is a
// weighted moving average whose weights are chosen by an RMSE backtest;
// see the boosted subpackage for the regression-tree alternative.
package forecast

import (
	"besparks-backend/lib/chrono"

	"github.com/shopspring/decimal"
)

// SalesRecord is one SKU's sales quantity for one calendar month. After
// aggregation there is at most one record per (sku, month).
type SalesRecord struct {
	Sku      string
	Month    chrono.Month
	Quantity float64
}

// Product is a row of the product master. HasMargin/HasPrice track fields
// the API served as missing or unparseable, which downstream rules treat
// differently from zero.
type Product struct {
	Sku         string
	Price       decimal.Decimal
	HasPrice    bool
	Cost        decimal.Decimal
	HasCost     bool
	GrossMargin decimal.Decimal
	HasMargin   bool
	ProductLine string
	Type        string
	Tangible    bool
	Status      string
}

type ForecastType string

const (
	// computed from the SKU's own sales history
	TypeHistorical ForecastType = "historical"
	// category-average substitute for SKUs without history
	TypeFallback ForecastType = "fallback"
)

// Row is one line of the final forecast output.
type Row struct {
	Sku         string
	Type        string
	ProductLine string
	Quantity    int
	Forecast    ForecastType
}

// Weights blends the 1/3/6-month windows into a single forecast.
type Weights struct {
	W1 float64
	W3 float64
	W6 float64
}
