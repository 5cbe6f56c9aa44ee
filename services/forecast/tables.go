package forecast

import (
	"fmt"
	"sort"
	"strings"

	"besparks-backend/lib/sheets"
)

// BuildMainTable renders the forecast sheet consumed by purchasing. The
// forecast column is headed by the period label ("YYYY-MM") so the sheet
// reads as "this many units for that month".
func BuildMainTable(rows []Row, periodLabel string) sheets.Table {
	table := sheets.Table{
		Header: []string{"sku", "type", "product_line", periodLabel},
	}
	for _, r := range rows {
		table.Append(r.Sku, r.Type, r.ProductLine, r.Quantity)
	}
	return table
}

// BuildQATable renders the audit sheet used to review fallback coverage.
func BuildQATable(rows []Row) sheets.Table {
	table := sheets.Table{
		Header: []string{"sku", "product_line", "forecast_value", "forecast_type"},
	}
	for _, r := range rows {
		table.Append(r.Sku, r.ProductLine, r.Quantity, string(r.Forecast))
	}
	return table
}

// BuildModelDescription renders the free-text sheet documenting how the
// numbers on the main sheet were produced.
func BuildModelDescription(weights Weights, periodLabel string) sheets.Table {
	table := sheets.Table{Header: []string{"item", "description"}}
	if weights == (Weights{}) {
		// no usable history means no backtest ran and every row is a
		// category-average fallback
		table.Append("forecast logic", "category-average fallback for every SKU, no sales history was usable for the moving average")
	} else {
		table.Append(
			"forecast logic",
			fmt.Sprintf(
				"weighted moving average (1-month %.0f%%, 3-month %.0f%%, 6-month %.0f%%), weights selected by RMSE backtest",
				weights.W1*100, weights.W3*100, weights.W6*100,
			),
		)
	}
	table.Append("features used", "sku, quantity_sold, gross_margin")
	table.Append("special rules", "gross-margin adjustment (high +20%, mid +10%, low unchanged)")
	table.Append(
		"data handling",
		fmt.Sprintf(
			"monthly aggregation, product filter (single/tangible/not archived, excluding %s), category-average fallback for new SKUs",
			strings.Join(sortedExcludedLines(), ", "),
		),
	)
	table.Append("forecast period", periodLabel)
	table.Append("data source", "API: sales_history, product_info")
	return table
}

func sortedExcludedLines() []string {
	out := make([]string, 0, len(excludedProductLines))
	for line := range excludedProductLines {
		out = append(out, line)
	}
	// map iteration order would reshuffle the sheet on every run
	sort.Strings(out)
	return out
}
