package forecast

import "github.com/shopspring/decimal"

// quantity assigned to a new SKU whose product line has no forecast
// history at all
const defaultFallbackQuantity = 10

// FallbackForecasts produces rows for product-master SKUs that have no
// computed forecast: each gets the rounded mean adjusted forecast of its
// product line, or the default when the line has no history either.
// Together with the computed rows this guarantees every filtered SKU
// appears exactly once in the final output.
func FallbackForecasts(products []Product, computed []Row) []Row {
	known := map[string]bool{}
	lineSums := map[string]float64{}
	lineCounts := map[string]int{}
	for _, row := range computed {
		known[row.Sku] = true
		lineSums[row.ProductLine] += float64(row.Quantity)
		lineCounts[row.ProductLine]++
	}

	var out []Row
	for _, p := range products {
		if known[p.Sku] {
			continue
		}
		qty := defaultFallbackQuantity
		if n := lineCounts[p.ProductLine]; n > 0 {
			mean := lineSums[p.ProductLine] / float64(n)
			qty = int(decimal.NewFromFloat(mean).Round(0).IntPart())
		}
		out = append(out, Row{
			Sku:         p.Sku,
			Type:        p.Type,
			ProductLine: p.ProductLine,
			Quantity:    qty,
			Forecast:    TypeFallback,
		})
	}
	return out
}
