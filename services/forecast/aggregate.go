package forecast

import (
	"slices"

	"besparks-backend/lib/chrono"
)

// AggregateMonthly sums quantities into one record per (sku, month), sorted
// by sku then month.
func AggregateMonthly(records []SalesRecord) []SalesRecord {
	type key struct {
		sku   string
		month chrono.Month
	}
	sums := map[key]float64{}
	for _, r := range records {
		sums[key{r.Sku, r.Month}] += r.Quantity
	}

	out := make([]SalesRecord, 0, len(sums))
	for k, qty := range sums {
		out = append(out, SalesRecord{Sku: k.sku, Month: k.month, Quantity: qty})
	}
	slices.SortFunc(out, func(a, b SalesRecord) int {
		if a.Sku != b.Sku {
			if a.Sku < b.Sku {
				return -1
			}
			return 1
		}
		return a.Month.Compare(b.Month)
	})
	return out
}

// HistoryBySku groups aggregated records per SKU, preserving month order.
func HistoryBySku(monthly []SalesRecord) map[string][]SalesRecord {
	out := map[string][]SalesRecord{}
	for _, r := range monthly {
		out[r.Sku] = append(out[r.Sku], r)
	}
	return out
}

// LatestMonth reports the most recent month present in the data. ok is
// false when there is no data at all.
func LatestMonth(records []SalesRecord) (latest chrono.Month, ok bool) {
	for _, r := range records {
		if !ok || r.Month.After(latest) {
			latest = r.Month
			ok = true
		}
	}
	return latest, ok
}
