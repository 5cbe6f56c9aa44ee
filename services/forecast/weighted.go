package forecast

import "besparks-backend/lib/chrono"

// Windows are the moving-average inputs for one SKU as of a given month.
type Windows struct {
	// total quantity of the single month immediately before asOf
	Recent1 float64
	// mean monthly quantity over the 3 months before asOf
	Recent3 float64
	// mean monthly quantity over the 6 months before asOf
	Recent6 float64
}

// ComputeWindows derives the 1/3/6-month windows from one SKU's history.
// The asOf month itself is excluded so a partial current month cannot drag
// the forecast down. Means are taken over the months that actually have
// records inside the window; an empty window is 0, never a division by
// zero. Note this zero-fill biases very young SKUs downward, which matches
// the historical behavior downstream consumers calibrated against.
func ComputeWindows(history []SalesRecord, asOf chrono.Month) Windows {
	var w Windows
	var sum3, sum6 float64
	var n3, n6 int

	for _, r := range history {
		if !r.Month.Before(asOf) {
			continue
		}
		age := asOf.Sub(r.Month) // 1 = the month right before asOf
		if age == 1 {
			w.Recent1 += r.Quantity
		}
		if age <= 3 {
			sum3 += r.Quantity
			n3++
		}
		if age <= 6 {
			sum6 += r.Quantity
			n6++
		}
	}

	if n3 > 0 {
		w.Recent3 = sum3 / float64(n3)
	}
	if n6 > 0 {
		w.Recent6 = sum6 / float64(n6)
	}
	return w
}

// Forecast blends the windows with the given weights into a raw (unrounded,
// unadjusted) next-month quantity.
func Forecast(history []SalesRecord, asOf chrono.Month, weights Weights) float64 {
	w := ComputeWindows(history, asOf)
	return weights.W1*w.Recent1 + weights.W3*w.Recent3 + weights.W6*w.Recent6
}
