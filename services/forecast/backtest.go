package forecast

import (
	"math"

	"besparks-backend/lib/chrono"
)

// DefaultWeightCandidates is the fixed search grid for the backtest.
var DefaultWeightCandidates = []Weights{
	{0.5, 0.3, 0.2},
	{0.6, 0.2, 0.2},
	{0.4, 0.4, 0.2},
	{0.3, 0.3, 0.4},
	{0.7, 0.2, 0.1},
	{0.1, 0.1, 0.8},
}

type BacktestResult struct {
	Weights Weights
	RMSE    float64
}

// Backtest evaluates one weight triple: forecasts are computed per SKU from
// the records before split, then compared against every actual record at or
// after split. SKUs with actuals but no trainable history predict 0.
func Backtest(monthly []SalesRecord, weights Weights, split chrono.Month) float64 {
	var train, test []SalesRecord
	for _, r := range monthly {
		if r.Month.Before(split) {
			train = append(train, r)
		} else {
			test = append(test, r)
		}
	}

	predictions := map[string]float64{}
	for sku, history := range HistoryBySku(train) {
		predictions[sku] = Forecast(history, split, weights)
	}

	var sumSq float64
	for _, actual := range test {
		// missing prediction defaults to 0
		diff := actual.Quantity - predictions[actual.Sku]
		sumSq += diff * diff
	}
	if len(test) == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(len(test)))
}

// SelectWeights backtests every candidate and returns the triple with the
// lowest RMSE (first wins on ties), along with all results for reporting.
func SelectWeights(monthly []SalesRecord, candidates []Weights, split chrono.Month) (Weights, []BacktestResult) {
	if len(candidates) == 0 {
		candidates = DefaultWeightCandidates
	}
	results := make([]BacktestResult, 0, len(candidates))
	best := 0
	for i, w := range candidates {
		rmse := Backtest(monthly, w, split)
		results = append(results, BacktestResult{Weights: w, RMSE: rmse})
		if rmse < results[best].RMSE {
			best = i
		}
	}
	return results[best].Weights, results
}
