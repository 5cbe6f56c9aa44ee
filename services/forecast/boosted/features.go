package boosted

import (
	"sort"

	"besparks-backend/lib/chrono"
	"besparks-backend/services/forecast"
)

// feature vector layout, shared by training and prediction
const (
	featureMonth = iota
	featureYear
	featureSku
	featurePrev1
	featureRoll3
	featureRoll6
	featurePrice
	featureMargin
	featureCount
)

// Encoder maps SKUs to stable integer codes, assigned in sorted order.
// SKUs never seen during training encode as -1.
type Encoder struct {
	indexBySku map[string]int
}

func NewEncoder(skus []string) *Encoder {
	unique := map[string]bool{}
	for _, sku := range skus {
		unique[sku] = true
	}
	sorted := make([]string, 0, len(unique))
	for sku := range unique {
		sorted = append(sorted, sku)
	}
	sort.Strings(sorted)

	e := &Encoder{indexBySku: make(map[string]int, len(sorted))}
	for i, sku := range sorted {
		e.indexBySku[sku] = i
	}
	return e
}

func (e *Encoder) Encode(sku string) float64 {
	i, ok := e.indexBySku[sku]
	if !ok {
		return -1
	}
	return float64(i)
}

func (e *Encoder) Known(sku string) bool {
	_, ok := e.indexBySku[sku]
	return ok
}

// SkuState carries a SKU's lag features as of its latest sales month, used
// as static inputs when predicting future months.
type SkuState struct {
	Prev1 float64
	Roll3 float64
	Roll6 float64
}

// TrainingSet is the engineered feature matrix plus everything prediction
// needs later: the SKU encoder and each SKU's latest lag state.
type TrainingSet struct {
	X       [][]float64
	Y       []float64
	Encoder *Encoder
	Latest  chrono.Month
	States  map[string]SkuState
}

// BuildTrainingSet turns aggregated monthly sales into one training row per
// (sku, month): the target is that month's quantity, the lag features only
// look at strictly earlier rows. Sales for SKUs absent from the product
// master are dropped, matching the join the rest of the pipeline does.
func BuildTrainingSet(monthly []forecast.SalesRecord, products []forecast.Product) TrainingSet {
	productsBySku := map[string]forecast.Product{}
	for _, p := range products {
		productsBySku[p.Sku] = p
	}

	var joined []forecast.SalesRecord
	for _, r := range monthly {
		if _, ok := productsBySku[r.Sku]; ok {
			joined = append(joined, r)
		}
	}

	skus := make([]string, 0)
	history := forecast.HistoryBySku(joined)
	for sku := range history {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	set := TrainingSet{
		Encoder: NewEncoder(skus),
		States:  map[string]SkuState{},
	}
	set.Latest, _ = forecast.LatestMonth(joined)

	for _, sku := range skus {
		rows := history[sku]
		product := productsBySku[sku]
		price, margin := productFeatures(product)

		for i, r := range rows {
			features := make([]float64, featureCount)
			features[featureMonth] = float64(r.Month.Month)
			features[featureYear] = float64(r.Month.Year)
			features[featureSku] = set.Encoder.Encode(sku)
			features[featurePrev1] = lagQuantity(rows, i)
			features[featureRoll3] = rollingMean(rows, i, 3)
			features[featureRoll6] = rollingMean(rows, i, 6)
			features[featurePrice] = price
			features[featureMargin] = margin

			set.X = append(set.X, features)
			set.Y = append(set.Y, r.Quantity)
		}

		n := len(rows)
		set.States[sku] = SkuState{
			Prev1: rows[n-1].Quantity,
			Roll3: trailingMean(rows, 3),
			Roll6: trailingMean(rows, 6),
		}
	}
	return set
}

// FutureFeatures builds the feature vector for forecasting sku at a future
// month, reusing the SKU's latest lag state for every horizon.
func (set TrainingSet) FutureFeatures(sku string, month chrono.Month, product forecast.Product) []float64 {
	price, margin := productFeatures(product)
	state := set.States[sku]

	features := make([]float64, featureCount)
	features[featureMonth] = float64(month.Month)
	features[featureYear] = float64(month.Year)
	features[featureSku] = set.Encoder.Encode(sku)
	features[featurePrev1] = state.Prev1
	features[featureRoll3] = state.Roll3
	features[featureRoll6] = state.Roll6
	features[featurePrice] = price
	features[featureMargin] = margin
	return features
}

func productFeatures(p forecast.Product) (price, margin float64) {
	if p.HasPrice {
		price = p.Price.InexactFloat64()
	}
	if p.HasMargin {
		margin = p.GrossMargin.InexactFloat64()
	}
	return price, margin
}

// lagQuantity is the previous row's quantity, 0 for the first row.
func lagQuantity(rows []forecast.SalesRecord, i int) float64 {
	if i == 0 {
		return 0
	}
	return rows[i-1].Quantity
}

// rollingMean averages up to `window` rows strictly before row i, 0 when
// there are none.
func rollingMean(rows []forecast.SalesRecord, i, window int) float64 {
	start := i - window
	if start < 0 {
		start = 0
	}
	if start == i {
		return 0
	}
	var sum float64
	for _, r := range rows[start:i] {
		sum += r.Quantity
	}
	return sum / float64(i-start)
}

// trailingMean averages up to `window` rows ending at the last row
// inclusive, for predicting the month after the series ends.
func trailingMean(rows []forecast.SalesRecord, window int) float64 {
	start := len(rows) - window
	if start < 0 {
		start = 0
	}
	var sum float64
	for _, r := range rows[start:] {
		sum += r.Quantity
	}
	return sum / float64(len(rows)-start)
}
