package forecast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFallbackUsesCategoryAverage(t *testing.T) {
	products := []Product{
		{Sku: "OLD-1", ProductLine: "Skincare", Type: "single"},
		{Sku: "OLD-2", ProductLine: "Skincare", Type: "single"},
		{Sku: "NEW-1", ProductLine: "Skincare", Type: "single"},
	}
	computed := []Row{
		{Sku: "OLD-1", ProductLine: "Skincare", Quantity: 10, Forecast: TypeHistorical},
		{Sku: "OLD-2", ProductLine: "Skincare", Quantity: 15, Forecast: TypeHistorical},
	}

	rows := FallbackForecasts(products, computed)
	require.Len(t, rows, 1)
	require.Equal(t, "NEW-1", rows[0].Sku)
	require.Equal(t, 13, rows[0].Quantity) // mean(10,15)=12.5 rounds up
	require.Equal(t, TypeFallback, rows[0].Forecast)
}

func TestFallbackRoundsCategoryMean(t *testing.T) {
	products := []Product{
		{Sku: "NEW-1", ProductLine: "Makeup"},
	}
	// category mean 12.4 rounds to 12
	computed := []Row{
		{Sku: "OLD-1", ProductLine: "Makeup", Quantity: 12},
		{Sku: "OLD-2", ProductLine: "Makeup", Quantity: 12},
		{Sku: "OLD-3", ProductLine: "Makeup", Quantity: 12},
		{Sku: "OLD-4", ProductLine: "Makeup", Quantity: 12},
		{Sku: "OLD-5", ProductLine: "Makeup", Quantity: 14},
	}

	rows := FallbackForecasts(products, computed)
	require.Len(t, rows, 1)
	require.Equal(t, 12, rows[0].Quantity)
}

func TestFallbackDefaultForEmptyCategory(t *testing.T) {
	products := []Product{
		{Sku: "NEW-1", ProductLine: "Fragrance"},
	}

	rows := FallbackForecasts(products, nil)
	require.Len(t, rows, 1)
	require.Equal(t, 10, rows[0].Quantity)
}

func TestCombinedOutputCoversEverySkuOnce(t *testing.T) {
	products := []Product{
		{Sku: "A", ProductLine: "Skincare"},
		{Sku: "B", ProductLine: "Skincare"},
		{Sku: "C", ProductLine: "Makeup"},
		{Sku: "D", ProductLine: "Makeup"},
	}
	computed := []Row{
		{Sku: "A", ProductLine: "Skincare", Quantity: 20, Forecast: TypeHistorical},
		{Sku: "C", ProductLine: "Makeup", Quantity: 8, Forecast: TypeHistorical},
	}

	combined := append(computed, FallbackForecasts(products, computed)...)

	seen := map[string]int{}
	for _, r := range combined {
		seen[r.Sku]++
	}
	require.Len(t, seen, len(products))
	for sku, count := range seen {
		require.Equal(t, 1, count, "sku %s appears %d times", sku, count)
	}
}
