package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"besparks-backend/lib/besparks"
	"besparks-backend/lib/chrono"
	"besparks-backend/lib/notify"
	"besparks-backend/lib/sheets"
	"besparks-backend/lib/telemetry"
	"besparks-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

func fixtureApi(t *testing.T, sales, products string) *besparks.Client {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/sales_history":
			w.Write([]byte(sales))
		case "/data/product_info":
			w.Write([]byte(products))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return besparks.NewClient(besparks.Config{BaseUrl: server.URL})
}

func TestServiceRun(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/forecast")
	defer cleanup()

	// 18 months of flat sales for OLD-1, nothing for NEW-1
	start := chrono.Month{Year: 2023, Month: time.January}
	var salesRows []map[string]any
	for i := 0; i < 18; i++ {
		salesRows = append(salesRows, map[string]any{
			"sku":           "OLD-1",
			"date":          start.Add(i).String(),
			"quantity_sold": 40,
		})
	}
	sales, err := json.Marshal(salesRows)
	require.NoError(t, err)

	products := `[
		{"sku": "OLD-1", "gross_margin": 0.65, "product_line": "Skincare", "type": "single", "is_tangible": true, "status": "active"},
		{"sku": "NEW-1", "gross_margin": 0.2, "product_line": "Skincare", "type": "single", "is_tangible": true, "status": "active"},
		{"sku": "BUNDLE", "gross_margin": 0.9, "product_line": "Skincare", "type": "bundle", "is_tangible": true, "status": "active"}
	]`

	var notifications []string
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		notifications = append(notifications, payload.Text)
	}))
	defer webhook.Close()

	memory := sheets.NewMemory()
	service := NewService(
		fixtureApi(t, string(sales), products),
		memory,
		notify.NewNotifier(webhook.URL),
		SheetNames{},
	)

	err = service.RunAndNotify(context.Background())
	require.NoError(t, err)
	require.Len(t, notifications, 1)

	label := chrono.MonthOf(timezone.Now()).Add(1).String()

	main, ok := memory.Tables["sheet1"]
	require.True(t, ok)
	require.Equal(t, []string{"sku", "type", "product_line", label}, main.Header)
	require.Len(t, main.Rows, 2) // OLD-1 + NEW-1, BUNDLE filtered out

	// flat 40/month with 0.65 margin: 40 * 1.2 = 48
	require.Equal(t, []any{"OLD-1", "single", "Skincare", 48}, main.Rows[0])
	// fallback: category mean of 48 -> 48
	require.Equal(t, []any{"NEW-1", "single", "Skincare", 48}, main.Rows[1])

	qa, ok := memory.Tables["qa_audit"]
	require.True(t, ok)
	require.Equal(t, []string{"sku", "product_line", "forecast_value", "forecast_type"}, qa.Header)
	require.Equal(t, []any{"OLD-1", "Skincare", 48, "historical"}, qa.Rows[0])
	require.Equal(t, []any{"NEW-1", "Skincare", 48, "fallback"}, qa.Rows[1])

	desc, ok := memory.Tables["model_description"]
	require.True(t, ok)
	require.Equal(t, []string{"item", "description"}, desc.Header)
	require.NotEmpty(t, desc.Rows)
}

func TestServiceRunFetchFailureNotifies(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/forecast")
	defer cleanup()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var notifications []string
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		notifications = append(notifications, payload.Text)
	}))
	defer webhook.Close()

	service := NewService(
		besparks.NewClient(besparks.Config{
			BaseUrl:     server.URL,
			MaxAttempts: 1,
		}),
		sheets.NewMemory(),
		notify.NewNotifier(webhook.URL),
		SheetNames{},
	)

	err := service.RunAndNotify(context.Background())
	require.Error(t, err)
	// exactly one failure notification per failed run
	require.Len(t, notifications, 1)
	require.Contains(t, notifications[0], "failed")
}

func TestServiceRunNoHistory(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/forecast")
	defer cleanup()

	products := `[
		{"sku": "NEW-1", "gross_margin": 0.5, "product_line": "Skincare", "type": "single", "is_tangible": true, "status": "active"},
		{"sku": "NEW-2", "gross_margin": 0.5, "product_line": "Makeup", "type": "single", "is_tangible": true, "status": "active"}
	]`

	memory := sheets.NewMemory()
	service := NewService(
		fixtureApi(t, "[]", products),
		memory,
		notify.NewNotifier(""),
		SheetNames{Main: "forecast"},
	)

	err := service.Run(context.Background())
	require.NoError(t, err)

	main := memory.Tables["forecast"]
	require.Len(t, main.Rows, 2)
	for _, row := range main.Rows {
		require.Equal(t, 10, row[3], fmt.Sprintf("row %v", row))
	}

	// the model sheet must not describe a 0%/0%/0% moving average
	desc := memory.Tables["model_description"]
	require.NotEmpty(t, desc.Rows)
	require.Equal(t, "forecast logic", desc.Rows[0][0])
	require.Contains(t, desc.Rows[0][1], "fallback")
	require.NotContains(t, desc.Rows[0][1], "0%")
}
