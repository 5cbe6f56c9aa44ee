package boosted

import (
	"context"
	"encoding/json"
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
	cleanup := telemetry.SetupForTesting(t, "services/forecast/boosted")
	defer cleanup()

	// a year of flat sales for OLD-1, nothing for NEW-1
	start := chrono.Month{Year: 2024, Month: time.January}
	var salesRows []map[string]any
	for i := 0; i < 12; i++ {
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
		{"sku": "NEW-1", "gross_margin": 0.2, "product_line": "Skincare", "type": "single", "is_tangible": true, "status": "active"}
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

	current := chrono.MonthOf(timezone.Now())

	main, ok := memory.Tables["forecast"]
	require.True(t, ok)
	require.Equal(t, []string{
		"sku", "product_line",
		current.Add(1).String(), current.Add(2).String(), current.Add(3).String(),
	}, main.Header)

	// flat history trains a constant model, so every prediction is 40
	require.Equal(t, []any{"NEW-1", "Skincare", 40, 40, 40}, main.Rows[0])
	require.Equal(t, []any{"OLD-1", "Skincare", 40, 40, 40}, main.Rows[1])

	report, ok := memory.Tables["report"]
	require.True(t, ok)
	require.Equal(t, []any{"training_rows", 12}, report.Rows[0])

	newSkus, ok := memory.Tables["new_skus"]
	require.True(t, ok)
	require.Equal(t, [][]any{{"NEW-1", "Skincare"}}, newSkus.Rows)

	_, ok = memory.Tables["model_description"]
	require.True(t, ok)
}

func TestServiceRunNoHistory(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/forecast/boosted")
	defer cleanup()

	products := `[
		{"sku": "A", "product_line": "Makeup", "type": "single", "is_tangible": true, "status": "active"}
	]`

	memory := sheets.NewMemory()
	service := NewService(
		fixtureApi(t, "[]", products),
		memory,
		notify.NewNotifier(""),
		SheetNames{},
	)

	require.NoError(t, service.Run(context.Background()))
	require.Empty(t, memory.Tables["forecast"].Rows)
	require.Empty(t, memory.Tables["new_skus"].Rows)
}

func TestServiceRunFetchFailureNotifies(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "services/forecast/boosted")
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
		besparks.NewClient(besparks.Config{BaseUrl: server.URL, MaxAttempts: 1}),
		sheets.NewMemory(),
		notify.NewNotifier(webhook.URL),
		SheetNames{},
	)

	require.Error(t, service.RunAndNotify(context.Background()))
	require.Len(t, notifications, 1)
	require.Contains(t, notifications[0], "failed")
}
