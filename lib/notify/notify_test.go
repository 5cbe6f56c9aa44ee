package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var got []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		err := json.NewDecoder(r.Body).Decode(&payload)
		require.NoError(t, err)
		got = append(got, payload.Text)
	}))
	defer server.Close()

	n := NewNotifier(server.URL)
	n.Send(context.Background(), "forecast complete")
	n.Sendf(context.Background(), "imported %d rows", 42)

	require.Equal(t, []string{"forecast complete", "imported 42 rows"}, got)
}

func TestSendNoWebhook(t *testing.T) {
	// must not panic or block
	n := NewNotifier("")
	n.Send(context.Background(), "ignored")

	var nilNotifier *Notifier
	nilNotifier.Send(context.Background(), "also ignored")
}
