// Package notify sends run-status messages to a Slack-compatible incoming
// webhook. Notification failures are reported through logs only, a broken
// webhook should never take down a run.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"besparks-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

type Notifier struct {
	webhookUrl string
	http       *resty.Client
}

// NewNotifier creates a webhook notifier. An empty webhook url yields a
// notifier whose Send is a no-op.
func NewNotifier(webhookUrl string) *Notifier {
	client := resty.New()
	client.SetTimeout(time.Second * 10)
	telemetry.InstrumentResty(client, "notify/http")

	return &Notifier{
		webhookUrl: webhookUrl,
		http:       client,
	}
}

func (n *Notifier) Send(ctx context.Context, text string) {
	if n == nil || n.webhookUrl == "" {
		slog.DebugContext(ctx, "webhook url unset, skipping notification", "text", text)
		return
	}

	res, err := n.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": text}).
		Post(n.webhookUrl)
	if err != nil {
		slog.ErrorContext(ctx, "failed to send webhook notification", "err", err)
		return
	}
	if res.IsError() {
		slog.ErrorContext(
			ctx, "webhook notification rejected",
			"status", res.StatusCode(),
			"body", res.String(),
		)
	}
}

func (n *Notifier) Sendf(ctx context.Context, format string, args ...any) {
	n.Send(ctx, fmt.Sprintf(format, args...))
}
