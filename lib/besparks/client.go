// Package besparks is the client for the platform's data HTTP API: the
// sales-history and product-master row sets consumed by the forecast engine
// and the order-ingest endpoint fed by the portal spider.
package besparks

import (
	"context"
	"fmt"
	"time"

	"besparks-backend/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

type Config struct {
	BaseUrl        string `json:"base_url"`
	OrderIngestUrl string `json:"order_ingest_url"`
	// total attempts per fetch, defaults to 3
	MaxAttempts int `json:"max_attempts"`
	// delay between attempts, defaults to 2s
	RetryWait Duration `json:"retry_wait"`
}

type Client struct {
	http           *resty.Client
	orderIngestUrl string
}

// NewClient builds a client with the retry policy applied at the client
// level, so every call site shares the same fetch-failure semantics.
func NewClient(cfg Config) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	retryWait := time.Duration(cfg.RetryWait)
	if retryWait <= 0 {
		retryWait = time.Second * 2
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseUrl)
	client.SetTimeout(time.Second * 30)
	client.SetRetryCount(maxAttempts - 1)
	client.SetRetryWaitTime(retryWait)
	client.SetRetryMaxWaitTime(retryWait * 4)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || res.IsError()
	})
	telemetry.InstrumentResty(client, "besparks/http")

	return &Client{
		http:           client,
		orderIngestUrl: cfg.OrderIngestUrl,
	}
}

func (c *Client) FetchSalesHistory(ctx context.Context) ([]SalesHistoryRow, error) {
	var rows []SalesHistoryRow
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&rows).
		// the API is not consistent about the content-type header, decode
		// the body as json regardless
		ForceContentType("application/json").
		Get("/data/sales_history")
	if err != nil {
		return nil, fmt.Errorf("fetch sales_history: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch sales_history: status %d", res.StatusCode())
	}
	return rows, nil
}

func (c *Client) FetchProductInfo(ctx context.Context) ([]ProductRow, error) {
	var rows []ProductRow
	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&rows).
		ForceContentType("application/json").
		Get("/data/product_info")
	if err != nil {
		return nil, fmt.Errorf("fetch product_info: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("fetch product_info: status %d", res.StatusCode())
	}
	return rows, nil
}

// PushOrders sends one day's worth of scraped sales to the order-ingest
// endpoint.
func (c *Client) PushOrders(ctx context.Context, order DailyOrder) error {
	if c.orderIngestUrl == "" {
		return fmt.Errorf("order ingest url is not configured")
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]DailyOrder{"data": order}).
		Post(c.orderIngestUrl)
	if err != nil {
		return fmt.Errorf("push orders: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("push orders: status %d: %s", res.StatusCode(), res.String())
	}
	return nil
}
