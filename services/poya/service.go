package poya

import (
	"context"
	"log/slog"
	"time"

	"besparks-backend/lib/besparks"
	"besparks-backend/lib/notify"
	"besparks-backend/lib/sheets"
	"besparks-backend/lib/timezone"

	"go.opentelemetry.io/otel/attribute"
)

type Mode string

const (
	// scrape yesterday only
	ModeDaily Mode = "daily"
	// scrape every day from a start date through yesterday
	ModeBackfill Mode = "backfill"
)

const defaultChannelId = 170

type Options struct {
	EnableSheet bool `json:"enable_write_to_sheet"`
	EnablePush  bool `json:"enable_post_orders"`
	// channel id attached to pushed orders, defaults to 170
	ChannelId int `json:"channel_id"`
}

type Service struct {
	portal   *Client
	api      *besparks.Client
	sheets   sheets.Writer
	notifier *notify.Notifier
	options  Options
}

func NewService(portal *Client, api *besparks.Client, writer sheets.Writer, notifier *notify.Notifier, options Options) Service {
	if options.ChannelId == 0 {
		options.ChannelId = defaultChannelId
	}
	return Service{
		portal:   portal,
		api:      api,
		sheets:   writer,
		notifier: notifier,
		options:  options,
	}
}

// DateRange resolves a scrape mode into an inclusive day range ending
// yesterday. A backfill without a valid start date goes back one week.
func DateRange(mode Mode, backfillStart string, now time.Time) (start, end time.Time) {
	yesterday := midnight(now.AddDate(0, 0, -1))
	switch mode {
	case ModeBackfill:
		start = midnight(now.AddDate(0, 0, -7))
		if backfillStart != "" {
			parsed, err := time.ParseInLocation("2006-01-02", backfillStart, timezone.Location)
			if err != nil {
				slog.Warn("invalid backfill start date, using one week", "value", backfillStart)
			} else {
				start = parsed
			}
		}
		return start, yesterday
	case ModeDaily:
		return yesterday, yesterday
	default:
		slog.Warn("unknown scrape mode, using daily", "mode", string(mode))
		return yesterday, yesterday
	}
}

func midnight(t time.Time) time.Time {
	t = t.In(timezone.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, timezone.Location)
}

// Run scrapes each day in the inclusive range. A failed day is reported and
// skipped; later days still run. The returned map holds a short status
// string per day label.
func (s Service) Run(ctx context.Context, start, end time.Time) map[string]string {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("start", start.Format("2006-01-02")),
		attribute.String("end", end.Format("2006-01-02")),
	)

	results := map[string]string{}
	for day := midnight(start); !day.After(midnight(end)); day = day.AddDate(0, 0, 1) {
		label := day.Format("2006-01-02")
		slog.InfoContext(ctx, "processing day", "date", label)
		results[label] = s.processDay(ctx, day, label)
	}

	slog.InfoContext(ctx, "scrape run complete", "days", len(results))
	return results
}

func (s Service) processDay(ctx context.Context, day time.Time, label string) string {
	ctx, span := tracer.Start(ctx, "processDay")
	defer span.End()
	span.SetAttributes(attribute.String("date", label))

	// the portal drops sessions aggressively, so every day logs in fresh
	if err := s.portal.Login(ctx); err != nil {
		slog.ErrorContext(ctx, "portal login failed", "date", label, "err", err)
		s.notifier.Sendf(ctx, "❌ %s portal login failed", label)
		return "error"
	}

	rows, err := s.portal.FetchDailySales(ctx, day)
	if err != nil {
		slog.ErrorContext(ctx, "scrape failed", "date", label, "err", err)
		s.notifier.Sendf(ctx, "❌ %s scrape failed", label)
		return "error"
	}
	if len(rows) == 0 {
		slog.WarnContext(ctx, "no data for day", "date", label)
		s.notifier.Sendf(ctx, "⚠️ %s no data", label)
		return "no data"
	}

	if s.options.EnableSheet {
		if err := s.sheets.WriteTable(ctx, label, buildDayTable(rows)); err != nil {
			slog.ErrorContext(ctx, "sheet write failed", "date", label, "err", err)
			s.notifier.Sendf(ctx, "⚠️ %s sheet write failed", label)
			return "sheet write failed"
		}
	}

	if !s.options.EnablePush {
		return "scraped"
	}

	items := orderItems(rows)
	if len(items) == 0 {
		slog.InfoContext(ctx, "no positive sales, order push skipped", "date", label)
		return "no sales"
	}

	order := besparks.DailyOrder{
		ChannelId:      s.options.ChannelId,
		ChannelOrderNo: day.Format("poya20060102") + "080000",
		Orders:         items,
		Timestamp:      timezone.Now().Format(time.RFC3339),
	}
	if err := s.api.PushOrders(ctx, order); err != nil {
		slog.ErrorContext(ctx, "order push failed", "date", label, "err", err)
		s.notifier.Sendf(ctx, "⚠️ %s order push failed", label)
		return "push failed"
	}

	s.notifier.Sendf(ctx, "✅ %s imported, %d items", label, len(items))
	return "imported"
}

// orderItems keeps only rows that actually sold something.
func orderItems(rows []DailySalesRow) []besparks.OrderItem {
	var items []besparks.OrderItem
	for _, r := range rows {
		qty, ok := r.SalesQuantity()
		if !ok || qty <= 0 {
			continue
		}
		items = append(items, besparks.OrderItem{
			Barcode:  r.Barcode,
			SalesQty: qty,
		})
	}
	return items
}

func buildDayTable(rows []DailySalesRow) sheets.Table {
	table := sheets.Table{
		Header: []string{"vendor_name", "store_code", "barcode", "product_name", "sales_qty", "stock_qty"},
	}
	for _, r := range rows {
		table.Append(r.VendorName, r.StoreCode, r.Barcode, r.ProductName, r.SalesQty, r.StockQty)
	}
	return table
}
