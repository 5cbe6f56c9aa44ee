package poya

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DailySalesRow is one product line of the portal's per-day sales report.
// Quantities stay as the portal's raw text; the report mixes numbers with
// blanks and dashes, so parsing is deferred to the consumer.
type DailySalesRow struct {
	VendorName  string
	StoreCode   string
	Barcode     string
	ProductName string
	SalesQty    string
	StockQty    string
}

// SalesQuantity parses the raw sales figure. ok is false for blanks and
// other non-numeric markers.
func (r DailySalesRow) SalesQuantity() (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(r.SalesQty, ",", "")))
	if err != nil {
		return 0, false
	}
	return v, true
}

// FetchDailySales runs the portal's POS sales query for a single day. The
// caller must have logged in on this client first. An empty slice with no
// error means the portal reported no data for that day.
func (c *Client) FetchDailySales(ctx context.Context, date time.Time) ([]DailySalesRow, error) {
	ctx, span := tracer.Start(ctx, "client:FetchDailySales")
	defer span.End()
	span.SetAttributes(attribute.String("date", date.Format("2006-01-02")))

	res, err := c.Http.R().
		SetContext(ctx).
		Get(queryPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch query page")
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse query page html")
		return nil, err
	}

	viewstate := hiddenField(doc, "__VIEWSTATE")
	eventvalidation := hiddenField(doc, "__EVENTVALIDATION")
	generator := hiddenField(doc, "__VIEWSTATEGENERATOR")
	if viewstate == "" || eventvalidation == "" {
		span.SetStatus(codes.Error, "failed to find query form state")
		return nil, fmt.Errorf("could not find query form state fields")
	}

	portalDate := date.Format("2006/01/02")
	res, err = c.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"__VIEWSTATE":          viewstate,
			"__VIEWSTATEGENERATOR": generator,
			"__EVENTVALIDATION":    eventvalidation,
			"__EVENTTARGET":        "",
			"__EVENTARGUMENT":      "",
			"__LASTFOCUS":          "",
			"ddlType":              "1",
			"EcrDate1":             portalDate,
			"EcrDate2":             portalDate,
			"chkSum":               "on",
			"GroupType":            "RBtnPos",
			"btnSearch":            "查詢",
		}).
		Post(queryPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit sales query")
		return nil, err
	}

	// the portal finishes rendering the report well after responding
	select {
	case <-time.After(c.resultDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	rows, err := parseSalesTable(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse sales table")
		return nil, err
	}
	span.SetAttributes(attribute.Int("rows", len(rows)))
	return rows, nil
}

// parseSalesTable extracts the 6-column product rows out of the report's
// dgProd table. Header rows and malformed rows are skipped.
func parseSalesTable(body []byte) ([]DailySalesRow, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table#dgProd")
	if table.Length() == 0 {
		return nil, nil
	}

	var rows []DailySalesRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() != 6 {
			return
		}
		cols := make([]string, 6)
		cells.Each(func(i int, td *goquery.Selection) {
			cols[i] = strings.TrimSpace(td.Text())
		})
		rows = append(rows, DailySalesRow{
			VendorName:  cols[0],
			StoreCode:   cols[1],
			Barcode:     cols[2],
			ProductName: cols[3],
			SalesQty:    cols[4],
			StockQty:    cols[5],
		})
	})
	return rows, nil
}
