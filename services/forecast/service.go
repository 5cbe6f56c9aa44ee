package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"besparks-backend/lib/besparks"
	"besparks-backend/lib/chrono"
	"besparks-backend/lib/notify"
	"besparks-backend/lib/sheets"
	"besparks-backend/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/forecast")

type SheetNames struct {
	Main             string `json:"main"`
	QaAudit          string `json:"qa_audit"`
	ModelDescription string `json:"model_description"`
}

func (s *SheetNames) applyDefaults() {
	if s.Main == "" {
		s.Main = "sheet1"
	}
	if s.QaAudit == "" {
		s.QaAudit = "qa_audit"
	}
	if s.ModelDescription == "" {
		s.ModelDescription = "model_description"
	}
}

type Service struct {
	api      *besparks.Client
	sheets   sheets.Writer
	notifier *notify.Notifier
	names    SheetNames
}

func NewService(api *besparks.Client, writer sheets.Writer, notifier *notify.Notifier, names SheetNames) Service {
	names.applyDefaults()
	return Service{
		api:      api,
		sheets:   writer,
		notifier: notifier,
		names:    names,
	}
}

// Run executes the whole weighted-average pipeline: fetch, filter,
// aggregate, backtest, forecast, adjust, fall back, write the three output
// sheets. Any error aborts the run; sheets already written stay written.
func (s Service) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	salesRows, err := s.api.FetchSalesHistory(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch sales history")
		return err
	}
	productRows, err := s.api.FetchProductInfo(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch product info")
		return err
	}

	products := FilterProducts(ProductsFromRows(productRows))
	monthly := AggregateMonthly(SalesRecordsFromRows(salesRows))
	span.SetAttributes(
		attribute.Int("products", len(products)),
		attribute.Int("monthly_records", len(monthly)),
	)

	periodLabel := chrono.MonthOf(timezone.Now()).Add(1).String()
	combined, weights := s.computeRows(ctx, monthly, products)

	if err := s.sheets.WriteTable(ctx, s.names.Main, BuildMainTable(combined, periodLabel)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write main sheet")
		return err
	}
	if err := s.sheets.WriteTable(ctx, s.names.QaAudit, BuildQATable(combined)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write qa sheet")
		return err
	}

	if err := s.sheets.WriteTable(ctx, s.names.ModelDescription, BuildModelDescription(weights, periodLabel)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write model description sheet")
		return err
	}

	slog.InfoContext(ctx, "forecast written", "period", periodLabel, "rows", len(combined))
	return nil
}

// RunAndNotify wraps Run with the run-status webhook contract: exactly one
// notification per run, success or failure.
func (s Service) RunAndNotify(ctx context.Context) error {
	periodLabel := chrono.MonthOf(timezone.Now()).Add(1).String()
	err := s.Run(ctx)
	if err != nil {
		s.notifier.Sendf(ctx, "[forecast] run failed: %s", err)
		return err
	}
	s.notifier.Sendf(ctx, "[forecast] %s forecast complete, main and QA sheets updated", periodLabel)
	return nil
}

func (s Service) computeRows(ctx context.Context, monthly []SalesRecord, products []Product) ([]Row, Weights) {
	ctx, span := tracer.Start(ctx, "computeRows")
	defer span.End()

	productsBySku := map[string]Product{}
	for _, p := range products {
		productsBySku[p.Sku] = p
	}

	// the original pipeline joins sales onto the filtered master before
	// forecasting, so unknown SKUs never produce rows
	var joined []SalesRecord
	for _, r := range monthly {
		if _, ok := productsBySku[r.Sku]; ok {
			joined = append(joined, r)
		}
	}

	var computed []Row
	var weights Weights
	latest, ok := LatestMonth(joined)
	if ok {
		split := latest.Add(-6)
		var results []BacktestResult
		weights, results = SelectWeights(joined, DefaultWeightCandidates, split)
		for _, r := range results {
			slog.DebugContext(
				ctx, "backtest candidate",
				"w1", r.Weights.W1, "w3", r.Weights.W3, "w6", r.Weights.W6,
				"rmse", r.RMSE,
			)
		}
		slog.InfoContext(
			ctx, "selected weights",
			"w1", weights.W1, "w3", weights.W3, "w6", weights.W6,
		)

		history := HistoryBySku(joined)
		skus := make([]string, 0, len(history))
		for sku := range history {
			skus = append(skus, sku)
		}
		slices.Sort(skus)

		for _, sku := range skus {
			product := productsBySku[sku]
			base := Forecast(history[sku], latest, weights)
			computed = append(computed, Row{
				Sku:         sku,
				Type:        product.Type,
				ProductLine: product.ProductLine,
				Quantity:    AdjustMargin(base, product.GrossMargin, product.HasMargin),
				Forecast:    TypeHistorical,
			})
		}
	} else {
		slog.WarnContext(ctx, "no usable sales history, every SKU falls back")
	}

	combined := append(computed, FallbackForecasts(products, computed)...)
	span.SetAttributes(
		attribute.Int("historical_rows", len(computed)),
		attribute.Int("total_rows", len(combined)),
	)
	return combined, weights
}

// BacktestReport runs only the weight search, for the CLI's backtest
// summary output.
func (s Service) BacktestReport(ctx context.Context) ([]BacktestResult, Weights, error) {
	ctx, span := tracer.Start(ctx, "BacktestReport")
	defer span.End()

	salesRows, err := s.api.FetchSalesHistory(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch sales history")
		return nil, Weights{}, err
	}
	productRows, err := s.api.FetchProductInfo(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch product info")
		return nil, Weights{}, err
	}

	products := FilterProducts(ProductsFromRows(productRows))
	keep := map[string]bool{}
	for _, p := range products {
		keep[p.Sku] = true
	}
	var monthly []SalesRecord
	for _, r := range AggregateMonthly(SalesRecordsFromRows(salesRows)) {
		if keep[r.Sku] {
			monthly = append(monthly, r)
		}
	}

	latest, ok := LatestMonth(monthly)
	if !ok {
		return nil, Weights{}, fmt.Errorf("no sales history to backtest")
	}
	best, results := SelectWeights(monthly, DefaultWeightCandidates, latest.Add(-6))
	return results, best, nil
}
