package boosted

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"besparks-backend/lib/besparks"
	"besparks-backend/lib/chrono"
	"besparks-backend/lib/notify"
	"besparks-backend/lib/sheets"
	"besparks-backend/lib/timezone"
	"besparks-backend/services/forecast"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/forecast/boosted")

// Horizon is how many future months each run predicts.
const Horizon = 3

type SheetNames struct {
	Forecast         string `json:"forecast"`
	Report           string `json:"report"`
	NewSkus          string `json:"new_skus"`
	ModelDescription string `json:"model_description"`
}

func (s *SheetNames) applyDefaults() {
	if s.Forecast == "" {
		s.Forecast = "forecast"
	}
	if s.Report == "" {
		s.Report = "report"
	}
	if s.NewSkus == "" {
		s.NewSkus = "new_skus"
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
	options  Options
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

// Prediction is one SKU's quantity forecast for the next Horizon months.
type Prediction struct {
	Sku         string
	ProductLine string
	Quantities  [Horizon]int
	NewSku      bool
}

// Run trains the ensemble on every historical row, writes the Horizon-month
// forecast sheet, the training-fit report, and the new-SKU listing.
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

	products := forecast.FilterProducts(forecast.ProductsFromRows(productRows))
	monthly := forecast.AggregateMonthly(forecast.SalesRecordsFromRows(salesRows))
	set := BuildTrainingSet(monthly, products)
	span.SetAttributes(
		attribute.Int("products", len(products)),
		attribute.Int("training_rows", len(set.X)),
	)

	var mae, mape float64
	var predictions []Prediction
	if len(set.X) > 0 {
		model, err := Train(set.X, set.Y, s.options)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "train model")
			return err
		}

		fitted := make([]float64, len(set.X))
		for i, features := range set.X {
			fitted[i] = model.Predict(features)
		}
		mae = MAE(fitted, set.Y)
		mape = MAPE(fitted, set.Y)
		slog.InfoContext(ctx, "model trained", "rows", len(set.X), "mae", mae, "mape", mape)

		predictions = s.predict(model, set, products)
	} else {
		slog.WarnContext(ctx, "no training rows, forecast sheet will be empty")
	}

	horizons := futureMonths()
	if err := s.sheets.WriteTable(ctx, s.names.Forecast, buildForecastTable(predictions, horizons)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write forecast sheet")
		return err
	}
	if err := s.sheets.WriteTable(ctx, s.names.Report, buildReportTable(len(set.X), mae, mape)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write report sheet")
		return err
	}
	if err := s.sheets.WriteTable(ctx, s.names.NewSkus, buildNewSkuTable(predictions)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write new sku sheet")
		return err
	}
	if err := s.sheets.WriteTable(ctx, s.names.ModelDescription, buildModelDescription(s.options, horizons)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write model description sheet")
		return err
	}

	slog.InfoContext(ctx, "boosted forecast written", "skus", len(predictions))
	return nil
}

// RunAndNotify wraps Run with the run-status webhook contract: exactly one
// notification per run, success or failure.
func (s Service) RunAndNotify(ctx context.Context) error {
	err := s.Run(ctx)
	if err != nil {
		s.notifier.Sendf(ctx, "[forecast/boosted] run failed: %s", err)
		return err
	}
	s.notifier.Sendf(ctx, "[forecast/boosted] %d-month forecast complete", Horizon)
	return nil
}

func (s Service) predict(model *Ensemble, set TrainingSet, products []forecast.Product) []Prediction {
	sorted := make([]forecast.Product, len(products))
	copy(sorted, products)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].Sku < sorted[b].Sku })

	horizons := futureMonths()
	out := make([]Prediction, 0, len(sorted))
	for _, product := range sorted {
		p := Prediction{
			Sku:         product.Sku,
			ProductLine: product.ProductLine,
			NewSku:      !set.Encoder.Known(product.Sku),
		}
		for h, month := range horizons {
			raw := model.Predict(set.FutureFeatures(product.Sku, month, product))
			if raw < 0 {
				raw = 0
			}
			p.Quantities[h] = int(math.Round(raw))
		}
		out = append(out, p)
	}
	return out
}

func futureMonths() [Horizon]chrono.Month {
	current := chrono.MonthOf(timezone.Now())
	var out [Horizon]chrono.Month
	for i := range out {
		out[i] = current.Add(i + 1)
	}
	return out
}

func buildForecastTable(predictions []Prediction, horizons [Horizon]chrono.Month) sheets.Table {
	table := sheets.Table{Header: []string{"sku", "product_line"}}
	for _, m := range horizons {
		table.Header = append(table.Header, m.String())
	}
	for _, p := range predictions {
		table.Append(p.Sku, p.ProductLine, p.Quantities[0], p.Quantities[1], p.Quantities[2])
	}
	return table
}

func buildReportTable(rows int, mae, mape float64) sheets.Table {
	table := sheets.Table{Header: []string{"metric", "value"}}
	table.Append("training_rows", rows)
	table.Append("mae", mae)
	table.Append("mape", mape)
	return table
}

func buildNewSkuTable(predictions []Prediction) sheets.Table {
	table := sheets.Table{Header: []string{"sku", "product_line"}}
	for _, p := range predictions {
		if p.NewSku {
			table.Append(p.Sku, p.ProductLine)
		}
	}
	return table
}

func buildModelDescription(opts Options, horizons [Horizon]chrono.Month) sheets.Table {
	opts.applyDefaults()
	table := sheets.Table{Header: []string{"item", "description"}}
	table.Append("model", "gradient-boosted regression trees over lag and rolling-mean features")
	table.Append("features", "month, year, sku code, previous-month qty, 3/6-month rolling mean qty, price, gross margin")
	table.Append("rounds", opts.Rounds)
	table.Append("learning_rate", opts.LearningRate)
	table.Append("max_depth", opts.MaxDepth)
	table.Append("horizon", horizons[0].String()+" through "+horizons[Horizon-1].String())
	table.Append("new_skus", "SKUs without sales history are listed separately and predicted from product attributes only")
	return table
}
