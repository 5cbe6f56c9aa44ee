package sheets

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("lib/sheets")

// Workbook is a Writer backed by an xlsx file on disk. Each WriteTable
// drops and recreates the target sheet, then saves the whole workbook.
type Workbook struct {
	path string
	mu   sync.Mutex
}

func NewWorkbook(path string) *Workbook {
	return &Workbook{path: path}
}

func (w *Workbook) open() (*excelize.File, error) {
	_, err := os.Stat(w.path)
	if os.IsNotExist(err) {
		return excelize.NewFile(), nil
	}
	if err != nil {
		return nil, err
	}
	return excelize.OpenFile(w.path)
}

func (w *Workbook) WriteTable(ctx context.Context, sheet string, table Table) error {
	ctx, span := tracer.Start(ctx, "WriteTable")
	defer span.End()
	span.SetAttributes(
		attribute.String("sheet", sheet),
		attribute.Int("rows", table.Len()),
	)

	w.mu.Lock()
	defer w.mu.Unlock()

	wb, err := w.open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open workbook")
		return err
	}
	defer wb.Close()

	// recreate under a scratch name first, the workbook must never be
	// left without any sheet at all
	const scratch = "__rewrite__"
	if _, err := wb.NewSheet(scratch); err != nil {
		return err
	}
	if idx, _ := wb.GetSheetIndex(sheet); idx >= 0 {
		if err := wb.DeleteSheet(sheet); err != nil {
			return err
		}
	}
	if _, err := wb.NewSheet(sheet); err != nil {
		return err
	}
	if err := wb.DeleteSheet(scratch); err != nil {
		return err
	}

	header := make([]any, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := writeRow(wb, sheet, 1, header); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := writeRow(wb, sheet, i+2, row); err != nil {
			return err
		}
	}

	err = wb.SaveAs(w.path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save workbook")
		return fmt.Errorf("save workbook %s: %w", w.path, err)
	}
	return nil
}

func writeRow(wb *excelize.File, sheet string, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return wb.SetSheetRow(sheet, cell, &cells)
}
