package sheets

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbookWriteTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWorkbook(path)
	ctx := context.Background()

	table := Table{Header: []string{"sku", "qty"}}
	table.Append("BLK-P0001", 25)
	table.Append("BLK-P0002", 30)

	err := w.WriteTable(ctx, "forecast", table)
	require.NoError(t, err)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("forecast")
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"sku", "qty"},
		{"BLK-P0001", "25"},
		{"BLK-P0002", "30"},
	}, rows)
}

func TestWorkbookOverwritesSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWorkbook(path)
	ctx := context.Background()

	first := Table{Header: []string{"a", "b", "c"}}
	first.Append(1, 2, 3)
	first.Append(4, 5, 6)
	require.NoError(t, w.WriteTable(ctx, "report", first))

	second := Table{Header: []string{"x"}}
	second.Append("only")
	require.NoError(t, w.WriteTable(ctx, "report", second))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("report")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"x"}, {"only"}}, rows)
}

func TestWorkbookMultipleSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	w := NewWorkbook(path)
	ctx := context.Background()

	require.NoError(t, w.WriteTable(ctx, "sheet1", Table{Header: []string{"a"}}))
	require.NoError(t, w.WriteTable(ctx, "qa_audit", Table{Header: []string{"b"}}))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	require.Contains(t, wb.GetSheetList(), "sheet1")
	require.Contains(t, wb.GetSheetList(), "qa_audit")
}
