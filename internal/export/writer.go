// Package export serializes the per-customer result table back to a workbook.
package export

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/rfmscope/rfmscope/internal/model"
)

const sheetName = "Customers"

// header is the exported column order.
var header = []any{
	"CustomerID", "Recency", "Frequency", "Monetary",
	"R_Score", "F_Score", "M_Score", "RFM_Score", "Segment", "CLTV",
}

// Writer writes customer tables as single-sheet xlsx workbooks.
type Writer struct{}

// NewWriter creates a new workbook writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write serializes customers to an xlsx file at path: one header row plus one
// row per customer. A zero-customer table produces a header-only sheet. The
// file is re-readable by the ingest-side workbook stack.
func (w *Writer) Write(path string, customers []model.CustomerRFM) error {
	wb := excelize.NewFile()
	defer func() {
		_ = wb.Close()
	}()

	index, err := wb.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	wb.SetActiveSheet(index)
	if err := wb.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := wb.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, c := range customers {
		row := []any{
			c.CustomerID,
			c.Recency,
			c.Frequency,
			c.Monetary.InexactFloat64(),
			c.RScore,
			c.FScore,
			c.MScore,
			c.RFMScore,
			string(c.Segment),
			c.CLTV.InexactFloat64(),
		}
		cellRef := fmt.Sprintf("A%d", i+2)
		if err := wb.SetSheetRow(sheetName, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}

	slog.Info("Exported customers", "path", path, "rows", len(customers))

	return nil
}
