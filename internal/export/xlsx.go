// Package export renders transactions as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"expensetracker/internal/core"
	"expensetracker/internal/sheets"
)

// SheetName is the worksheet holding the transactions.
const SheetName = "Transactions"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteTransactions writes txs, one per row under a bold header, using the
// same columns as the spreadsheet mirror. A totals block follows the rows.
func WriteTransactions(w io.Writer, txs []core.TransactionWithCategory) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	header := sheets.Header
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	var income, expense int64
	for i, t := range txs {
		row := sheets.RowFrom(t)
		values := []any{row.TransactionID, row.Date.String(), row.Category, string(row.Type), row.Amount, row.Note}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
		switch t.Category.Type {
		case core.Income:
			income += t.Amount
		case core.Expense:
			expense += t.Amount
		}
	}

	totals := [][]any{
		{"Total income", income},
		{"Total expense", expense},
		{"Balance", income - expense},
	}
	start := len(txs) + 3
	for i, tr := range totals {
		cell, err := excelize.CoordinatesToCellName(4, start+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &tr); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
	}

	if err := f.SetColWidth(SheetName, "C", "C", 24); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "F", "F", 40); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
