package sheets

import (
	"context"
	"strconv"

	"expensetracker/internal/core"
)

// Header is the first row of the ledger sheet.
var Header = []any{"ID", "Date", "Category", "Type", "Amount", "Note"}

// LedgerRow is one transaction as mirrored to a spreadsheet.
type LedgerRow struct {
	TransactionID int64
	Date          core.Date
	Category      string
	Type          core.CategoryType
	Amount        int64
	Note          string
}

// RowFrom flattens a joined transaction into a ledger row.
func RowFrom(t core.TransactionWithCategory) LedgerRow {
	return LedgerRow{
		TransactionID: t.ID,
		Date:          t.Date,
		Category:      t.Category.TitleWithIcon(),
		Type:          t.Category.Type,
		Amount:        t.Amount,
		Note:          t.Note,
	}
}

// Values is the cell order written to the sheet, matching Header.
func (r LedgerRow) Values() []any {
	return []any{strconv.FormatInt(r.TransactionID, 10), r.Date.String(), r.Category, string(r.Type), r.Amount, r.Note}
}

// LedgerWriter mirrors transactions to an external ledger.
type LedgerWriter interface {
	// Upsert writes the row, replacing an existing row with the same id.
	Upsert(ctx context.Context, row LedgerRow) (rowRef string, err error)
	// Remove clears the row for transactionID. Missing rows are not an error.
	Remove(ctx context.Context, transactionID int64) error
}
