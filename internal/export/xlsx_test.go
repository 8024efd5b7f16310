package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"expensetracker/internal/core"
)

func TestWriteTransactions(t *testing.T) {
	food := core.Category{ID: 1, Title: "Food", Icon: "🍔", Type: core.Expense}
	salary := core.Category{ID: 2, Title: "Salary", Type: core.Income}
	txs := []core.TransactionWithCategory{
		{Transaction: core.Transaction{ID: 2, CategoryID: 2, Amount: 1000, Note: "march", Date: core.NewDate(2024, 3, 10)}, Category: salary},
		{Transaction: core.Transaction{ID: 1, CategoryID: 1, Amount: 20, Note: "lunch", Date: core.NewDate(2024, 3, 9)}, Category: food},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)
	assert.Equal(t, []string{"ID", "Date", "Category", "Type", "Amount", "Note"}, rows[0])
	assert.Equal(t, []string{"2", "2024-03-10", "Salary", "Income", "1000", "march"}, rows[1])
	assert.Equal(t, []string{"1", "2024-03-09", "🍔 Food", "Expense", "20", "lunch"}, rows[2])

	balance, err := f.GetCellValue(SheetName, "E7")
	require.NoError(t, err)
	assert.Equal(t, "980", balance)
}

func TestWriteTransactionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, "ID", rows[0][0])
}
