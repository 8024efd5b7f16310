package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
	sheetsmem "expensetracker/internal/sheets/memory"
	"expensetracker/internal/storage/memory"
)

func seed(t *testing.T, store *memory.Store) core.Transaction {
	t.Helper()
	ctx := context.Background()
	cat, err := store.CreateCategory(ctx, core.Category{Title: "Food", Icon: "🍔", Type: core.Expense})
	require.NoError(t, err)
	tx, err := store.CreateTransaction(ctx, core.Transaction{CategoryID: cat.ID, Amount: 20, Note: "lunch", Date: core.NewDate(2024, 3, 10)})
	require.NoError(t, err)
	return tx
}

func TestMirrorWorker_HandleEvent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ledger := sheetsmem.New()
	w := NewMirrorWorker(store, ledger, log.Discard())
	tx := seed(t, store)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.TransactionSaved, tx.ID)))
	rows := ledger.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "🍔 Food", rows[0].Category)
	assert.Equal(t, int64(20), rows[0].Amount)

	tx.Amount = 35
	require.NoError(t, store.UpdateTransaction(ctx, tx))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.TransactionSaved, tx.ID)))
	rows = ledger.Rows()
	require.Len(t, rows, 1, "upsert replaces the existing row")
	assert.Equal(t, int64(35), rows[0].Amount)

	require.NoError(t, store.DeleteTransaction(ctx, tx.ID))
	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.TransactionDeleted, tx.ID)))
	assert.Empty(t, ledger.Rows())
}

func TestMirrorWorker_SaveAfterDeleteRemovesRow(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ledger := sheetsmem.New()
	w := NewMirrorWorker(store, ledger, log.Discard())
	tx := seed(t, store)

	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.TransactionSaved, tx.ID)))
	require.NoError(t, store.DeleteTransaction(ctx, tx.ID))

	require.NoError(t, w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.TransactionSaved, tx.ID)))
	assert.Empty(t, ledger.Rows())
}

func TestMirrorWorker_UnknownKindIsDropped(t *testing.T) {
	w := NewMirrorWorker(memory.New(), sheetsmem.New(), log.Discard())

	err := w.HandleEvent(context.Background(), &amqp.LedgerEvent{ID: "x", Kind: "transaction.exploded", TransactionID: 1})
	assert.ErrorIs(t, err, amqp.ErrDropMessage)
}

type brokenLedger struct{}

func (brokenLedger) Upsert(context.Context, sheets.LedgerRow) (string, error) {
	return "", errors.New("quota exceeded")
}

func (brokenLedger) Remove(context.Context, int64) error { return nil }

func TestMirrorWorker_Resync(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store)

	ledger := sheetsmem.New()
	n, err := NewMirrorWorker(store, ledger, log.Discard()).Resync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, ledger.Rows(), 1)

	n, err = NewMirrorWorker(store, brokenLedger{}, log.Discard()).Resync(ctx)
	assert.Error(t, err)
	assert.Zero(t, n)
}

func TestMirrorWorker_CategoryUpdatedRelabelsRows(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ledger := sheetsmem.New()
	w := NewMirrorWorker(store, ledger, log.Discard())

	tx := seed(t, store)
	rent, err := store.CreateCategory(ctx, core.Category{Title: "Rent", Type: core.Expense})
	require.NoError(t, err)
	other, err := store.CreateTransaction(ctx, core.Transaction{CategoryID: rent.ID, Amount: 900, Date: core.NewDate(2024, 3, 1)})
	require.NoError(t, err)
	_, err = w.Resync(ctx)
	require.NoError(t, err)

	food, err := store.GetCategory(ctx, tx.CategoryID)
	require.NoError(t, err)
	food.Title = "Groceries"
	food.Type = core.Income
	require.NoError(t, store.UpdateCategory(ctx, food))
	rent.Title = "Housing"
	require.NoError(t, store.UpdateCategory(ctx, rent))

	require.NoError(t, w.HandleEvent(ctx, amqp.NewCategoryEvent(amqp.CategoryUpdated, food.ID)))

	byID := map[int64]sheets.LedgerRow{}
	for _, row := range ledger.Rows() {
		byID[row.TransactionID] = row
	}
	require.Len(t, byID, 2)
	assert.Equal(t, "🍔 Groceries", byID[tx.ID].Category)
	assert.Equal(t, core.Income, byID[tx.ID].Type)
	assert.Equal(t, "Rent", byID[other.ID].Category, "other categories wait for their own event")
}
