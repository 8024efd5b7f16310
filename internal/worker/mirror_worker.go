// Package worker consumes ledger events and mirrors transactions to an
// external spreadsheet.
package worker

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
	"expensetracker/internal/storage"
)

// MirrorWorker keeps a spreadsheet ledger in step with the transaction store.
type MirrorWorker struct {
	store  storage.TransactionRepository
	ledger sheets.LedgerWriter
	logger *log.Logger
}

func NewMirrorWorker(store storage.TransactionRepository, ledger sheets.LedgerWriter, logger *log.Logger) *MirrorWorker {
	return &MirrorWorker{
		store:  store,
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent applies one ledger event. Events always reload the current row
// from the store, so a stale or out of order event converges on the latest
// state instead of replaying old data.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	w.logger.DebugContext(ctx, "Processing ledger event",
		log.NewFields().WithEvent(event.ID, string(event.Kind)).ToSlice()...)

	switch event.Kind {
	case amqp.TransactionSaved:
		return w.mirror(ctx, event.TransactionID)
	case amqp.TransactionDeleted:
		return w.remove(ctx, event.TransactionID)
	case amqp.CategoryUpdated:
		return w.relabel(ctx, event.CategoryID)
	default:
		return fmt.Errorf("%w: unknown event kind %q", amqp.ErrDropMessage, event.Kind)
	}
}

func (w *MirrorWorker) mirror(ctx context.Context, id int64) error {
	t, err := w.store.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before the save event was processed.
		return w.remove(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", id, err)
	}

	ref, err := w.ledger.Upsert(ctx, sheets.RowFrom(t))
	if err != nil {
		return fmt.Errorf("mirror transaction %d: %w", id, err)
	}

	w.logger.InfoContext(ctx, "Mirrored transaction",
		append(log.NewFields().WithOperation(log.OpMirror).
			WithTransaction(t.ID, t.CategoryID, t.Amount, t.Date.String()).ToSlice(),
			"sheets_ref", ref)...)
	return nil
}

func (w *MirrorWorker) remove(ctx context.Context, id int64) error {
	if err := w.ledger.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove transaction %d from ledger: %w", id, err)
	}
	w.logger.InfoContext(ctx, "Removed transaction from ledger",
		log.FieldOperation, log.OpDelete, log.FieldTransactionID, id)
	return nil
}

// relabel rewrites the rows of one category after a rename or type change.
func (w *MirrorWorker) relabel(ctx context.Context, categoryID int64) error {
	all, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	var txs []core.TransactionWithCategory
	for _, t := range all {
		if t.CategoryID == categoryID {
			txs = append(txs, t)
		}
	}

	synced, err := w.upsertAll(ctx, txs)
	w.logger.InfoContext(ctx, "Relabelled category rows",
		log.FieldOperation, log.OpMirror, log.FieldCategoryID, categoryID, "synced", synced)
	return err
}

// Resync mirrors every stored transaction. It recovers from events lost
// while the worker was down and returns how many rows were written.
func (w *MirrorWorker) Resync(ctx context.Context) (int, error) {
	txs, err := w.store.ListTransactions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}

	synced, err := w.upsertAll(ctx, txs)
	w.logger.InfoContext(ctx, "Resync completed", "total", len(txs), "synced", synced)
	return synced, err
}

func (w *MirrorWorker) upsertAll(ctx context.Context, txs []core.TransactionWithCategory) (int, error) {
	synced, failed := 0, 0
	for _, t := range txs {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if _, err := w.ledger.Upsert(ctx, sheets.RowFrom(t)); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror transaction",
				log.FieldTransactionID, t.ID, log.FieldError, err.Error())
			failed++
			continue
		}
		synced++
	}
	if failed > 0 {
		return synced, fmt.Errorf("mirror: %d of %d transactions failed", failed, len(txs))
	}
	return synced, nil
}
