package services

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// ChooseCategoryLabel is the placeholder entry of the category dropdown.
const ChooseCategoryLabel = "Choose a Category"

type TransactionService struct {
	store       storage.Store
	publisher   Publisher
	invalidator Invalidator
	calendar    Calendar
	logger      *log.Logger
}

// NewTransactionService wires the transaction use cases. publisher and
// invalidator may be nil.
func NewTransactionService(store storage.Store, publisher Publisher, invalidator Invalidator, calendar Calendar, logger *log.Logger) *TransactionService {
	return &TransactionService{
		store:       store,
		publisher:   publisher,
		invalidator: invalidator,
		calendar:    calendar,
		logger:      logger.WithComponent(log.ComponentTransaction),
	}
}

func (s *TransactionService) List(ctx context.Context) ([]core.TransactionWithCategory, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.TransactionWithCategory, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.TransactionWithCategory{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// Draft returns the blank transaction shown by the create form.
func (s *TransactionService) Draft() core.Transaction {
	return core.Transaction{Date: s.calendar.Today()}
}

// Today is the reference day used for date validation.
func (s *TransactionService) Today() core.Date {
	return s.calendar.Today()
}

// CategoryOptions lists the dropdown entries, placeholder first.
func (s *TransactionService) CategoryOptions(ctx context.Context) ([]core.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list category options: %w", err)
	}
	opts := make([]core.Category, 0, len(cats)+1)
	opts = append(opts, core.Category{ID: 0, Title: ChooseCategoryLabel})
	return append(opts, cats...), nil
}

// Save validates t against today and persists it. A successful save
// publishes a transaction.saved event.
func (s *TransactionService) Save(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Normalize()
	if err := t.Validate(s.calendar.Today()); err != nil {
		return t, err
	}

	if _, err := s.store.GetCategory(ctx, t.CategoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return t, unknownCategory()
		}
		return t, fmt.Errorf("check category %d: %w", t.CategoryID, err)
	}

	var err error
	op := log.OpUpdate
	if t.IsNew() {
		op = log.OpCreate
		t, err = s.store.CreateTransaction(ctx, t)
	} else {
		err = s.store.UpdateTransaction(ctx, t)
	}
	if errors.Is(err, storage.ErrInvalidReference) {
		return t, unknownCategory()
	}
	if err != nil {
		return t, fmt.Errorf("save transaction: %w", err)
	}

	invalidate(ctx, s.invalidator)
	s.logger.InfoContext(ctx, "Transaction saved",
		log.NewFields().WithOperation(op).WithTransaction(t.ID, t.CategoryID, t.Amount, t.Date.String()).ToSlice()...)
	publish(ctx, s.publisher, s.logger, amqp.NewLedgerEvent(amqp.TransactionSaved, t.ID))
	return t, nil
}

func unknownCategory() error {
	return core.NewFieldError(core.FieldCategory, core.MsgUnknownCategory, core.ErrUnknownCategory)
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	invalidate(ctx, s.invalidator)
	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldTransactionID, id)
	publish(ctx, s.publisher, s.logger, amqp.NewLedgerEvent(amqp.TransactionDeleted, id))
	return nil
}
