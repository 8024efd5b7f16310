// Package storage defines the persistence ports and the default SQLite
// implementation. Alternative stores live in the postgres and memory
// subpackages and satisfy the same Store interface.
package storage

import (
	"context"
	"errors"

	"expensetracker/internal/core"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInUse is returned when deleting a row still referenced by others.
	ErrInUse = errors.New("record is referenced")
	// ErrInvalidReference is returned when a write references a missing row.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// CategoryRepository persists categories. Lists are ordered by type then title.
type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]core.Category, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	// FindCategoryByTitle matches title case-insensitively.
	FindCategoryByTitle(ctx context.Context, title string) (core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	CategoryHasTransactions(ctx context.Context, id int64) (bool, error)
}

// TransactionRepository persists transactions. Reads return each transaction
// joined with its category, ordered by date then id, newest first.
type TransactionRepository interface {
	ListTransactions(ctx context.Context) ([]core.TransactionWithCategory, error)
	GetTransaction(ctx context.Context, id int64) (core.TransactionWithCategory, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	// TransactionsBetween returns transactions dated within [from, to].
	TransactionsBetween(ctx context.Context, from, to core.Date) ([]core.TransactionWithCategory, error)
	RecentTransactions(ctx context.Context, limit int) ([]core.TransactionWithCategory, error)
}

// Store is a complete persistence backend.
type Store interface {
	CategoryRepository
	TransactionRepository
	Ping(ctx context.Context) error
	Close() error
}
