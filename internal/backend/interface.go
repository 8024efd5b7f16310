// Package backend assembles the storage, cache, message bus and ledger
// implementations selected by configuration.
package backend

import (
	"errors"

	"expensetracker/internal/amqp"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
)

// CleanupFunc releases resources acquired while building a backend.
type CleanupFunc func() error

// App is the wired application used by the HTTP server and the admin CLI.
type App struct {
	Store        storage.Store
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService
	// Publisher is nil when change events are disabled.
	Publisher *amqp.Client
	Cleanup   CleanupFunc
}

// BackendType selects the transaction store.
type BackendType string

const (
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
	MemoryBackend   BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, PostgresBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CacheType selects the dashboard cache.
type CacheType string

const (
	MemoryCache CacheType = "memory"
	RedisCache  CacheType = "redis"
	NoCache     CacheType = "none"
)

// cleanups runs registered functions in reverse order and joins their errors.
type cleanups []CleanupFunc

func (c *cleanups) add(fn CleanupFunc) {
	*c = append(*c, fn)
}

func (c cleanups) run() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
