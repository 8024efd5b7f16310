package cache

import (
	"context"
	"time"

	"expensetracker/internal/log"
)

// Cache defines a generic cache interface. Implementations treat backend
// failures as misses; a cache is never the source of truth.
type Cache[T any] interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) (T, bool)

	// Set stores a value in the cache
	Set(ctx context.Context, key string, data T)

	// Delete removes a key from the cache
	Delete(ctx context.Context, key string)

	// Clear drops every entry
	Clear(ctx context.Context)
}

// Nop is a cache that never stores anything.
type Nop[T any] struct{}

func (Nop[T]) Get(context.Context, string) (T, bool) {
	var zero T
	return zero, false
}

func (Nop[T]) Set(context.Context, string, T) {}
func (Nop[T]) Delete(context.Context, string) {}
func (Nop[T]) Clear(context.Context)          {}

// Manager handles cache lifecycle and cleanup
type Manager struct {
	caches      []Cleaner
	logger      *log.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// NewManager creates a new cache manager
func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		logger:      logger.WithComponent(log.ComponentCache),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			totalCleaned := 0
			for _, cache := range m.caches {
				totalCleaned += cache.CleanExpired()
			}
			if totalCleaned > 0 {
				m.logger.Debug("Expired cache entries removed", "count", totalCleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop stops the cleanup routine. It must only be called after StartCleanup.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
