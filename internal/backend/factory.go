package backend

import (
	"context"
	"fmt"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cache"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/memory"
	"expensetracker/internal/storage/postgres"
)

const (
	dashboardCacheSize   = 32
	cacheCleanupInterval = time.Minute
	dashboardCachePrefix = "expensetracker:dashboard:"
	amqpConnectAttempts  = 3
)

type Factory struct {
	logger *log.Logger
}

func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// OpenStore opens the transaction store selected by cfg.Type, running
// migrations first for the SQL backends.
func (f *Factory) OpenStore(cfg Config) (storage.Store, error) {
	switch cfg.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case PostgresBackend:
		repo, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres repository: %w", err)
		}
		f.logger.Info("Initialized postgres backend")
		return repo, nil
	case MemoryBackend:
		f.logger.Warn("Using in-memory backend, data is lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

// DashboardCache builds the dashboard read model cache. A Redis cache that
// cannot be reached degrades to the in-process cache.
func (f *Factory) DashboardCache(ctx context.Context, cfg Config) (cache.Cache[services.Dashboard], CleanupFunc) {
	noop := func() error { return nil }

	switch cfg.Cache {
	case NoCache:
		return cache.Nop[services.Dashboard]{}, noop
	case RedisCache:
		client, err := cache.NewRedisClient(ctx, cfg.RedisAddr)
		if err == nil {
			f.logger.Info("Initialized Redis dashboard cache", "addr", cfg.RedisAddr)
			return cache.NewRedisCache[services.Dashboard](client, dashboardCachePrefix, cfg.CacheTTL, f.logger), client.Close
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory cache", log.FieldError, err.Error())
	}

	lru := cache.NewLRUCache[services.Dashboard](dashboardCacheSize, cfg.CacheTTL)
	manager := cache.NewManager(f.logger)
	manager.Register(lru)
	manager.StartCleanup(cacheCleanupInterval)
	return lru, func() error {
		manager.Stop()
		return nil
	}
}

// Publisher connects to the broker when cfg.AMQPURL is set. Connection
// failures are logged and yield a nil client: the app keeps working without
// change events.
func (f *Factory) Publisher(ctx context.Context, cfg Config) *amqp.Client {
	if cfg.AMQPURL == "" {
		return nil
	}
	client, err := amqp.ConnectWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpConnectAttempts, f.logger)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err.Error())
		return nil
	}
	f.logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client
}

// Build wires store, cache, publisher and services.
func (f *Factory) Build(ctx context.Context, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var done cleanups
	store, err := f.OpenStore(cfg)
	if err != nil {
		return nil, err
	}
	done.add(store.Close)

	dashCache, closeCache := f.DashboardCache(ctx, cfg)
	done.add(closeCache)

	calendar := services.SystemCalendar(cfg.Location)
	dashboard := services.NewDashboardService(store, dashCache, calendar, f.logger)

	app := &App{
		Store:     store,
		Dashboard: dashboard,
	}

	var publisher services.Publisher
	if client := f.Publisher(ctx, cfg); client != nil {
		app.Publisher = client
		publisher = client
		done.add(client.Close)
	}
	app.Categories = services.NewCategoryService(store, publisher, dashboard, f.logger)
	app.Transactions = services.NewTransactionService(store, publisher, dashboard, calendar, f.logger)
	app.Cleanup = done.run
	return app, nil
}
