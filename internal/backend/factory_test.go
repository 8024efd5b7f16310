package backend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/cache"
	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/services"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite needs path", Config{Type: SQLiteBackend}, true},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"postgres needs url", Config{Type: PostgresBackend}, true},
		{"unknown backend", Config{Type: "mongo"}, true},
		{"redis needs addr", Config{Type: MemoryBackend, Cache: RedisCache}, true},
		{"unknown cache", Config{Type: MemoryBackend, Cache: "disk"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "data/test.db",
		CacheBackend: "none",
		CacheTTL:     time.Minute,
		Timezone:     "UTC",
	})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, NoCache, cfg.Cache)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestFactoryBuild(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(log.Discard())

	app, err := f.Build(ctx, Config{Type: MemoryBackend, Cache: MemoryCache, CacheTTL: time.Minute, Location: time.UTC})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Cleanup()) })

	assert.Nil(t, app.Publisher)
	require.NoError(t, app.Store.Ping(ctx))

	c, err := app.Categories.Save(ctx, core.Category{Title: "Food", Type: core.Expense})
	require.NoError(t, err)
	_, err = app.Transactions.Save(ctx, core.Transaction{CategoryID: c.ID, Amount: 12, Date: core.Today(time.Now(), time.UTC)})
	require.NoError(t, err)

	d := app.Dashboard.Load(ctx)
	assert.False(t, d.Degraded())
	assert.Equal(t, int64(12), d.Summary.TotalExpense)
}

func TestFactoryDashboardCache(t *testing.T) {
	f := NewFactory(log.Discard())

	c, cleanup := f.DashboardCache(context.Background(), Config{Cache: NoCache})
	assert.IsType(t, cache.Nop[services.Dashboard]{}, c)
	assert.NoError(t, cleanup())

	// An unreachable Redis falls back to the in-process cache.
	c, cleanup = f.DashboardCache(context.Background(), Config{Cache: RedisCache, RedisAddr: "127.0.0.1:1", CacheTTL: time.Minute})
	assert.IsType(t, &cache.LRUCache[services.Dashboard]{}, c)
	assert.NoError(t, cleanup())
}
