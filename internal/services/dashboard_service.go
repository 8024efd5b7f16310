package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
)

// MsgDashboardUnavailable is shown when the dashboard reads fail.
const MsgDashboardUnavailable = "Unable to load dashboard data. Please try again later."

const dashboardTimeout = 7 * time.Second

// Dashboard is the read model behind the dashboard page and its JSON feed.
type Dashboard struct {
	Summary core.Summary                   `json:"summary"`
	Recent  []core.TransactionWithCategory `json:"recent"`
	// Notice is set when the data could not be loaded and the zero view is shown.
	Notice string `json:"notice,omitempty"`
}

func (d Dashboard) Degraded() bool { return d.Notice != "" }

type DashboardService struct {
	repo     storage.TransactionRepository
	cache    cache.Cache[Dashboard]
	calendar Calendar
	logger   *log.Logger

	// mu orders cache fills against Clear. generation counts Clear calls.
	mu         sync.Mutex
	generation uint64
}

func NewDashboardService(repo storage.TransactionRepository, c cache.Cache[Dashboard], calendar Calendar, logger *log.Logger) *DashboardService {
	if c == nil {
		c = cache.Nop[Dashboard]{}
	}
	return &DashboardService{
		repo:     repo,
		cache:    c,
		calendar: calendar,
		logger:   logger.WithComponent(log.ComponentDashboard),
	}
}

// Clear drops cached dashboards. The category and transaction services call
// it after every write. Loads that started before Clear do not fill the cache.
func (s *DashboardService) Clear(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	s.mu.Unlock()
	s.cache.Clear(ctx)
}

func (s *DashboardService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// fill caches d unless a Clear happened since gen was taken.
func (s *DashboardService) fill(ctx context.Context, key string, gen uint64, d Dashboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		s.logger.DebugContext(ctx, "Skipping stale dashboard cache fill", log.FieldDate, key)
		return
	}
	s.cache.Set(ctx, key, d)
}

// Load aggregates the last seven days and the recent activity feed. It never
// fails: read errors are logged and a zeroed dashboard carrying Notice is
// returned instead.
func (s *DashboardService) Load(ctx context.Context) Dashboard {
	today := s.calendar.Today()
	key := today.String()
	gen := s.currentGeneration()
	if d, ok := s.cache.Get(ctx, key); ok {
		return d
	}

	w := core.WindowEnding(today)
	ctx, cancel := context.WithTimeout(ctx, dashboardTimeout)
	defer cancel()

	var windowTxs, recent []core.TransactionWithCategory
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		windowTxs, err = s.repo.TransactionsBetween(gctx, w.Start, w.End)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.repo.RecentTransactions(gctx, core.RecentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load dashboard",
			log.FieldOperation, log.OpAggregate,
			log.FieldWindowStart, w.Start.String(),
			log.FieldWindowEnd, w.End.String(),
			log.FieldError, err.Error())
		return Dashboard{
			Summary: core.EmptySummary(w),
			Recent:  []core.TransactionWithCategory{},
			Notice:  MsgDashboardUnavailable,
		}
	}

	if recent == nil {
		recent = []core.TransactionWithCategory{}
	}
	d := Dashboard{Summary: core.Summarize(w, windowTxs), Recent: recent}
	s.fill(ctx, key, gen, d)
	return d
}
