// Package http serves the server rendered UI and its JSON and export
// endpoints.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
	appweb "expensetracker/web"
)

// pages are rendered inside templates/layout.html.
var pages = []string{"dashboard", "categories", "category_form", "transactions", "transaction_form", "error"}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the application services behind the handlers.
type Deps struct {
	Categories   *services.CategoryService
	Transactions *services.TransactionService
	Dashboard    *services.DashboardService
	Store        Pinger
}

type Options struct {
	RateLimitPerMinute int
	// TrustedProxies are CIDRs, beyond private ranges, allowed to set X-Forwarded-For.
	TrustedProxies []string
}

type Server struct {
	http.Server
	deps      Deps
	templates map[string]*template.Template
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	started   time.Time

	shutdownOnce sync.Once
}

func NewServer(addr string, deps Deps, opts Options, logger *log.Logger) *Server {
	logger = logger.WithComponent(log.ComponentHTTP)
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		deps:     deps,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		detector: security.NewDetector(logger),
		started:  time.Now(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err.Error())
		}
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ClientIP)

	templates, err := loadTemplates(appweb.TemplatesFS)
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err.Error())
	}
	s.templates = templates

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err.Error())
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /dashboard/data", s.handleDashboardData)

	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("GET /categories/edit", s.handleEditCategory)
	mux.HandleFunc("POST /categories/edit", s.handleSaveCategory)
	mux.HandleFunc("POST /categories/delete/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("GET /transactions/edit", s.handleEditTransaction)
	mux.HandleFunc("POST /transactions/edit", s.handleSaveTransaction)
	mux.HandleFunc("POST /transactions/delete/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /transactions/export", s.handleExportTransactions)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ClientIP, s.onRateLimit)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	s.Handler = h

	return s
}

func loadTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, name := range pages {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(fsys,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return out, err
		}
		out[name] = t
	}
	return out, nil
}

var templateFuncs = template.FuncMap{
	"currency": core.FormatCurrency,
	"barHeight": func(v, max int64, px int) int {
		if max <= 0 || v <= 0 {
			return 0
		}
		h := int(v * int64(px) / max)
		if h < 1 {
			h = 1
		}
		return h
	},
	"seriesMax": func(series []core.DayTotal) int64 {
		var m int64
		for _, d := range series {
			m = max(m, d.Income, d.Expense)
		}
		return m
	},
	"add": func(a, b int) int { return a + b },
	"mul": func(a, b int) int { return a * b },
	"sub": func(a, b int) int { return a - b },
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
}

// Shutdown stops background goroutines and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
