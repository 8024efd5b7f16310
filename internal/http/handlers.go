package http

import (
	"context"
	"net/http"
	"time"

	"expensetracker/internal/log"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// handleHealth is the liveness probe. It also reports the middleware counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"requests": map[string]int64{
			"total":         m.TotalRequests,
			"server_errors": m.ServerErrors,
			"rate_limited":  s.limiter.Hits(),
			"suspicious":    s.detector.Suspicious(),
		},
		"tracked_clients": s.limiter.ActiveClients(),
	})
}

// handleReady checks templates and the store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]string{"templates": "ok", "store": "ok"}

	if len(s.templates) != len(pages) {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	if s.deps.Store != nil {
		if err := s.deps.Store.Ping(ctx); err != nil {
			log.FromContext(ctx).WithComponent(log.ComponentStorage).WarnContext(ctx, "Readiness check failed",
				log.FieldError, err.Error())
			checks["store"] = "failed"
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, map[string]any{"status": status, "checks": checks})
}
