package http

import (
	"net/http"

	"expensetracker/internal/services"
)

// dashboardView adds chart geometry to the dashboard read model.
type dashboardView struct {
	services.Dashboard
	ChartHeight int
}

// handleDashboard always renders: a failed load shows zeroed totals and a
// notice with status 200.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := s.deps.Dashboard.Load(r.Context())

	var flash *Flash
	if d.Degraded() {
		flash = &Flash{Kind: FlashError, Message: d.Notice}
	}
	s.render(w, r, http.StatusOK, "dashboard", page{
		Title:  "Dashboard",
		Active: "dashboard",
		Flash:  flash,
		Data:   dashboardView{Dashboard: d, ChartHeight: 160},
	})
}

// handleDashboardData serves the same aggregation as JSON for charts.
func (s *Server) handleDashboardData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, s.deps.Dashboard.Load(r.Context()))
}
