package http

import (
	"net/http"
	"strconv"

	"contas/internal/core"
	"contas/internal/metrics"
)

// queryPeriod reads the period parameter, defaulting to monthly. The bool is
// false when the value is present but not a known period.
func queryPeriod(r *http.Request) (metrics.Period, bool) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		return metrics.PeriodMonthly, true
	}
	p := metrics.Period(raw)
	return p, p.Valid()
}

// cachedReport serves the report from the cache when present, otherwise
// computes it over a fresh snapshot and stores it. Keys carry every query
// parameter that changes the result; the container's change notifier flushes
// the whole cache on any mutation.
func (s *Server) cachedReport(w http.ResponseWriter, key string, compute func() any) {
	if v, ok := s.reports.Get(key); ok {
		writeJSON(w, http.StatusOK, v)
		return
	}
	v := compute()
	s.reports.SetDefault(key, v)
	writeJSON(w, http.StatusOK, v)
}

type dashboardResponse struct {
	Summary metrics.Summary    `json:"summary"`
	Effort  metrics.EffortRate `json:"effort"`
	Alerts  []metrics.Alert    `json:"alerts"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := queryPeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}
	s.cachedReport(w, "dashboard:"+string(p), func() any {
		snap := s.container.Snapshot()
		now := s.now()
		alerts := metrics.ComputeAlerts(snap, now)
		if alerts == nil {
			alerts = []metrics.Alert{}
		}
		return dashboardResponse{
			Summary: metrics.ComputeSummary(snap, p, now),
			Effort:  metrics.ComputeEffortRate(snap),
			Alerts:  alerts,
		}
	})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	p, ok := queryPeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}
	s.cachedReport(w, "breakdown:"+string(p), func() any {
		snap := s.container.Snapshot()
		out := metrics.CategoryBreakdown(snap.Transactions, p, s.now())
		if out == nil {
			out = []metrics.CategoryAmount{}
		}
		return out
	})
}

func (s *Server) handleDrilldown(w http.ResponseWriter, r *http.Request) {
	p, ok := queryPeriod(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid period")
		return
	}
	category := core.Category(r.URL.Query().Get("category"))
	if !core.ValidCategory(category) {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}
	s.cachedReport(w, "drilldown:"+string(p)+":"+string(category), func() any {
		snap := s.container.Snapshot()
		out := metrics.Drilldown(snap.Transactions, category, p, s.now())
		if out == nil {
			out = []metrics.DrilldownEntry{}
		}
		return out
	})
}

func (s *Server) handleTaxReport(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, "tax", func() any {
		snap := s.container.Snapshot()
		return metrics.EstimateDeductions(snap.Transactions, s.now())
	})
}

func (s *Server) handleEffortRate(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, "effort", func() any {
		return metrics.ComputeEffortRate(s.container.Snapshot())
	})
}

const (
	defaultTrendMonths = 6
	maxTrendMonths     = 36
)

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	months := defaultTrendMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxTrendMonths {
			writeError(w, http.StatusBadRequest, "months must be between 1 and 36")
			return
		}
		months = n
	}
	s.cachedReport(w, "trend:"+strconv.Itoa(months), func() any {
		snap := s.container.Snapshot()
		return metrics.MonthlyTrend(snap.Transactions, months, s.now())
	})
}

func (s *Server) handleMemberProfiles(w http.ResponseWriter, r *http.Request) {
	s.cachedReport(w, "members", func() any {
		out := metrics.MemberProfiles(s.container.Snapshot(), s.now())
		if out == nil {
			out = []metrics.MemberProfile{}
		}
		return out
	})
}
