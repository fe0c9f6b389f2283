package mockapi

import (
	"math"
	"net/http"
	"slices"

	"github.com/yenikoza/tablet-dashboard/api"
)

// inScope returns the log rows newer than the scope's window, newest first.
func (s *Server) inScope(scope string) []api.LogEntry {
	since := s.now().Add(-scopeWindow(scope))
	var out []api.LogEntry
	for _, l := range s.data.logs {
		if l.When().After(since) {
			out = append(out, l)
		}
	}
	slices.SortStableFunc(out, func(a, b api.LogEntry) int {
		return b.When().Compare(a.When().Time)
	})
	return out
}

func (s *Server) overviewStores(scope string) []api.OverviewStore {
	logs := s.inScope(scope)
	var out []api.OverviewStore
	for i, st := range s.data.statuses {
		tablets := s.data.tablets[st.StoreCode]
		online := 0
		for _, t := range tablets {
			if t.IsOnline {
				online++
			}
		}
		total, errs := 0, 0
		for _, l := range logs {
			if l.StoreCode != st.StoreCode {
				continue
			}
			total++
			if l.Level == "ERROR" {
				errs++
			}
		}
		out = append(out, api.OverviewStore{
			ID:            s.data.stores[i].ID,
			StoreCode:     st.StoreCode,
			StoreName:     st.StoreName,
			Status:        st.Status,
			OnlineTablets: online,
			TotalTablets:  len(tablets),
			TotalLogs:     total,
			ErrorCount:    errs,
			LastActivity:  st.LastActivity,
			TabletDetails: tablets,
		})
	}
	return out
}

func (s *Server) DashboardDataHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := r.URL.Query().Get("scope")

		s.mu.Lock()
		defer s.mu.Unlock()

		logs := s.inScope(scope)
		counters := api.OverviewCounters{TotalLogs: len(logs)}
		for _, l := range logs {
			switch l.Level {
			case "ERROR":
				counters.ErrorCount++
			case "INFO", "SUCCESS":
				counters.SuccessCount++
			}
			if l.Category == "CUSTOMER_CREATE" && l.Level != "ERROR" {
				counters.TodayCustomers++
			}
		}
		counters.TodayLogs = len(logs)
		if counters.TotalLogs > 0 {
			counters.SuccessRate = math.Round(float64(counters.SuccessCount)/float64(counters.TotalLogs)*1000) / 10
		}
		stores := s.overviewStores(scope)
		for _, st := range stores {
			counters.ActiveTablets += st.OnlineTablets
		}

		var trends []api.TrendPoint
		for _, d := range s.data.trend {
			trends = append(trends, api.TrendPoint{Date: d.Date, Total: d.Customers, Success: d.Success, Errors: d.Errors, ActiveTablets: counters.ActiveTablets})
		}
		writeJSON(w, http.StatusOK, map[string]any{"overview": counters, "stores": stores, "trends": trends})
	}
}

func (s *Server) AlertsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"alerts": s.data.alerts})
	}
}

func (s *Server) AlertReadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.data.alerts {
			if s.data.alerts[i].ID.String() == id {
				s.data.alerts[i].IsRead = true
				writeMessage(w, "Uyarı okundu olarak işaretlendi")
				return
			}
		}
		writeError(w, http.StatusNotFound, "Uyarı bulunamadı")
	}
}

func (s *Server) ActivitiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, s.data.activities)
	}
}

func (s *Server) DashboardStoreStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"stores": s.overviewStores(r.URL.Query().Get("scope"))})
	}
}

func (s *Server) MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"apiResponseTime": s.data.performance.APIResponseTime,
			"errorRate":       s.data.performance.ErrorRate,
			"uptime":          s.data.performance.Uptime,
			"stores":          len(s.data.stores),
		})
	}
}
