package mockapi

import (
	"encoding/csv"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/api"
)

func matchLog(l api.LogEntry, f api.LogFilter) bool {
	if f.Level != "" && !strings.EqualFold(l.Level, f.Level) {
		return false
	}
	if f.Category != "" && l.Category != f.Category {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hay := strings.ToLower(l.Message + " " + l.StoreCode + " " + l.StoreName)
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

func filterFromQuery(r *http.Request) api.LogFilter {
	q := r.URL.Query()
	return api.LogFilter{Level: q.Get("level"), Category: q.Get("category"), Search: q.Get("search"), Scope: q.Get("scope")}
}

func (s *Server) filteredLogs(f api.LogFilter) []api.LogEntry {
	var out []api.LogEntry
	for _, l := range s.inScope(f.Scope) {
		if matchLog(l, f) {
			out = append(out, l)
		}
	}
	return out
}

func (s *Server) LogsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		logs := s.filteredLogs(filterFromQuery(r))
		if logs == nil {
			logs = []api.LogEntry{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"logs": logs, "total": len(logs)})
	}
}

func (s *Server) LogHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, l := range s.data.logs {
			if l.ID.String() == id {
				writeJSON(w, http.StatusOK, l)
				return
			}
		}
		writeError(w, http.StatusNotFound, "Log bulunamadı")
	}
}

func (s *Server) LogStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		var stats api.LogStats
		for _, l := range s.inScope(r.URL.Query().Get("scope")) {
			stats.Total++
			switch strings.ToUpper(l.Level) {
			case "ERROR":
				stats.Error++
			case "WARNING", "WARN":
				stats.Warning++
			case "INFO":
				stats.Info++
			case "SUCCESS":
				stats.Success++
			}
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func (s *Server) LogCategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		var categories []string
		for _, l := range s.data.logs {
			if l.Category != "" && !slices.Contains(categories, l.Category) {
				categories = append(categories, l.Category)
			}
		}
		slices.Sort(categories)
		writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
	}
}

func (s *Server) LogExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		logs := s.filteredLogs(filterFromQuery(r))
		s.mu.Unlock()

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="error_logs.csv"`)
		cw := csv.NewWriter(w)
		cw.Write([]string{"id", "timestamp", "level", "category", "storeCode", "storeName", "message"})
		for _, l := range logs {
			cw.Write([]string{l.ID.String(), l.When().Format(time.RFC3339), l.Level, l.Category, l.StoreCode, l.StoreName, l.Message})
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			log.Err(err).Msg("[LogExportHandler] failed to write csv")
		}
	}
}

func (s *Server) RejectionReasonsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		var reasons []api.RejectionReason
		for _, l := range s.inScope(r.URL.Query().Get("scope")) {
			if l.Level != "ERROR" || !strings.HasPrefix(l.Category, "CUSTOMER") {
				continue
			}
			i := slices.IndexFunc(reasons, func(rr api.RejectionReason) bool { return rr.ReasonMapping == l.Message })
			if i < 0 {
				reasons = append(reasons, api.RejectionReason{
					RejectionCode: "R" + strconv.Itoa(len(reasons)+1),
					ReasonMapping: l.Message,
					Details:       l.Category,
				})
				i = len(reasons) - 1
			}
			reasons[i].Count++
		}
		slices.SortStableFunc(reasons, func(a, b api.RejectionReason) int { return b.Count - a.Count })
		writeJSON(w, http.StatusOK, map[string]any{"reasons": reasons})
	}
}

func (s *Server) CustomerAnalyticsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		byStore := map[string]*api.CustomerStoreStat{}
		var order []string
		for _, l := range s.inScope(r.URL.Query().Get("scope")) {
			if l.Category != "CUSTOMER_CREATE" || !l.HasStore() {
				continue
			}
			st, ok := byStore[l.StoreCode]
			if !ok {
				st = &api.CustomerStoreStat{StoreCode: l.StoreCode, StoreName: l.StoreName}
				byStore[l.StoreCode] = st
				order = append(order, l.StoreCode)
			}
			st.TotalAttempts++
			if l.Level == "ERROR" {
				st.FailedRegistrations++
			} else {
				st.SuccessfulRegistrations++
			}
		}
		stats := []api.CustomerStoreStat{}
		for _, code := range order {
			st := byStore[code]
			st.SuccessRate = float64(st.SuccessfulRegistrations) / float64(st.TotalAttempts) * 100
			stats = append(stats, *st)
		}
		writeJSON(w, http.StatusOK, api.CustomerAnalytics{StoreStats: stats})
	}
}
