package mockapi

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/api"
)

func (s *Server) DailyTrendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		trend := s.data.trend
		if days, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && days > 0 && days < len(trend) {
			trend = trend[len(trend)-days:]
		}
		writeJSON(w, http.StatusOK, map[string]any{"trend": trend})
	}
}

func (s *Server) PerformanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, s.data.performance)
	}
}

func (s *Server) SystemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		online := 0
		for _, st := range s.data.statuses {
			if st.IsActive {
				online++
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"uptime":       s.data.performance.Uptime,
			"storesOnline": online,
			"storesTotal":  len(s.data.statuses),
			"lastCheck":    s.now().Format(time.RFC3339),
		})
	}
}

func (s *Server) EfficiencyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"score": s.data.efficiency})
	}
}

func (s *Server) StoreSharesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		var shares []api.StoreShare
		for _, st := range s.data.statuses {
			shares = append(shares, api.StoreShare{Name: st.StoreName, StoreCode: st.StoreCode, Value: float64(st.TodayCustomers)})
		}
		writeJSON(w, http.StatusOK, map[string]any{"stores": shares})
	}
}

func (s *Server) AnalyticsExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if format := r.URL.Query().Get("format"); format != "" && format != "csv" {
			writeError(w, http.StatusBadRequest, "Desteklenmeyen format")
			return
		}
		s.mu.Lock()
		trend := append([]api.TrendDay(nil), s.data.trend...)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="analytics.csv"`)
		cw := csv.NewWriter(w)
		cw.Write([]string{"date", "customers", "success", "errors"})
		for _, d := range trend {
			cw.Write([]string{d.Date, strconv.Itoa(d.Customers), strconv.Itoa(d.Success), strconv.Itoa(d.Errors)})
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			log.Err(err).Msg("[AnalyticsExportHandler] failed to write csv")
		}
	}
}
