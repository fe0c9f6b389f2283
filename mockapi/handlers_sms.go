package mockapi

import (
	"math"
	"net/http"

	"github.com/yenikoza/tablet-dashboard/api"
)

func (s *Server) smsTotals() api.SMSAnalytics {
	var out api.SMSAnalytics
	for _, h := range s.data.smsHourly {
		out.TotalSent += h.Sent
		out.TotalSuccess += h.Success
	}
	out.TotalFailed = out.TotalSent - out.TotalSuccess
	if out.TotalSent > 0 {
		out.SuccessRate = math.Round(float64(out.TotalSuccess)/float64(out.TotalSent)*1000) / 10
	}
	out.AvgResponseTime = 2.3
	out.TimeoutRate = 3.2
	return out
}

func (s *Server) SMSAnalyticsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, s.smsTotals())
	}
}

func (s *Server) SMSDetailedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		logs := []api.LogEntry{}
		for _, l := range s.inScope(r.URL.Query().Get("scope")) {
			if l.Category == "SMS_APPROVAL" {
				logs = append(logs, l)
			}
		}
		writeJSON(w, http.StatusOK, api.SMSDetailed{Stats: s.smsTotals().SMSTotals, Logs: logs})
	}
}

func (s *Server) SMSHourlyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"hourly": s.data.smsHourly})
	}
}

func (s *Server) SMSApprovalTypesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"approvalTypes": s.data.smsApproval})
	}
}

func (s *Server) SMSErrorAnalysisHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"issues": s.data.smsIssues})
	}
}

func (s *Server) SMSSystemStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, api.SystemStatus{Status: "active", Uptime: s.data.smsUptime, LastCheck: api.Time{Time: s.now()}})
	}
}
