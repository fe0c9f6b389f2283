package mockapi

import (
	"net/http"
	"slices"

	"github.com/yenikoza/tablet-dashboard/api"
)

var storeStatuses = []string{"active", "warning", "error", "offline", "maintenance"}

func (s *Server) StoresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"stores": s.data.stores})
	}
}

func (s *Server) StoreStatusesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, http.StatusOK, s.data.statuses)
	}
}

func (s *Server) StoreSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		summary := map[string]int{"total": len(s.data.statuses)}
		for _, st := range s.data.statuses {
			switch {
			case st.Status == "warning":
				summary["warning"]++
			case st.IsActive && st.Status == "active":
				summary["active"]++
			default:
				summary["offline"]++
			}
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func (s *Server) storeIndex(id string) int {
	return slices.IndexFunc(s.data.stores, func(st api.Store) bool {
		return st.ID.String() == id || st.Code == id
	})
}

func (s *Server) StoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.storeIndex(r.PathValue("id"))
		if i < 0 {
			writeError(w, http.StatusNotFound, "Mağaza bulunamadı")
			return
		}
		writeJSON(w, http.StatusOK, s.data.stores[i])
	}
}

func (s *Server) StoreUpdateStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Status string `json:"status"`
		}
		if err := decodeBody(r, &req); err != nil || !slices.Contains(storeStatuses, req.Status) {
			writeError(w, http.StatusBadRequest, "Geçersiz durum")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		i := s.storeIndex(r.PathValue("id"))
		if i < 0 {
			writeError(w, http.StatusNotFound, "Mağaza bulunamadı")
			return
		}
		s.data.stores[i].Status = req.Status
		s.data.statuses[i].Status = req.Status
		s.data.statuses[i].IsActive = req.Status == "active" || req.Status == "warning"
		writeMessage(w, "Mağaza durumu güncellendi")
	}
}
