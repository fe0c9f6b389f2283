package mockapi

import (
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, s.data.profile)
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p api.Profile
		if err := decodeBody(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "Geçersiz istek")
			return
		}
		s.mu.Lock()
		s.data.profile = p
		s.mu.Unlock()
		writeMessage(w, "Profil başarıyla güncellendi")
	}
}

func (s *Server) NotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, s.data.notifications)
	}
}

func (s *Server) UpdateNotificationsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var n api.NotificationSettings
		if err := decodeBody(r, &n); err != nil {
			writeError(w, http.StatusBadRequest, "Geçersiz istek")
			return
		}
		s.mu.Lock()
		s.data.notifications = n
		s.mu.Unlock()
		writeMessage(w, "Bildirim ayarları güncellendi")
	}
}

func (s *Server) DashboardSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, s.data.dashboard)
	}
}

func (s *Server) UpdateDashboardSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d api.DashboardSettings
		if err := decodeBody(r, &d); err != nil {
			writeError(w, http.StatusBadRequest, "Geçersiz istek")
			return
		}
		s.mu.Lock()
		s.data.dashboard = d
		s.mu.Unlock()
		writeMessage(w, "Dashboard ayarları güncellendi")
	}
}

func (s *Server) APIKeysHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeData(w, s.data.apiKeys)
	}
}

func (s *Server) CreateAPIKeyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "Anahtar adı gerekli")
			return
		}
		key := api.APIKey{
			ID:      utils.FlexString(uuid.New().String()),
			Name:    strings.TrimSpace(req.Name),
			Key:     "yk_live_" + strings.ReplaceAll(uuid.New().String(), "-", ""),
			Created: api.Time{Time: s.now()},
		}
		s.mu.Lock()
		s.data.apiKeys = append(s.data.apiKeys, key)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": key, "message": "API anahtarı oluşturuldu"})
	}
}

func (s *Server) DeleteAPIKeyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s.mu.Lock()
		defer s.mu.Unlock()
		i := slices.IndexFunc(s.data.apiKeys, func(k api.APIKey) bool { return k.ID.String() == id })
		if i < 0 {
			writeError(w, http.StatusNotFound, "API anahtarı bulunamadı")
			return
		}
		s.data.apiKeys = slices.Delete(s.data.apiKeys, i, i+1)
		writeMessage(w, "API anahtarı silindi")
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		}
		if err := decodeBody(r, &req); err != nil || req.NewPassword == "" {
			writeError(w, http.StatusBadRequest, "Yeni şifre gerekli")
			return
		}
		claims, ok := claimsFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Yetkilendirme gerekli")
			return
		}

		s.mu.Lock()
		acc, ok := s.accounts[claims.Username]
		s.mu.Unlock()
		if !ok || bcrypt.CompareHashAndPassword([]byte(acc.hash), []byte(req.CurrentPassword)) != nil {
			writeError(w, http.StatusBadRequest, "Mevcut şifre hatalı")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Sunucu hatası")
			return
		}
		s.mu.Lock()
		acc.hash = string(hash)
		s.mu.Unlock()
		writeMessage(w, "Şifre başarıyla değiştirildi")
	}
}
