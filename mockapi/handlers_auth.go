package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentialsMessage = "Geçersiz kullanıcı adı veya şifre"

func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": s.now().Format(time.RFC3339)})
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Geçersiz istek")
			return
		}
		if strings.TrimSpace(req.Username) == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Kullanıcı adı ve şifre gerekli")
			return
		}

		s.mu.Lock()
		acc, ok := s.accounts[req.Username]
		s.mu.Unlock()
		if !ok || bcrypt.CompareHashAndPassword([]byte(acc.hash), []byte(req.Password)) != nil {
			log.Info().Str("username", req.Username).Msg("mock login rejected")
			writeError(w, http.StatusUnauthorized, invalidCredentialsMessage)
			return
		}

		tok, exp, err := s.issuer.Issue(acc.user.ID.String(), acc.user.Username, acc.user.Role)
		if err != nil {
			log.Err(err).Msg("[LoginHandler] failed to issue token")
			writeError(w, http.StatusInternalServerError, "Sunucu hatası")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"token":     tok,
			"user":      acc.user,
			"expiresAt": exp.Format(time.RFC3339),
		})
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Yetkilendirme gerekli")
			return
		}
		s.mu.Lock()
		acc, ok := s.accounts[claims.Username]
		s.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "Kullanıcı bulunamadı")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": acc.user})
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, _ := bearerToken(r)
		if claims, ok := claimsFrom(r.Context()); ok {
			s.revoke(raw, claims.ExpiresAt)
		}
		writeMessage(w, "Çıkış yapıldı")
	}
}
