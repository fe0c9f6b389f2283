// Package mockapi is an in-process stand-in for the YeniKoza backends. It
// serves every endpoint family the dashboard client calls, seeded with the
// store network's sample data, and can be told to fail individual routes.
package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/internal/config"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/internal/utils"
	"github.com/yenikoza/tablet-dashboard/session"
	"github.com/yenikoza/tablet-dashboard/token"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultUsername = "admin"
	DefaultPassword = "umit5508"
)

// Config is the slice of the application config the mock backend reads.
type Config interface {
	config.CorsConfig
	GetEnv() string
	GetTokenSecret() string
	GetTokenTTL() time.Duration
}

var _ Config = config.New()

type account struct {
	user session.User
	hash string
}

type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	config Config
	issuer *token.Issuer
	now    func() time.Time
	cost   int

	mu       sync.Mutex
	accounts map[string]*account
	revoked  map[string]time.Time
	failing  map[string]int
	data     *dataset
}

type Option func(*Server)

// WithNowTime sets the clock the seeded timestamps are relative to.
func WithNowTime(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithPasswordCost sets the bcrypt cost used to hash account passwords.
func WithPasswordCost(cost int) Option {
	return func(s *Server) { s.cost = cost }
}

func New(cfg Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[mockapi New] config is required")
	}
	issuer, err := token.NewIssuer(cfg.GetTokenSecret(), cfg.GetTokenTTL())
	if err != nil {
		return nil, errors.Wrapf(err, "[mockapi New] failed to create token issuer")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		issuer:   issuer,
		now:      token.NowTimeFunc,
		cost:     bcrypt.DefaultCost,
		accounts: map[string]*account{},
		revoked:  map[string]time.Time{},
		failing:  map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.data = seed(s.now())

	admin := session.User{Username: DefaultUsername, Name: "Ümit Yılmaz", Role: "Administrator", Email: "admin@yenikoza.com.tr"}
	if err := s.AddAccount(admin, DefaultPassword); err != nil {
		return nil, errors.Wrapf(err, "[mockapi New] failed to seed admin account")
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// AddAccount registers an operator who can log in with password.
func (s *Server) AddAccount(user session.User, password string) error {
	if strings.TrimSpace(user.Username) == "" || password == "" {
		return errors.Wrapf(errors.ErrInternal, "[AddAccount] username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return errors.Wrapf(err, "[AddAccount] failed to hash password")
	}
	if user.ID == "" {
		user.ID = utils.FlexString(uuid.New().String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[user.Username] = &account{user: user, hash: string(hash)}
	return nil
}

// Fail makes the route registered under pattern (for example
// "GET /api/sms/stats") answer 500 until Recover is called for it.
func (s *Server) Fail(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[pattern]++
}

func (s *Server) Recover(pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failing, pattern)
}

// Routes lists every registered pattern.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, s.faultable(pattern, handler))
}

func (s *Server) faultable(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		failing := s.failing[pattern] > 0
		s.mu.Unlock()
		if failing {
			writeError(w, http.StatusInternalServerError, "Sunucu hatası")
			return
		}
		next(w, r)
	}
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func (s *Server) isRevoked(raw string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[raw]
	return ok
}

func (s *Server) revoke(raw string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for tok, until := range s.revoked {
		if until.Before(now) {
			delete(s.revoked, tok)
		}
	}
	s.revoked[raw] = exp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

// writeData answers with the {success, data} envelope.
func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": msg})
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrapf(err, "decode %s body", r.URL.Path)
	}
	return nil
}
