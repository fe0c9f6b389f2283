package session

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/internal/utils"
	"github.com/yenikoza/tablet-dashboard/token"
)

// Durable storage keys.
const (
	TokenKey  = "authToken"
	UserKey   = "dashboardUser"
	ExpiryKey = "tokenExpiresAt"
)

// User is the dashboard operator's profile as returned by the identity backend.
type User struct {
	ID       utils.FlexString `json:"id"`
	Username string           `json:"username"`
	Name     string           `json:"name,omitempty"`
	Role     string           `json:"role,omitempty"`
	Email    string           `json:"email,omitempty"`
}

// DisplayName is the name shown in the header, falling back to the username.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Username
}

// Session is an authenticated operator: token, profile and the token's expiry.
type Session struct {
	Token     string
	User      User
	ExpiresAt time.Time
	LoginTime time.Time
}

// Storage is a durable string key/value store.
type Storage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Store persists the session across restarts. It is the only shared mutable
// resource of the client and is written only by login and clear.
type Store struct {
	storage Storage
	now     func() time.Time
}

type Option func(*Store)

// WithNowTime overrides the clock used for token validity checks.
func WithNowTime(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(storage Storage, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewStore] storage is required")
	}
	s := &Store{storage: storage, now: token.NowTimeFunc}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save replaces any stored session with sess. If any write fails the stored
// session is cleared, so a reader never pairs the new token with an old user.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return errors.Wrapf(errors.ErrEmptyToken, "[Save]")
	}

	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return errors.Wrapf(err, "[Save] marshal user")
	}

	if err := s.write(ctx, sess, string(userJSON)); err != nil {
		if clearErr := s.Clear(ctx); clearErr != nil {
			log.Warn().Err(clearErr).Msg("clearing half-written session failed")
		}
		return err
	}
	return nil
}

// write stores the three keys in order; a failure leaves earlier keys written.
func (s *Store) write(ctx context.Context, sess *Session, userJSON string) error {
	if err := s.storage.Set(ctx, TokenKey, sess.Token); err != nil {
		return errors.Wrapf(err, "[Save] token")
	}
	if err := s.storage.Set(ctx, UserKey, userJSON); err != nil {
		return errors.Wrapf(err, "[Save] user")
	}

	if sess.ExpiresAt.IsZero() {
		if err := s.storage.Remove(ctx, ExpiryKey); err != nil {
			return errors.Wrapf(err, "[Save] expiry")
		}
		return nil
	}
	if err := s.storage.Set(ctx, ExpiryKey, sess.ExpiresAt.UTC().Format(time.RFC3339)); err != nil {
		return errors.Wrapf(err, "[Save] expiry")
	}
	return nil
}

// LoadToken returns the stored token. Storage failures read as absent.
func (s *Store) LoadToken(ctx context.Context) (string, bool) {
	raw, ok, err := s.storage.Get(ctx, TokenKey)
	if err != nil {
		log.Warn().Err(err).Str("key", TokenKey).Msg("session storage read failed")
		return "", false
	}
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// LoadUser returns the stored profile; unparsable data reads as absent.
func (s *Store) LoadUser(ctx context.Context) (*User, bool) {
	raw, ok, err := s.storage.Get(ctx, UserKey)
	if err != nil {
		log.Warn().Err(err).Str("key", UserKey).Msg("session storage read failed")
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		log.Debug().Err(err).Msg("stored user is not valid json")
		return nil, false
	}
	return &u, true
}

func (s *Store) LoadExpiry(ctx context.Context) (time.Time, bool) {
	raw, ok, err := s.storage.Get(ctx, ExpiryKey)
	if err != nil || !ok || raw == "" {
		return time.Time{}, false
	}
	exp, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return exp, true
}

// Load returns the stored session only when both token and user are present.
// Half a session is cleared so it can never be picked up later.
func (s *Store) Load(ctx context.Context) (*Session, bool) {
	tok, hasToken := s.LoadToken(ctx)
	user, hasUser := s.LoadUser(ctx)
	if !hasToken || !hasUser {
		if hasToken || hasUser {
			log.Info().Bool("token", hasToken).Bool("user", hasUser).Msg("clearing partial session")
			if err := s.Clear(ctx); err != nil {
				log.Err(err).Msg("failed to clear partial session")
			}
		}
		return nil, false
	}

	sess := &Session{Token: tok, User: *user}
	if exp, ok := s.LoadExpiry(ctx); ok {
		sess.ExpiresAt = exp
	}
	return sess, true
}

// IsValid reports whether raw has not yet expired by the store's clock.
func (s *Store) IsValid(raw string) bool {
	return token.IsValidAt(raw, s.now())
}

// HasValidToken loads the stored token and checks it. Absent means invalid.
func (s *Store) HasValidToken(ctx context.Context) bool {
	tok, ok := s.LoadToken(ctx)
	return ok && s.IsValid(tok)
}

// Clear removes every session key. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{TokenKey, UserKey, ExpiryKey} {
		if err := s.storage.Remove(ctx, key); err != nil {
			errs = append(errs, errors.Wrapf(err, "[Clear] %s", key))
		}
	}
	return errors.Join(errs...)
}

func (s *Store) Now() time.Time {
	return s.now()
}
