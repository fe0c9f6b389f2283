package auth

import (
	"context"

	"github.com/pkg/errors"
	internalerrors "github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/session"
	"golang.org/x/oauth2"
)

// StoreTokenSource hands the stored bearer token to oauth2.Transport, so every
// data call picks up whatever the latest login saved.
type StoreTokenSource struct {
	ctx   context.Context
	store *session.Store
}

var _ oauth2.TokenSource = (*StoreTokenSource)(nil)

func NewTokenSource(ctx context.Context, store *session.Store) *StoreTokenSource {
	return &StoreTokenSource{ctx: ctx, store: store}
}

func (s *StoreTokenSource) Token() (*oauth2.Token, error) {
	tok, ok := s.store.LoadToken(s.ctx)
	if !ok {
		return nil, errors.Wrap(internalerrors.ErrNoSession, "[Token]")
	}
	t := &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}
	if exp, ok := s.store.LoadExpiry(s.ctx); ok {
		t.Expiry = exp
	}
	return t, nil
}
