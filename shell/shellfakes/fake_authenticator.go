package shellfakes

import (
	"context"
	"sync"
	"time"

	"github.com/yenikoza/tablet-dashboard/auth"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/session"
	"github.com/yenikoza/tablet-dashboard/shell"
)

var _ shell.Authenticator = (*FakeAuthenticator)(nil)

// FakeAuthenticator records every call. Login succeeds for the configured
// credentials with a token from IssueToken.
type FakeAuthenticator struct {
	mu sync.Mutex

	Username   string
	Password   string
	User       session.User
	IssueToken func() (string, time.Time)

	CurrentUserErr error
	LogoutErr      error

	logins       int
	currentUsers int
	logouts      int
}

func NewFakeAuthenticator(user session.User, issue func() (string, time.Time)) *FakeAuthenticator {
	return &FakeAuthenticator{Username: user.Username, Password: "secret", User: user, IssueToken: issue}
}

func (f *FakeAuthenticator) Login(_ context.Context, username, password string) (*auth.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logins++
	if username != f.Username || password != f.Password {
		return nil, &auth.LoginError{Message: auth.LoginFailedMessage, Err: auth.InvalidCredentialsErr}
	}
	tok, exp := f.IssueToken()
	return &auth.LoginResult{Token: tok, User: f.User, ExpiresAt: exp, LoginTime: time.Now()}, nil
}

func (f *FakeAuthenticator) CurrentUser(_ context.Context, _ string) (*session.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentUsers++
	if f.CurrentUserErr != nil {
		return nil, errors.Wrapf(errors.ErrSessionInvalid, "[FakeAuthenticator.CurrentUser] %v", f.CurrentUserErr)
	}
	u := f.User
	return &u, nil
}

func (f *FakeAuthenticator) Logout(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return f.LogoutErr
}

// NetworkCalls is the total number of calls of any kind.
func (f *FakeAuthenticator) NetworkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins + f.currentUsers + f.logouts
}

func (f *FakeAuthenticator) Logouts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logouts
}

func (f *FakeAuthenticator) CurrentUsers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentUsers
}
