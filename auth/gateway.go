package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	internalerrors "github.com/yenikoza/tablet-dashboard/internal/errors"
	"github.com/yenikoza/tablet-dashboard/session"
	"github.com/yenikoza/tablet-dashboard/token"
	"golang.org/x/oauth2"
)

const DefaultTimeout = 10 * time.Second

// Gateway talks to the identity endpoints of the primary backend.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
}

type GatewayOption func(*Gateway)

func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.httpClient = c
	}
}

func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) {
		g.httpClient.Timeout = d
	}
}

func NewGateway(baseURL string, opts ...GatewayOption) (*Gateway, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("[NewGateway] base url is required")
	}
	g := &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// LoginResult is a successful login.
type LoginResult struct {
	Token     string
	User      session.User
	ExpiresAt time.Time
	LoginTime time.Time
}

// Session converts the result into what the session store persists.
func (r *LoginResult) Session() *session.Session {
	return &session.Session{Token: r.Token, User: r.User, ExpiresAt: r.ExpiresAt, LoginTime: r.LoginTime}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Success   bool          `json:"success"`
	Token     string        `json:"token,omitempty"`
	User      *session.User `json:"user,omitempty"`
	ExpiresAt string        `json:"expiresAt,omitempty"`
	Error     string        `json:"error,omitempty"`
	Message   string        `json:"message,omitempty"`
}

// Login exchanges credentials for a bearer token. Every failure is a
// *LoginError whose message comes from the backend when it sent one.
func (g *Gateway) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" {
		return nil, &LoginError{Message: LoginFailedMessage, Err: UsernameRequiredErr}
	}
	if password == "" {
		return nil, &LoginError{Message: LoginFailedMessage, Err: PasswordRequiredErr}
	}

	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, errors.Wrap(err, "[Login] marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "[Login] build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		log.Err(err).Str("username", username).Msg("login request failed")
		return nil, &LoginError{
			Message: ServerErrorMessage,
			Err:     errors.Wrap(internalerrors.ErrServerUnavailable, err.Error()),
		}
	}
	defer resp.Body.Close()

	var data authResponse
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&data)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !data.Success {
		msg := data.Error
		if msg == "" {
			msg = LoginFailedMessage
		}
		log.Info().Int("status", resp.StatusCode).Str("username", username).Msg("login rejected")
		return nil, &LoginError{Message: msg, Status: resp.StatusCode, Err: InvalidCredentialsErr}
	}
	if decodeErr != nil {
		return nil, &LoginError{Message: LoginFailedMessage, Status: resp.StatusCode, Err: errors.Wrap(decodeErr, "[Login] decode response")}
	}
	if data.Token == "" {
		return nil, &LoginError{Message: LoginFailedMessage, Status: resp.StatusCode, Err: MissingTokenErr}
	}

	result := &LoginResult{Token: data.Token, LoginTime: token.NowTimeFunc()}
	if data.User != nil {
		result.User = *data.User
	} else {
		result.User = session.User{Username: username}
	}
	result.ExpiresAt = parseExpiry(data.ExpiresAt, data.Token)

	log.Info().Str("username", result.User.Username).Time("expiresAt", result.ExpiresAt).Msg("logged in")
	return result, nil
}

// CurrentUser fetches the profile for tok. Any failure means the session can
// no longer be trusted and is reported as ErrSessionInvalid.
func (g *Gateway) CurrentUser(ctx context.Context, tok string) (*session.User, error) {
	req, err := g.newBearerRequest(ctx, http.MethodGet, "/auth/me", tok)
	if err != nil {
		return nil, errors.Wrap(internalerrors.ErrSessionInvalid, "[CurrentUser] "+err.Error())
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(internalerrors.ErrSessionInvalid, "[CurrentUser] "+err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Wrap(internalerrors.ErrSessionInvalid, "[CurrentUser] "+err.Error())
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(internalerrors.ErrSessionInvalid, "[CurrentUser] status %d", resp.StatusCode)
	}

	// The profile comes either bare or inside {success, user}.
	var wrapped authResponse
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}
	var user session.User
	if err := json.Unmarshal(raw, &user); err != nil || (user.Username == "" && user.ID == "") {
		return nil, errors.Wrap(internalerrors.ErrSessionInvalid, "[CurrentUser] response carried no profile")
	}
	return &user, nil
}

// Logout tells the backend to drop tok. Callers treat failures as advisory.
func (g *Gateway) Logout(ctx context.Context, tok string) error {
	req, err := g.newBearerRequest(ctx, http.MethodPost, "/auth/logout", tok)
	if err != nil {
		return errors.Wrap(err, "[Logout]")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(internalerrors.ErrServerUnavailable, "[Logout] "+err.Error())
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(internalerrors.ErrUnexpectedStatus, "[Logout] status %d", resp.StatusCode)
	}
	return nil
}

func (g *Gateway) newBearerRequest(ctx context.Context, method, path, tok string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	(&oauth2.Token{AccessToken: tok, TokenType: "Bearer"}).SetAuthHeader(req)
	return req, nil
}

func parseExpiry(raw, tok string) time.Time {
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t
		}
	}
	if t, err := token.ExpiresAt(tok); err == nil {
		return t
	}
	return time.Time{}
}
