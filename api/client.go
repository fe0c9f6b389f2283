package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"golang.org/x/oauth2"
)

// DefaultTimeout bounds every backend call. A timeout is an ordinary failure.
const DefaultTimeout = 10 * time.Second

const maxBodyBytes = 8 << 20

// Client is the transport shared by the resource family fetchers. Each family
// gets its own Client so base URLs can differ per backend.
type Client struct {
	name        string
	baseURL     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.httpClient.Timeout = d
	}
}

// WithTokenSource attaches "Authorization: Bearer" to every request.
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(cl *Client) {
		cl.tokenSource = ts
	}
}

func NewClient(name, baseURL string, opts ...ClientOption) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewClient] %s base url is required", name)
	}
	c := &Client{
		name:       name,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tokenSource != nil {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient = &http.Client{
			Timeout:   c.httpClient.Timeout,
			Transport: &oauth2.Transport{Source: c.tokenSource, Base: base},
		}
	}
	return c, nil
}

func (c *Client) Name() string {
	return c.name
}

// StatusError is a non-2xx response.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *StatusError) Unwrap() error {
	return errors.ErrUnexpectedStatus
}

// Health returns the backend's health payload.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.roundTrip(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil && err != io.EOF {
		return errors.Wrapf(err, "%s %s: decode response", method, path)
	}
	return nil
}

// download streams a binary response body into w.
func (c *Client) download(ctx context.Context, path string, query url.Values, w io.Writer) (int64, error) {
	resp, err := c.roundTrip(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errors.Wrapf(err, "GET %s: read body", path)
	}
	return n, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrapf(err, "%s %s: marshal body", method, path)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s: build request", method, path)
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	log.Debug().Str("api", c.name).Str("method", method).Str("path", path).Str("requestId", requestID).Msg("api request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("api", c.name).Str("path", path).Str("requestId", requestID).Msg("api request failed")
		return nil, errors.Wrapf(errors.ErrServerUnavailable, "%s %s: %v", method, path, err)
	}

	log.Debug().Str("api", c.name).Str("path", path).Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).Str("requestId", requestID).Msg("api response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &StatusError{Method: method, Path: path, Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	return resp, nil
}

func errorMessage(r io.Reader) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, 1<<16)).Decode(&body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// envelope is the {success, data, message} wrapper used by the reports and
// settings families.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// getData unwraps an envelope. An unsuccessful envelope is not an error; the
// caller receives the zero value and ok=false.
func getData[T any](ctx context.Context, c *Client, path string, query url.Values) (T, bool, error) {
	var env envelope[T]
	if err := c.getJSON(ctx, path, query, &env); err != nil {
		var zero T
		return zero, false, err
	}
	if !env.Success {
		var zero T
		return zero, false, nil
	}
	return env.Data, true, nil
}

func sendData[T any](ctx context.Context, c *Client, method, path string, body any) (*envelope[T], error) {
	var env envelope[T]
	if err := c.sendJSON(ctx, method, path, body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}

// params builds a query, skipping empty values.
func params(kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	return q
}
