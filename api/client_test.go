package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/internal/errors"
	"golang.org/x/oauth2"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, h http.Handler, opts ...api.ClientOption) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := api.NewClient("test", srv.URL+"/api", opts...)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := api.NewClient("test", "")
	require.Error(t, err)
}

func TestClientAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	}), api.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})))

	health, err := c.Health(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health["status"])
	require.Equal(t, "Bearer tok", gotAuth)
	require.Len(t, gotRequestID, 36)
}

func TestClientStatusError(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "db down"})
	}))

	_, err := c.Health(context.Background())
	var statusErr *api.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.Status)
	require.Equal(t, "db down", statusErr.Message)
	require.Equal(t, "/health", statusErr.Path)
	require.ErrorIs(t, err, errors.ErrUnexpectedStatus)
}

func TestClientTimeoutIsOrdinaryFailure(t *testing.T) {
	release := make(chan struct{})
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), api.WithTimeout(50*time.Millisecond))
	defer close(release)

	_, err := c.Health(context.Background())
	require.ErrorIs(t, err, errors.ErrServerUnavailable)
}

func TestDownloadStreamsBody(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/logs/export", r.URL.Path)
		require.Equal(t, "ERROR", r.URL.Query().Get("level"))
		require.False(t, r.URL.Query().Has("category"))
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("id,level\n1,ERROR\n"))
	}))

	var buf bytes.Buffer
	n, err := api.NewLoggingAPI(c).Export(context.Background(), api.LogFilter{Level: "ERROR", Scope: "daily"}, &buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	require.Equal(t, "id,level\n1,ERROR\n", buf.String())
}
