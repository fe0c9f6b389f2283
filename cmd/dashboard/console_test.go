package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/auth"
	"github.com/yenikoza/tablet-dashboard/internal/config"
	"github.com/yenikoza/tablet-dashboard/mockapi"
	"github.com/yenikoza/tablet-dashboard/session"
	"github.com/yenikoza/tablet-dashboard/session/storagefakes"
	"github.com/yenikoza/tablet-dashboard/shell"
	"github.com/yenikoza/tablet-dashboard/view"
	"golang.org/x/crypto/bcrypt"
)

func newTestConsole(t *testing.T, input string) (*console, *shell.Shell, *bytes.Buffer) {
	t.Helper()
	mock, err := mockapi.New(config.New(), mockapi.WithPasswordCost(bcrypt.MinCost))
	require.NoError(t, err)
	srv := httptest.NewServer(mock)
	t.Cleanup(srv.Close)
	baseURL := srv.URL + "/api"

	ctx := context.Background()
	store, err := session.NewStore(storagefakes.NewFakeStorage())
	require.NoError(t, err)
	gateway, err := auth.NewGateway(baseURL)
	require.NoError(t, err)
	client, err := api.NewClient("mock", baseURL, api.WithTokenSource(auth.NewTokenSource(ctx, store)))
	require.NoError(t, err)

	clock := clockwork.NewFakeClock()
	factory := view.NewFactory(view.NewAPIs(client, client), config.New(), view.WithClock(clock))
	sh, err := shell.NewShell(store, gateway, shell.NewMemoryLocation(""),
		shell.WithControllerFactory(factory),
		shell.WithClock(clock),
	)
	require.NoError(t, err)
	require.NoError(t, sh.Boot(ctx))
	t.Cleanup(sh.Close)

	var out bytes.Buffer
	return newConsole(sh, strings.NewReader(input), &out, t.TempDir()), sh, &out
}

func TestConsoleLoginAndNavigate(t *testing.T) {
	input := strings.Join([]string{
		"status",
		"login admin wrong",
		"login admin " + mockapi.DefaultPassword,
		"go sms",
		"scope monthly",
		"status",
		"quit",
		"go stores",
	}, "\n")
	c, sh, out := newTestConsole(t, input)

	c.Run(context.Background())

	require.Equal(t, shell.Authenticated, sh.State())
	require.Equal(t, shell.SMS, sh.ActiveSection())
	text := out.String()
	require.Contains(t, text, "state:   unauthenticated")
	require.Contains(t, text, "error: ")
	require.Contains(t, text, "Hoş geldiniz, Ümit Yılmaz")
	require.Contains(t, text, "section: SMS Takip")
}

func TestConsoleRejectsUnknownCommands(t *testing.T) {
	c, _, out := newTestConsole(t, "frobnicate\ngo nowhere\nscope weekly\n")

	c.Run(context.Background())

	text := out.String()
	require.Contains(t, text, `unknown command "frobnicate"`)
	require.Equal(t, 3, strings.Count(text, "error: "))
}

func TestConsoleExportsErrorLogs(t *testing.T) {
	c, _, out := newTestConsole(t, "login admin "+mockapi.DefaultPassword+"\ngo errors\nexport\n")

	c.Run(context.Background())

	require.Contains(t, out.String(), "saved ")
	matches, err := filepath.Glob(filepath.Join(c.folder, "error_logs_*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestConsoleExportNeedsExportingSection(t *testing.T) {
	c, _, out := newTestConsole(t, "login admin "+mockapi.DefaultPassword+"\ngo settings\nexport\n")

	c.Run(context.Background())

	require.Contains(t, out.String(), "has no export")
}
