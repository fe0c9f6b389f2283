package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/api"
	"github.com/yenikoza/tablet-dashboard/auth"
	"github.com/yenikoza/tablet-dashboard/internal/config"
	"github.com/yenikoza/tablet-dashboard/session"
	"github.com/yenikoza/tablet-dashboard/session/sqlitestorage"
	"github.com/yenikoza/tablet-dashboard/shell"
	"github.com/yenikoza/tablet-dashboard/view"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("dashboard stopped with error, restarting")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("dashboard stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	c := config.New()
	setupLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sh, closeFn, err := wire(ctx, c)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := sh.Boot(ctx); err != nil {
		return fmt.Errorf("shell.Boot: %w", err)
	}
	if sh.State() == shell.Unauthenticated && c.GetUsername() != "" {
		if _, err := sh.Login(ctx, c.GetUsername(), c.GetPassword()); err != nil {
			log.Warn().Err(err).Msg("login from environment failed")
		}
	}

	cli := newConsole(sh, os.Stdin, os.Stdout, c.GetDataFolder())
	done := make(chan struct{})
	go func() {
		cli.Run(ctx)
		close(done)
	}()

	waitForStop(done)
	sh.Close()
	return nil
}

// wire builds the shell and everything it depends on. closeFn releases the
// session database.
func wire(ctx context.Context, c config.Config) (*shell.Shell, func(), error) {
	if err := os.MkdirAll(filepath.Dir(c.GetSessionDBPath()), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating data folder: %w", err)
	}
	storage, err := sqlitestorage.New(c.GetSessionDBPath())
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := storage.Close(); err != nil {
			log.Err(err).Msg("failed to close session database")
		}
	}

	store, err := session.NewStore(storage)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	gateway, err := auth.NewGateway(c.GetAPIURL(), auth.WithTimeout(c.GetHTTPTimeout()))
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	tokens := auth.NewTokenSource(ctx, store)
	mainClient, err := api.NewClient("main", c.GetAPIURL(), api.WithTimeout(c.GetHTTPTimeout()), api.WithTokenSource(tokens))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	dashboardClient, err := api.NewClient("dashboard", c.GetDashboardAPIURL(), api.WithTimeout(c.GetHTTPTimeout()), api.WithTokenSource(tokens))
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	factory := view.NewFactory(view.NewAPIs(mainClient, dashboardClient), c, view.WithObserver(logStatus))
	sh, err := shell.NewShell(store, gateway, shell.NewMemoryLocation(c.GetStartSection()),
		shell.WithControllerFactory(factory),
		shell.WithPollInterval(c.GetSessionPollInterval()),
	)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	sh.Subscribe(func(ev shell.Event) {
		e := log.Info().Str("state", ev.State.String()).Str("section", ev.Section.Label())
		if ev.User != nil {
			e = e.Str("user", ev.User.DisplayName())
		}
		e.Msg("dashboard")
	})
	return sh, closeFn, nil
}

func logStatus(section string, st view.Status) {
	e := log.Debug().Str("section", section).
		Bool("loading", st.Loading).
		Bool("refreshing", st.Refreshing).
		Bool("autoRefreshing", st.IsAutoRefreshing)
	if !st.LastUpdateTime.IsZero() {
		e = e.Time("lastUpdate", st.LastUpdateTime)
	}
	if st.Err != nil {
		e = e.Str("error", st.Err.Message)
	}
	e.Msg("section status")
}

func setupLogging(env string) {
	if env == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func waitForStop(done <-chan struct{}) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case <-stop:
	case <-done:
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
