package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/yenikoza/tablet-dashboard/internal/config"
	"github.com/yenikoza/tablet-dashboard/mockapi"
	"golang.org/x/sync/errgroup"
)

// dashboardPortVar is the second listener, standing in for the dashboard
// backend. Both listeners share one data set.
const dashboardPortVar = "MOCK_DASHBOARD_PORT"

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("mock backend stopped with error, restarting")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("mock backend stopped")
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
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	displayAppname(c.GetAppName() + " mock")

	handler, err := mockapi.New(c)
	if err != nil {
		return err
	}
	servers := []*http.Server{
		{Addr: c.GetPort(), Handler: handler},
		{Addr: port(config.GetEnv(dashboardPortVar, "3002")), Handler: handler},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error { return listenAndServe(srv) })
	}
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(servers)
	})
	return g.Wait()
}

func port(p string) string {
	if strings.HasPrefix(p, ":") {
		return p
	}
	return ":" + p
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("mock backend listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(servers []*http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server.Shutdown %s: %w", srv.Addr, err))
		}
	}
	return errors.Join(errs...)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
