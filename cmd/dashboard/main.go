package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sairajgoud-kodipaka/dashboard-auth/apiclient"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/internal/config"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/server"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence/fileadapter"
	"github.com/Sairajgoud-kodipaka/dashboard-auth/session/persistence/sqliteadapter"
)

const configFile = "dashboard.yml"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running dashboard")
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

	c, err := config.FromFile(configFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	configureLogging(c)
	displayAppname(c.GetAppName())

	adapter, err := newAdapter(c)
	if err != nil {
		return fmt.Errorf("building persistence adapter: %w", err)
	}

	client, err := newClient(c)
	if err != nil {
		return fmt.Errorf("building api client: %w", err)
	}

	store, err := session.New(adapter, client)
	if err != nil {
		return fmt.Errorf("building session store: %w", err)
	}
	if store.State().IsAuthenticated {
		log.Info().Str("username", store.State().User.Username).Msg("session restored")
	}

	srv, err := server.New(c, store)
	if err != nil {
		return fmt.Errorf("building server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func newAdapter(c config.Config) (persistence.Adapter, error) {
	switch c.GetStorageBackend() {
	case "sqlite":
		return sqliteadapter.New(c.GetStoragePath())
	default:
		return fileadapter.New(c.GetStoragePath()), nil
	}
}

func newClient(c config.Config) (apiclient.Client, error) {
	switch c.GetAuthMode() {
	case "oauth2":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return apiclient.NewOAuth2Client(ctx, c.GetOAuthIssuer(), c.GetOAuthClientID())
	default:
		return apiclient.NewHTTPClient(c.GetAPIBaseURL()), nil
	}
}

func configureLogging(c config.Config) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if c.GetEnv() == "development" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
