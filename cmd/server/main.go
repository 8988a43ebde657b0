package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/gatekeeper/internal/config"
	"github.com/jrsteele09/gatekeeper/internal/database"
	"github.com/jrsteele09/gatekeeper/server"
	"github.com/jrsteele09/gatekeeper/server/loginsession"
	"github.com/jrsteele09/gatekeeper/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return fmt.Errorf("config.New: %w", err)
	}
	configureLogging(c)
	displayAppname(c.GetAppName())

	if c.GetSecretKey() == config.DefaultSecretKey && c.GetEnv() != "DEV" {
		log.Warn().Msg("SECRET_KEY is the development default; session cookies can be forged")
	}

	repo, closer, err := database.Open(context.Background(), c)
	if err != nil {
		return fmt.Errorf("database.Open: %w", err)
	}
	defer closeStore(closer)

	hasher, err := users.NewHasher(c.GetPasswordHasher(), c.GetBcryptCost())
	if err != nil {
		return fmt.Errorf("users.NewHasher: %w", err)
	}
	userStore, err := users.NewStore(repo, hasher)
	if err != nil {
		return fmt.Errorf("users.NewStore: %w", err)
	}

	handler, err := server.New(c, userStore, loginsession.NewInMemoryLoginSessionRepo())
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	if _, err := handler.LogBootstrapStatus(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Bootstrap state unknown")
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func configureLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func closeStore(closer io.Closer) {
	if err := closer.Close(); err != nil {
		log.Err(err).Msg("Failed to close users store")
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
