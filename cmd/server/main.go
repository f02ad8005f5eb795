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
	"github.com/jrsteele09/course-session-gateway/auth"
	"github.com/jrsteele09/course-session-gateway/internal/config"
	"github.com/jrsteele09/course-session-gateway/server"
	"github.com/jrsteele09/course-session-gateway/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server, restarting")
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
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	repo, options, closeRepo, err := sessionRepo(c)
	if err != nil {
		return err
	}
	defer closeRepo()

	authService, err := auth.NewService(c, repo)
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}
	handler, err := server.New(c, authService, options...)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(httpServer)
	}()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// sessionRepo uses Redis for the session cache and rate limit counters when
// REDIS_URL is set, otherwise both stay in process.
func sessionRepo(c config.Config) (sessions.Repo, []server.Option, func(), error) {
	if c.GetRedisURL() == "" {
		log.Info().Msg("Using in-memory session cache")
		return sessions.NewInMemoryRepo(), nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	repo, err := sessions.NewRedisRepoFromURL(ctx, c.GetRedisURL())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sessions.NewRedisRepoFromURL: %w", err)
	}

	store, err := redisstore.NewStore(repo.Client())
	if err != nil {
		_ = repo.Close()
		return nil, nil, nil, fmt.Errorf("redisstore.NewStore: %w", err)
	}

	log.Info().Msg("Using Redis session cache")
	closeRepo := func() {
		if err := repo.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
	return repo, []server.Option{server.WithRateLimitStore(store)}, closeRepo, nil
}

func setupLogging(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if c.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", c.GetAppName()).Logger()
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
