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
	"github.com/jrsteele09/go-edge-auth/auth"
	"github.com/jrsteele09/go-edge-auth/auth/authflow"
	"github.com/jrsteele09/go-edge-auth/idp"
	"github.com/jrsteele09/go-edge-auth/internal/config"
	"github.com/jrsteele09/go-edge-auth/internal/metrics"
	"github.com/jrsteele09/go-edge-auth/internal/random"
	"github.com/jrsteele09/go-edge-auth/kvstore"
	"github.com/jrsteele09/go-edge-auth/server"
	"github.com/jrsteele09/go-edge-auth/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running server")
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("stack", string(debug.Stack())).Msgf("Recovered from panic: %v", r)
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	displayAppname(c.GetAppName())
	logger := setupLogger(c)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	store, closeStore, err := openStore(ctx, c)
	if err != nil {
		return err
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	httpClient := &http.Client{Timeout: c.GetHTTPClientTimeout()}
	repos := auth.Repos{
		States:   authflow.NewKVRepo(store, c.GetStateTTL()),
		Sessions: sessions.NewKVRepo(store, c.GetSessionTTL()),
	}
	authService, err := auth.NewAuthorizationService(c, repos, idp.New(c, httpClient),
		auth.WithRandomSource(randomSource(c, httpClient)),
		auth.WithMetrics(metrics.New(registry)),
	)
	if err != nil {
		return fmt.Errorf("failed to create authorization service: %w", err)
	}

	edge, err := server.New(c, authService, server.WithGatherer(registry), server.WithLogger(logger))
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           edge,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return listenAndServe(logger, httpServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		return shutdown(httpServer)
	})
	return g.Wait()
}

func setupLogger(c config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	if c.GetEnv() == "DEV" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	logger = logger.With().Timestamp().Str("app", c.GetAppName()).Logger()

	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return logger
}

func openStore(ctx context.Context, c config.Config) (kvstore.Store, func(), error) {
	if c.GetStoreBackend() != config.StoreBackendRedis {
		log.Info().Msg("Using in-memory store")
		return kvstore.NewMemory(), func() {}, nil
	}

	r, err := kvstore.NewRedis(ctx, kvstore.RedisConfig{
		Addr:      c.GetRedisAddr(),
		Password:  c.GetRedisPassword(),
		DB:        c.GetRedisDB(),
		KeyPrefix: c.GetRedisKeyPrefix(),
	})
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis store")
	return r, func() { _ = r.Close() }, nil
}

func randomSource(c config.Config, httpClient *http.Client) random.Source {
	if c.GetRandomSource() == config.RandomSourceHTTP {
		return random.NewHTTPSource(c.GetRandomSourceURL(), httpClient)
	}
	return random.CryptoSource{}
}

func listenAndServe(logger zerolog.Logger, server *http.Server) error {
	logger.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
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
