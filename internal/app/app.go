package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/platonusquiz/server/internal/attempt"
	"github.com/platonusquiz/server/internal/catalog"
	"github.com/platonusquiz/server/internal/config"
	"github.com/platonusquiz/server/internal/logging"
	"github.com/platonusquiz/server/internal/metrics"
	"github.com/platonusquiz/server/internal/parser"
	"github.com/platonusquiz/server/internal/parser/ai"
	"github.com/platonusquiz/server/internal/server"
	"github.com/platonusquiz/server/internal/session"
	"github.com/platonusquiz/server/internal/storage"
	ws "github.com/platonusquiz/server/pkg/http/ws"
)

// Application aggregates shared infrastructure (storage, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool // nil unless postgres backend
	redis *redis.Client // nil unless redis backend
	http  *http.Server
}

// New bootstraps config, logger, storage backend and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Str("storage", cfg.Storage.Backend).Msg("starting application bootstrap")

	app := &Application{cfg: cfg, logger: logger}

	var store storage.Store
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		app.pool = pool
		store = storage.NewPostgresStore(pool)
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.redis = client
		store = storage.NewRedisStore(client)
	default:
		store = storage.NewMemoryStore()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	cat, err := catalog.NewService(ctx, store, logger)
	if err != nil {
		return nil, fmt.Errorf("load quiz catalog: %w", err)
	}
	attempts, err := attempt.NewStore(ctx, store, cat, logger)
	if err != nil {
		return nil, fmt.Errorf("load attempt history: %w", err)
	}

	generator := ai.NewClient(ai.Config{
		APIKey:  cfg.AI.GeminiAPIKey,
		Model:   cfg.AI.Model,
		Timeout: cfg.AI.HTTPTimeout,
	}, logger)
	questionParser := parser.New(generator, logger)

	manager := session.NewManager(cat, attempts, m, logger)
	hub := ws.NewHub(logger)

	app.http = server.NewHTTPServer(cfg, logger, reg, server.Handlers{
		Parser:    parser.NewHTTPHandlers(questionParser, m, logger),
		Catalog:   catalog.NewHTTPHandlers(cat, m, logger),
		Session:   session.NewHTTPHandlers(manager, logger),
		Attempt:   attempt.NewHTTPHandlers(attempts, logger),
		SessionWS: session.NewWSHandler(manager, hub, logger),
	})

	return app, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	if a.pool != nil {
		a.pool.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
