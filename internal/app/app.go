package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizboard/internal/config"
	"github.com/gokatarajesh/quizboard/internal/highscore"
	"github.com/gokatarajesh/quizboard/internal/leaderboard"
	"github.com/gokatarajesh/quizboard/internal/logging"
	"github.com/gokatarajesh/quizboard/internal/question"
	"github.com/gokatarajesh/quizboard/internal/question/ai"
	"github.com/gokatarajesh/quizboard/internal/scoring"
	"github.com/gokatarajesh/quizboard/internal/server"
	ws "github.com/gokatarajesh/quizboard/pkg/http/ws"
)

// Application aggregates shared infrastructure (store, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	store highscore.Store
	redis *redis.Client
	hub   *ws.Hub
	http  *http.Server

	lbBroadcaster *leaderboard.Broadcaster
	bgCancels     []context.CancelFunc
}

// New bootstraps the catalog, high-score store, optional Redis fan-out and
// the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	catalog, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("categories", len(catalog.Categories())).
		Int("questions", catalog.TotalQuestions()).
		Msg("question catalog loaded")

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	checks := map[string]server.Check{}
	if pg, ok := store.(*highscore.PostgresStore); ok {
		checks["postgres"] = pg.Ping
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var generator question.Generator
	if cfg.AI.Enabled() {
		client := ai.NewCompletionClient(cfg.AI.APIKey,
			ai.WithBaseURL(cfg.AI.BaseURL),
			ai.WithHTTPClient(&http.Client{Timeout: cfg.AI.HTTPTimeout}),
		)
		generator = ai.NewGenerator(client, ai.Config{Model: cfg.AI.Model, MaxTokens: cfg.AI.MaxTokens}, logger)
	} else {
		logger.Warn().Msg("OPENAI_API_KEY not set; AI questions disabled")
	}

	wsHub := ws.NewHub(logger)
	lbSvc := leaderboard.NewService(store, logger)

	var (
		notifier      scoring.Notifier
		lbBroadcaster *leaderboard.Broadcaster
	)
	if redisClient != nil {
		notifier = leaderboard.NewRedisNotifier(redisClient, cfg.Redis.Channel, logger)
		lbBroadcaster = leaderboard.NewBroadcaster(redisClient, lbSvc, wsHub, cfg.Redis.Channel, logger)
	} else {
		notifier = leaderboard.NewLocalNotifier(lbSvc, wsHub, logger)
	}

	engine := scoring.NewEngine(catalog, store, notifier, logger)

	router := server.NewRouter(cfg, logger, server.Handlers{
		Questions: question.NewHTTPHandler(catalog, store, generator, question.BatchOptions{
			Size:        cfg.AI.BatchSize,
			Concurrency: cfg.AI.Concurrency,
		}, logger),
		Scoring:     scoring.NewHTTPHandler(engine, logger),
		HighScores:  highscore.NewHTTPHandler(store, catalog, logger),
		Leaderboard: leaderboard.NewHTTPHandler(lbSvc, wsHub, cfg.CORS.AllowedOrigins, logger),
	}, checks)

	return &Application{
		cfg:           cfg,
		logger:        logger,
		store:         store,
		redis:         redisClient,
		hub:           wsHub,
		http:          server.NewHTTPServer(cfg, router),
		lbBroadcaster: lbBroadcaster,
		bgCancels:     make([]context.CancelFunc, 0, 1),
	}, nil
}

func loadCatalog(cfg config.Catalog) (*question.Catalog, error) {
	if cfg.Path == "" {
		return question.DefaultCatalog()
	}
	catalog, err := question.LoadCatalog(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.Path, err)
	}
	return catalog, nil
}

func openStore(ctx context.Context, cfg *config.App, logger zerolog.Logger) (highscore.Store, error) {
	switch cfg.HighScores.Backend {
	case config.BackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := highscore.NewPostgresStore(connectCtx, cfg.Postgres.DSN(), logger)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("host", cfg.Postgres.Host).Str("database", cfg.Postgres.Database).Msg("using postgres high-score store")
		return store, nil
	default:
		logger.Info().Str("path", cfg.HighScores.FilePath).Msg("using file high-score store")
		return highscore.OpenFileStore(cfg.HighScores.FilePath, logger), nil
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Str("api_prefix", a.cfg.APIPrefix).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Info().Msg("shutdown signal received")
	}

	a.shutdown()
	return runErr
}

func (a *Application) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}
	a.hub.Close()

	if err := a.store.Close(); err != nil {
		a.logger.Error().Err(err).Msg("store shutdown error")
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error().Err(err).Msg("redis shutdown error")
		}
	}

	a.logger.Info().Msg("shutdown complete")
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.lbBroadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.lbBroadcaster.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("leaderboard broadcaster stopped")
			}
		}()
	}
}
