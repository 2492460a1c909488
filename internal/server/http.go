package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizboard/internal/config"
	"github.com/gokatarajesh/quizboard/internal/highscore"
	"github.com/gokatarajesh/quizboard/internal/leaderboard"
	"github.com/gokatarajesh/quizboard/internal/logging"
	"github.com/gokatarajesh/quizboard/internal/question"
	"github.com/gokatarajesh/quizboard/internal/scoring"
	httperrors "github.com/gokatarajesh/quizboard/pkg/http/errors"
)

const defaultRequestTimeout = 30 * time.Second

// Handlers groups the domain handlers mounted under the API prefix.
type Handlers struct {
	Questions   *question.HTTPHandler
	Scoring     *scoring.HTTPHandler
	HighScores  *highscore.HTTPHandler
	Leaderboard *leaderboard.HTTPHandler
}

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// NewRouter wires middleware, health, metrics and API routes.
func NewRouter(cfg *config.App, logger zerolog.Logger, h Handlers, checks map[string]Check) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.Recoverer)
	r.Use(logging.Middleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readinessHandler(logger, checks))
	r.Handle("/metrics", promhttp.Handler())

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r.Route(cfg.APIPrefix, func(api chi.Router) {
		api.Group(func(api chi.Router) {
			api.Use(middleware.Timeout(timeout))

			api.Get("/categories", h.Questions.ListCategories)
			api.Get("/questions/{categoryId}", h.Questions.GetQuestions)
			api.Post("/check-answers", h.Scoring.CheckAnswers)
			api.Get("/high-scores", h.HighScores.List)
			api.Get("/high-scores/{categoryId}", h.HighScores.Get)
			api.Get("/leaderboard", h.Leaderboard.HandleGet)
			api.Get("/leaderboard/export", h.Leaderboard.HandleExport)
		})
		// Each generation is bounded by AI_HTTP_TIMEOUT, so a full batch can
		// outlast the request timeout.
		api.Get("/ai-questions", h.Questions.AIQuestions)
		// long-lived, so outside the request timeout
		api.Get("/leaderboard/ws", h.Leaderboard.HandleWebSocket)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeNotFound, "Not found")
	})

	return r
}

// NewHTTPServer wraps handler in a server bound to cfg.HTTPAddr.
func NewHTTPServer(cfg *config.App, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func readinessHandler(logger zerolog.Logger, checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Error().Err(err).Str("dependency", name).Msg("dependency ping failed")
				status[name] = err.Error()
				healthy = false
				continue
			}
			status[name] = "ok"
		}

		if !healthy {
			httperrors.RespondErrorWithDetails(w, http.StatusServiceUnavailable, httperrors.ErrCodeServiceUnavailable, "Dependency unavailable", toDetails(status))
			return
		}
		httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "checks": status})
	}
}

func toDetails(status map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(status))
	for k, v := range status {
		out[k] = v
	}
	return out
}
