package question

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizboard/internal/metrics"
	httperrors "github.com/gokatarajesh/quizboard/pkg/http/errors"
)

// HighScoreReader exposes the current best score per category.
type HighScoreReader interface {
	All(ctx context.Context) (map[string]float64, error)
}

// HTTPHandler serves the catalog and generated questions.
type HTTPHandler struct {
	catalog   *Catalog
	scores    HighScoreReader
	generator Generator
	batch     BatchOptions
	logger    zerolog.Logger
}

// NewHTTPHandler builds catalog handlers. generator may be nil, which
// disables the AI questions endpoint.
func NewHTTPHandler(catalog *Catalog, scores HighScoreReader, generator Generator, batch BatchOptions, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		catalog:   catalog,
		scores:    scores,
		generator: generator,
		batch:     batch,
		logger:    logger.With().Str("component", "question_http").Logger(),
	}
}

// ListCategories handles GET /categories
func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	scores, err := h.scores.All(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("high scores unavailable for category listing")
		scores = nil
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.catalog.ListCategories(scores),
	})
}

// GetQuestions handles GET /questions/{categoryId}
func (h *HTTPHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalog.Category(chi.URLParam(r, "categoryId"))
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeCategoryNotFound, "Category not found")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"category":  cat.Info(),
		"questions": cat.Questions,
		"total":     len(cat.Questions),
	})
}

// AIQuestions handles GET /ai-questions
func (h *HTTPHandler) AIQuestions(w http.ResponseWriter, r *http.Request) {
	if h.generator == nil {
		httperrors.RespondInternalError(w, httperrors.ErrCodeFeatureNotAvailable, "OpenAI API key not set")
		return
	}

	result, err := GenerateBatch(r.Context(), h.generator, h.catalog, h.batch, h.logger)
	if err != nil {
		h.logger.Warn().Err(err).Msg("ai batch aborted")
		httperrors.RespondError(w, http.StatusServiceUnavailable, httperrors.ErrCodeUpstreamError, "Question generation aborted")
		return
	}
	metrics.ObserveGeneration(len(result.Questions), result.Attempted-len(result.Questions))

	h.logger.Info().
		Int("attempted", result.Attempted).
		Int("generated", len(result.Questions)).
		Msg("ai question batch served")

	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"questions": result.Questions,
		"total":     len(result.Questions),
	})
}
