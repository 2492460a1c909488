package highscore

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/quizboard/pkg/http/errors"
)

// CategoryIndex reports whether a category id exists.
type CategoryIndex interface {
	Has(id string) bool
}

// HTTPHandler exposes high scores over HTTP.
type HTTPHandler struct {
	store      Store
	categories CategoryIndex
	logger     zerolog.Logger
}

func NewHTTPHandler(store Store, categories CategoryIndex, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		store:      store,
		categories: categories,
		logger:     logger.With().Str("component", "highscore_http").Logger(),
	}
}

// List handles GET /high-scores
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	scores, err := h.store.All(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read high scores")
		httperrors.RespondInternalError(w, httperrors.ErrCodeInternalError, "Failed to read high scores")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"highScores": scores,
	})
}

// Get handles GET /high-scores/{categoryId}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryId")
	if !h.categories.Has(categoryID) {
		httperrors.RespondNotFound(w, httperrors.ErrCodeCategoryNotFound, "Category not found")
		return
	}

	best, err := h.store.Get(r.Context(), categoryID)
	if err != nil {
		h.logger.Error().Err(err).Str("category", categoryID).Msg("failed to read high score")
		httperrors.RespondInternalError(w, httperrors.ErrCodeInternalError, "Failed to read high score")
		return
	}
	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"category":  categoryID,
		"highScore": best,
	})
}
