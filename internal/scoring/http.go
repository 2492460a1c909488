package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/quizboard/pkg/http/errors"
)

const maxSubmissionBytes = 1 << 20

// Scorer is implemented by Engine.
type Scorer interface {
	Score(ctx context.Context, sub Submission) (Result, error)
}

// HTTPHandler serves answer submissions.
type HTTPHandler struct {
	scorer Scorer
	logger zerolog.Logger
}

func NewHTTPHandler(scorer Scorer, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		scorer: scorer,
		logger: logger.With().Str("component", "scoring_http").Logger(),
	}
}

// CheckAnswers handles POST /check-answers
func (h *HTTPHandler) CheckAnswers(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmissionBytes)).Decode(&sub); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid request body")
		return
	}

	result, err := h.scorer.Score(r.Context(), sub)
	if err != nil {
		if errors.Is(err, ErrInvalidSubmission) {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidCategory, "Invalid category")
			return
		}
		h.logger.Error().Err(err).Str("category", sub.Category).Msg("scoring failed")
		httperrors.RespondInternalError(w, httperrors.ErrCodeScoreSaveFailed, "Failed to save high score")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, result)
}
