package scoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizboard/internal/highscore"
	"github.com/gokatarajesh/quizboard/internal/metrics"
	"github.com/gokatarajesh/quizboard/internal/question"
)

// NoAnswer is rendered for unanswered or out-of-range positions.
const NoAnswer = "No answer"

// ErrInvalidSubmission wraps every client-side problem with a submission.
var ErrInvalidSubmission = errors.New("invalid submission")

// CategorySource resolves a category id to its ordered questions.
type CategorySource interface {
	Category(id string) (question.Category, error)
}

// ScoreStore is the slice of highscore.Store the engine writes through.
type ScoreStore interface {
	Get(ctx context.Context, category string) (float64, error)
	SetIfHigher(ctx context.Context, category string, entry highscore.Entry) (bool, error)
}

// Notifier is told about every recorded high score.
type Notifier interface {
	HighScoreRecorded(ctx context.Context, category string, entry highscore.Entry)
}

// Submission is one attempt at a category.
type Submission struct {
	Category    string  `json:"category"`
	Answers     Answers `json:"answers"`
	TimeElapsed float64 `json:"timeElapsed"`
	Name        string  `json:"name"`
}

// QuestionResult is the per-question breakdown.
type QuestionResult struct {
	QuestionID    int    `json:"question_id"`
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

// Result is returned to the client after scoring.
type Result struct {
	Score             float64          `json:"score"`
	Correct           int              `json:"correct"`
	Total             int              `json:"total"`
	Category          string           `json:"category"`
	Results           []QuestionResult `json:"results"`
	IsNewHighScore    bool             `json:"isNewHighScore"`
	PreviousHighScore float64          `json:"previousHighScore"`
	CurrentHighScore  float64          `json:"currentHighScore"`
	TimeElapsed       float64          `json:"timeElapsed"`
}

// Engine scores submissions and records improvements.
type Engine struct {
	catalog  CategorySource
	store    ScoreStore
	notifier Notifier
	logger   zerolog.Logger
}

// NewEngine wires the engine. notifier may be nil.
func NewEngine(catalog CategorySource, store ScoreStore, notifier Notifier, logger zerolog.Logger) *Engine {
	return &Engine{
		catalog:  catalog,
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("component", "scoring").Logger(),
	}
}

// Score grades sub against its category and persists a new high score
// before returning.
func (e *Engine) Score(ctx context.Context, sub Submission) (Result, error) {
	if sub.Category == "" {
		return Result{}, fmt.Errorf("%w: missing category", ErrInvalidSubmission)
	}
	cat, err := e.catalog.Category(sub.Category)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	results, correct := Grade(cat.Questions, sub.Answers)
	total := len(cat.Questions)
	score := Percentage(correct, total)

	previous, err := e.store.Get(ctx, cat.ID)
	if err != nil {
		return Result{}, fmt.Errorf("read high score: %w", err)
	}

	current := previous
	isNew := false
	if score > previous {
		entry := highscore.NewEntry(sub.Name, score, correct, total, sub.TimeElapsed)
		isNew, err = e.store.SetIfHigher(ctx, cat.ID, entry)
		if err != nil {
			return Result{}, fmt.Errorf("save high score: %w", err)
		}
		if isNew {
			current = score
			if e.notifier != nil {
				e.notifier.HighScoreRecorded(ctx, cat.ID, entry)
			}
		} else if best, err := e.store.Get(ctx, cat.ID); err == nil {
			// another submission got there first
			current = best
		}
	}

	metrics.ObserveSubmission(cat.ID, score, isNew)
	e.logger.Debug().
		Str("category", cat.ID).
		Int("correct", correct).
		Int("total", total).
		Bool("new_high_score", isNew).
		Msg("submission scored")

	return Result{
		Score:             score,
		Correct:           correct,
		Total:             total,
		Category:          cat.ID,
		Results:           results,
		IsNewHighScore:    isNew,
		PreviousHighScore: previous,
		CurrentHighScore:  current,
		TimeElapsed:       sub.TimeElapsed,
	}, nil
}

// Grade checks answers positionally against questions.
func Grade(questions []question.Question, answers Answers) ([]QuestionResult, int) {
	results := make([]QuestionResult, 0, len(questions))
	correct := 0
	for i, q := range questions {
		userAnswer := NoAnswer
		isCorrect := false
		if idx, ok := answers[i]; ok {
			if text, valid := q.Option(idx); valid {
				userAnswer = text
				isCorrect = idx == q.Correct
			}
		}
		if isCorrect {
			correct++
		}
		results = append(results, QuestionResult{
			QuestionID:    q.ID,
			Question:      q.Question,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectOption(),
			Correct:       isCorrect,
		})
	}
	return results, correct
}

// Percentage is 100 * correct / total, 0 for an empty set.
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
