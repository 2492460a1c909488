package highscore

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// DefaultPlayerName is recorded when a submission carries no name.
const DefaultPlayerName = "Anonymous"

const maxNameRunes = 40

// Entry is one recorded high-score run for a category.
type Entry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Score       float64   `json:"score"`
	Correct     int       `json:"correct"`
	Total       int       `json:"total"`
	TimeElapsed float64   `json:"timeElapsed"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// NewEntry stamps a fresh id and timestamp on a run.
func NewEntry(name string, score float64, correct, total int, timeElapsed float64) Entry {
	return Entry{
		ID:          uuid.NewString(),
		Name:        NormalizeName(name),
		Score:       score,
		Correct:     correct,
		Total:       total,
		TimeElapsed: timeElapsed,
		RecordedAt:  time.Now().UTC(),
	}
}

// NormalizeName trims, NFC-normalizes and bounds a player name.
func NormalizeName(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return DefaultPlayerName
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = strings.TrimSpace(string([]rune(name)[:maxNameRunes]))
	}
	return name
}

// Records maps category id to its entries in recording order.
type Records map[string][]Entry

// Best returns the highest score recorded for category.
func (r Records) Best(category string) (float64, bool) {
	entries := r[category]
	if len(entries) == 0 {
		return 0, false
	}
	best := entries[0].Score
	for _, e := range entries[1:] {
		if e.Score > best {
			best = e.Score
		}
	}
	return best, true
}

// HighScores derives the per-category maximum.
func (r Records) HighScores() map[string]float64 {
	out := make(map[string]float64, len(r))
	for category := range r {
		if best, ok := r.Best(category); ok {
			out[category] = best
		}
	}
	return out
}

// Clone deep-copies the records.
func (r Records) Clone() Records {
	out := make(Records, len(r))
	for category, entries := range r {
		out[category] = append([]Entry(nil), entries...)
	}
	return out
}

// Store persists score entries. The high score of a category is the maximum
// entry score, 0 when there are none.
type Store interface {
	Get(ctx context.Context, category string) (float64, error)
	// SetIfHigher records entry only when its score strictly exceeds the
	// current high score, reporting whether it did.
	SetIfHigher(ctx context.Context, category string, entry Entry) (bool, error)
	All(ctx context.Context) (map[string]float64, error)
	Entries(ctx context.Context) (Records, error)
	Close() error
}
