package leaderboard

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizboard/internal/highscore"
	ws "github.com/gokatarajesh/quizboard/pkg/http/ws"
)

// DefaultTopN bounds the entries pushed with each live update.
const DefaultTopN = 10

// Entry is one row of the flattened leaderboard.
type Entry struct {
	Name       string    `json:"name"`
	Score      float64   `json:"score"`
	Category   string    `json:"category"`
	RecordedAt time.Time `json:"recordedAt"`
}

// EntrySource yields every stored score entry.
type EntrySource interface {
	Entries(ctx context.Context) (highscore.Records, error)
}

// Service builds the cross-category leaderboard from the high-score store.
type Service struct {
	source EntrySource
	logger zerolog.Logger
}

func NewService(source EntrySource, logger zerolog.Logger) *Service {
	return &Service{
		source: source,
		logger: logger.With().Str("component", "leaderboard_service").Logger(),
	}
}

// Leaderboard returns every entry across categories, best first.
func (s *Service) Leaderboard(ctx context.Context) ([]Entry, error) {
	records, err := s.source.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return Flatten(records), nil
}

// Top returns at most n leading entries.
func (s *Service) Top(ctx context.Context, n int) ([]Entry, error) {
	entries, err := s.Leaderboard(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Flatten merges per-category records and sorts by score descending.
// Equal scores keep the earlier recording first.
func Flatten(records highscore.Records) []Entry {
	out := make([]Entry, 0)
	for category, entries := range records {
		for _, e := range entries {
			out = append(out, Entry{
				Name:       e.Name,
				Score:      e.Score,
				Category:   category,
				RecordedAt: e.RecordedAt,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.RecordedAt.Equal(b.RecordedAt) {
			return a.RecordedAt.Before(b.RecordedAt)
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Name < b.Name
	})
	return out
}

func toWSEntries(entries []Entry) []ws.LeaderboardEntry {
	result := make([]ws.LeaderboardEntry, len(entries))
	for i, e := range entries {
		result[i] = toWSEntry(e)
		result[i].Rank = i + 1
	}
	return result
}

func toWSEntry(e Entry) ws.LeaderboardEntry {
	return ws.LeaderboardEntry{
		Name:       e.Name,
		Score:      e.Score,
		Category:   e.Category,
		RecordedAt: e.RecordedAt.UTC().Format(time.RFC3339),
	}
}
