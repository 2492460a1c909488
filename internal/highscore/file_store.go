package highscore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const legacyEntryName = "legacy"

// FileStore keeps records in memory and rewrites one JSON file on every
// improvement. A mutex makes read-modify-write a single-writer section.
type FileStore struct {
	path    string
	mu      sync.RWMutex
	records Records
	logger  zerolog.Logger
}

var _ Store = (*FileStore)(nil)

// OpenFileStore loads path. Missing or unreadable files yield an empty store.
func OpenFileStore(path string, logger zerolog.Logger) *FileStore {
	s := &FileStore{
		path:   path,
		logger: logger.With().Str("component", "highscore_file").Str("path", path).Logger(),
	}
	s.records = s.load()
	return s
}

// load reads the backing file. Both the entry-list layout and the older
// scalar layout ({"general": 100.0}) are accepted; anything else is dropped.
func (s *FileStore) load() Records {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Msg("high score file unreadable, starting empty")
		}
		return Records{}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn().Err(err).Msg("high score file corrupt, starting empty")
		return Records{}
	}

	records := make(Records, len(raw))
	for category, value := range raw {
		var entries []Entry
		if err := json.Unmarshal(value, &entries); err == nil {
			if len(entries) > 0 {
				records[category] = entries
			}
			continue
		}
		var scalar float64
		if err := json.Unmarshal(value, &scalar); err == nil {
			records[category] = []Entry{{
				ID:    uuid.NewString(),
				Name:  legacyEntryName,
				Score: scalar,
			}}
			continue
		}
		s.logger.Warn().Str("category", category).Msg("skipping unrecognised high score value")
	}
	return records
}

// save overwrites the whole file via a temp file and rename.
func (s *FileStore) save(records Records) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode high scores: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create high score dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".high_scores-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write high scores: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync high scores: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close high scores: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace high score file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, category string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best, _ := s.records.Best(category)
	return best, nil
}

func (s *FileStore) SetIfHigher(_ context.Context, category string, entry Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if best, _ := s.records.Best(category); entry.Score <= best {
		return false, nil
	}

	prev, had := s.records[category]
	s.records[category] = append(append([]Entry(nil), prev...), entry)
	if err := s.save(s.records); err != nil {
		if had {
			s.records[category] = prev
		} else {
			delete(s.records, category)
		}
		return false, err
	}

	s.logger.Info().
		Str("category", category).
		Str("name", entry.Name).
		Float64("score", entry.Score).
		Msg("high score saved")
	return true, nil
}

func (s *FileStore) All(_ context.Context) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.HighScores(), nil
}

func (s *FileStore) Entries(_ context.Context) (Records, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.Clone(), nil
}

func (s *FileStore) Close() error {
	return nil
}
