package highscore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const (
	selectBestSQL = `SELECT COALESCE(MAX(score), 0) FROM score_entries WHERE category_id = $1`

	selectAllBestSQL = `SELECT category_id, MAX(score) FROM score_entries GROUP BY category_id`

	selectEntriesSQL = `
SELECT entry_id, category_id, player_name, score, correct_count, total_questions, time_elapsed, recorded_at
FROM score_entries
ORDER BY category_id, recorded_at`

	insertEntrySQL = `
INSERT INTO score_entries (entry_id, category_id, player_name, score, correct_count, total_questions, time_elapsed, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	// Serializes concurrent improvements for one category until commit.
	lockCategorySQL = `SELECT pg_advisory_xact_lock(hashtext($1))`
)

// PostgresStore persists entries in the score_entries table.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to dsn and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string, logger zerolog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewPostgresStoreFromPool(pool, logger), nil
}

// NewPostgresStoreFromPool wraps an existing pool. Close releases it.
func NewPostgresStoreFromPool(pool *pgxpool.Pool, logger zerolog.Logger) *PostgresStore {
	return &PostgresStore{
		pool:   pool,
		logger: logger.With().Str("component", "highscore_postgres").Logger(),
	}
}

func (s *PostgresStore) Get(ctx context.Context, category string) (float64, error) {
	var best float64
	if err := s.pool.QueryRow(ctx, selectBestSQL, category).Scan(&best); err != nil {
		return 0, fmt.Errorf("select high score: %w", err)
	}
	return best, nil
}

func (s *PostgresStore) SetIfHigher(ctx context.Context, category string, entry Entry) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, lockCategorySQL, category); err != nil {
		return false, fmt.Errorf("lock category: %w", err)
	}

	var best float64
	if err := tx.QueryRow(ctx, selectBestSQL, category).Scan(&best); err != nil {
		return false, fmt.Errorf("select high score: %w", err)
	}
	if entry.Score <= best {
		return false, nil
	}

	if _, err := tx.Exec(ctx, insertEntrySQL,
		entry.ID, category, entry.Name, entry.Score,
		entry.Correct, entry.Total, entry.TimeElapsed, entry.RecordedAt,
	); err != nil {
		return false, fmt.Errorf("insert entry: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit entry: %w", err)
	}

	s.logger.Info().
		Str("category", category).
		Str("name", entry.Name).
		Float64("score", entry.Score).
		Msg("high score saved")
	return true, nil
}

func (s *PostgresStore) All(ctx context.Context) (map[string]float64, error) {
	rows, err := s.pool.Query(ctx, selectAllBestSQL)
	if err != nil {
		return nil, fmt.Errorf("select high scores: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			category string
			best     float64
		)
		if err := rows.Scan(&category, &best); err != nil {
			return nil, fmt.Errorf("scan high score: %w", err)
		}
		out[category] = best
	}
	return out, rows.Err()
}

func (s *PostgresStore) Entries(ctx context.Context) (Records, error) {
	rows, err := s.pool.Query(ctx, selectEntriesSQL)
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	defer rows.Close()

	records := make(Records)
	for rows.Next() {
		var (
			category string
			e        Entry
		)
		if err := rows.Scan(&e.ID, &category, &e.Name, &e.Score, &e.Correct, &e.Total, &e.TimeElapsed, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		records[category] = append(records[category], e)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the connection pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
