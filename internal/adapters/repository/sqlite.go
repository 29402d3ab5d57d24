package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/pkg/logger"
	"github.com/okian/buildcard/pkg/metrics"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS leaderboard (
	board      TEXT    NOT NULL,
	player     TEXT    NOT NULL,
	best       REAL    NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (board, player)
);
`

const sqliteUpsert = `
INSERT INTO leaderboard (board, player, best, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (board, player) DO UPDATE SET
	updated_at = CASE WHEN excluded.best > best THEN excluded.updated_at ELSE updated_at END,
	best       = MAX(best, excluded.best)
`

// SQLiteStore keeps every leaderboard in one SQLite table.
type SQLiteStore struct {
	db    *sql.DB
	locks *keyLock
	opts  options
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db, locks: newKeyLock(), opts: o}, nil
}

// Backend returns BackendSQLite.
func (s *SQLiteStore) Backend() string { return BackendSQLite }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// UpsertBest implements leaderboard.Repository in one transaction.
func (s *SQLiteStore) UpsertBest(ctx context.Context, key, playerID string, score float64) (model.BestUpdate, error) {
	if err := validateKey(key); err != nil {
		return model.BestUpdate{}, err
	}
	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return model.BestUpdate{}, fmt.Errorf("%w: lock %s: %w", ErrWrite, key, err)
	}
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.BestUpdate{}, fmt.Errorf("%w: begin: %w", ErrRead, err)
	}
	defer func() { _ = tx.Rollback() }()

	// The upsert keeps MAX(best) on its own, so an unreadable board only
	// costs the returned statistics.
	scores, err := queryScores(ctx, tx, key)
	if err != nil {
		metrics.RecordStoreError(BackendSQLite, "read")
		s.opts.logger.Warn(ctx, "unreadable leaderboard, treating as empty",
			logger.String("key", key), logger.Error(err))
		scores = map[string]float64{}
	}
	upd := applyBest(scores, playerID, score)

	if _, err := tx.ExecContext(ctx, sqliteUpsert, key, playerID, score, time.Now().Unix()); err != nil {
		return upd, fmt.Errorf("%w: upsert: %w", ErrWrite, err)
	}
	if err := tx.Commit(); err != nil {
		return upd, fmt.Errorf("%w: commit: %w", ErrWrite, err)
	}
	return upd, nil
}

// Scores implements leaderboard.Repository.
func (s *SQLiteStore) Scores(ctx context.Context, key string) (map[string]float64, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return queryScores(ctx, s.db, key)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryScores(ctx context.Context, q querier, key string) (map[string]float64, error) {
	rows, err := q.QueryContext(ctx, `SELECT player, best FROM leaderboard WHERE board = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer func() { _ = rows.Close() }()

	scores := map[string]float64{}
	for rows.Next() {
		var (
			player string
			best   float64
		)
		if err := rows.Scan(&player, &best); err != nil {
			return nil, fmt.Errorf("%w: scan: %w", ErrRead, err)
		}
		scores[player] = best
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return scores, nil
}
