package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/pkg/atomicfile"
	"github.com/okian/buildcard/pkg/logger"
	"github.com/okian/buildcard/pkg/metrics"
)

// fileDoc is the on-disk layout of one leaderboard: player id -> best.
type fileDoc struct {
	Score map[string]float64 `json:"score"`
}

// FileStore keeps one JSON file per leaderboard key under a directory.
type FileStore struct {
	dir   string
	locks *keyLock
	opts  options
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create leaderboard dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, locks: newKeyLock(), opts: o}, nil
}

// Backend returns BackendFile.
func (s *FileStore) Backend() string { return BackendFile }

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// UpsertBest implements leaderboard.Repository.
func (s *FileStore) UpsertBest(ctx context.Context, key, playerID string, score float64) (model.BestUpdate, error) {
	if err := validateKey(key); err != nil {
		return model.BestUpdate{}, err
	}
	unlock, err := s.locks.Lock(ctx, key)
	if err != nil {
		return model.BestUpdate{}, fmt.Errorf("%w: lock %s: %w", ErrWrite, key, err)
	}
	defer unlock()

	upd := applyBest(s.read(ctx, key), playerID, score)

	raw, err := json.Marshal(fileDoc{Score: upd.Scores})
	if err != nil {
		return upd, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := atomicfile.Write(s.path(key), raw, 0o644); err != nil {
		return upd, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return upd, nil
}

// Scores implements leaderboard.Repository.
func (s *FileStore) Scores(ctx context.Context, key string) (map[string]float64, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	return s.read(ctx, key), nil
}

// read loads a leaderboard file. Missing files are empty; unreadable or
// corrupt files are logged and treated as empty.
func (s *FileStore) read(ctx context.Context, key string) map[string]float64 {
	path := s.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]float64{}
	}
	if err != nil {
		s.corrupt(ctx, path, err)
		return map[string]float64{}
	}

	var doc fileDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		s.corrupt(ctx, path, err)
		return map[string]float64{}
	}
	if doc.Score == nil {
		return map[string]float64{}
	}
	return doc.Score
}

func (s *FileStore) corrupt(ctx context.Context, path string, err error) {
	metrics.RecordStoreError(BackendFile, "read")
	s.opts.logger.Warn(ctx, "unreadable leaderboard file, treating as empty",
		logger.String("path", path), logger.Error(err))
}
