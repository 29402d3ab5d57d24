package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/buildcard/internal/domain/model"
	"github.com/okian/buildcard/pkg/atomicfile"
	"github.com/okian/buildcard/pkg/logger"
	"github.com/okian/buildcard/pkg/metrics"
)

const defaultDebounce = 250 * time.Millisecond

type dataset map[string]Profile

// Store serves weighting profiles from one JSON dataset file. Readers see an
// immutable snapshot; Put and Load swap in a new one.
type Store struct {
	path     string
	logger   logger.Logger
	debounce time.Duration

	data    atomic.Pointer[dataset]
	writeMu sync.Mutex
	loads   singleflight.Group
}

// NewStore creates an empty store for the dataset at path. Call Load to read it.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		logger:   logger.Nop(),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	empty := dataset{}
	s.data.Store(&empty)
	return s
}

// Path returns the dataset file location.
func (s *Store) Path() string { return s.path }

func (s *Store) snapshot() dataset { return *s.data.Load() }

// Load reads the dataset file and swaps it in. Concurrent calls share one
// read. A missing file yields an empty dataset; a corrupt one keeps the
// current snapshot and returns an error.
func (s *Store) Load(ctx context.Context) error {
	_, err, _ := s.loads.Do("load", func() (any, error) {
		return nil, s.load(ctx)
	})
	return err
}

func (s *Store) load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	raw, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Warn(ctx, "weighting dataset missing, starting empty", logger.String("path", s.path))
		raw = []byte("{}")
	case err != nil:
		metrics.RecordProfileReload(false)
		return fmt.Errorf("%w: %s: %w", ErrLoadProfiles, s.path, err)
	}

	next := dataset{}
	if err := json.Unmarshal(raw, &next); err != nil {
		metrics.RecordProfileReload(false)
		return fmt.Errorf("%w: %s: %w", ErrLoadProfiles, s.path, err)
	}

	s.data.Store(&next)
	metrics.RecordProfileReload(true)
	metrics.UpdateProfilesLoaded(len(next))
	s.logger.Info(ctx, "weighting dataset loaded", logger.String("path", s.path), logger.Int("profiles", len(next)))
	return nil
}

// Lookup returns the profile of a character under a variant. Alternate
// costume ids fall back to their base id when they have no profile of
// their own.
func (s *Store) Lookup(characterID, variant string) (Profile, bool) {
	d := s.snapshot()
	if p, ok := d[model.ScopedID(characterID, variant)]; ok {
		return p, true
	}
	if base, ok := model.AliasID(characterID); ok {
		if p, ok := d[model.ScopedID(base, variant)]; ok {
			return p, true
		}
	}
	return Profile{}, false
}

// Get returns the profile stored under key exactly, without aliasing.
func (s *Store) Get(key string) (Profile, bool) {
	p, ok := s.snapshot()[key]
	return p, ok
}

// List returns every profile whose key starts with prefix.
func (s *Store) List(prefix string) map[string]Profile {
	out := map[string]Profile{}
	for k, p := range s.snapshot() {
		if strings.HasPrefix(k, prefix) {
			out[k] = p
		}
	}
	return out
}

// Count returns the number of profiles in the current snapshot.
func (s *Store) Count() int { return len(s.snapshot()) }

// Put stores p under key and persists the dataset. The in-memory snapshot is
// only replaced once the file has been written.
func (s *Store) Put(ctx context.Context, key string, p Profile) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrEmptyKey
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	cur := s.snapshot()
	next := make(dataset, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[key] = p

	raw, err := json.MarshalIndent(next, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistProfiles, err)
	}
	if err := atomicfile.Write(s.path, raw, 0o644); err != nil {
		s.logger.Error(ctx, "persist weighting dataset", logger.String("path", s.path), logger.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistProfiles, err)
	}

	s.data.Store(&next)
	metrics.UpdateProfilesLoaded(len(next))
	s.logger.Info(ctx, "weighting profile stored", logger.String("key", key))
	return nil
}
