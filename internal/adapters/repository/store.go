// Package repository persists leaderboard best scores per key.
package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/okian/buildcard/internal/domain/leaderboard"
	"github.com/okian/buildcard/internal/domain/model"
)

// Backend names, also used as metrics labels.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Store is a leaderboard repository that owns resources.
type Store interface {
	leaderboard.Repository
	Backend() string
	Close() error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// validateKey rejects keys that could escape a storage namespace.
func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// applyBest stores max(previous, score) for playerID in scores and reports
// the previous value.
func applyBest(scores map[string]float64, playerID string, score float64) model.BestUpdate {
	prev, existed := scores[playerID]
	if !existed || score > prev {
		scores[playerID] = score
	}
	return model.BestUpdate{Previous: prev, Existed: existed, Scores: scores}
}

// keyLock hands out one mutex per key. Entries are reference counted and
// dropped once no goroutine holds or waits on them.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: map[string]*refMutex{}}
}

// Lock blocks until key is held and returns its unlock func. ctx bounds the
// wait.
func (k *keyLock) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		m.Lock()
		close(acquired)
	}()

	release := func() {
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}

	select {
	case <-acquired:
		return func() {
			m.Unlock()
			release()
		}, nil
	case <-ctx.Done():
		// The waiter still takes the mutex eventually; hand it straight back.
		go func() {
			<-acquired
			m.Unlock()
			release()
		}()
		return nil, ctx.Err()
	}
}

func (k *keyLock) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
