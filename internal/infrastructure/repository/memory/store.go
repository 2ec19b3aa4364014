// Package memory provides in-process stores for tests and single-node development.
// All stores share one mutex, which makes every lock operation a linearizable
// conditional write and lets UnitOfWork commit or discard a whole snapshot.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
)

type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source for versions.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// access hands out the live state under the store mutex.
func (s *Store) access() (*state, func()) {
	s.mu.Lock()
	return s.state, s.mu.Unlock
}

// Do runs fn against a private copy of the state and swaps it in only if fn succeeds.
// Holding the mutex for the whole call serializes transactions with every other store call.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos ports.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.clone()
	acc := func() (*state, func()) { return draft, func() {} }
	if err := fn(ctx, repositoriesFor(acc, s.now)); err != nil {
		return err
	}
	s.state = draft
	return nil
}

// Repositories returns stores operating directly on committed state.
func (s *Store) Repositories() ports.Repositories {
	return repositoriesFor(s.access, s.now)
}

func (s *Store) Favorites() ports.FavoriteStore { return favoriteRepo{acc: s.access} }

func (s *Store) AuditLog() ports.AuditLog { return auditRepo{acc: s.access} }

func repositoriesFor(acc accessor, now func() time.Time) ports.Repositories {
	return ports.Repositories{
		Documents: documentRepo{acc: acc, now: now},
		Versions:  versionRepo{acc: acc, now: now},
		Locks:     lockRepo{acc: acc},
		Handovers: handoverRepo{acc: acc},
	}
}
