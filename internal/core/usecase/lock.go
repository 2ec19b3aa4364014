package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
)

// LockManager grants a single exclusive edit lock per document.
// Locks never expire; IsStale is computed on every query from wall-clock time.
type LockManager struct {
	locks    ports.LockStore
	identity ports.IdentityProvider
	now      func() time.Time
}

func NewLockManager(locks ports.LockStore, identity ports.IdentityProvider) *LockManager {
	return &LockManager{
		locks:    locks,
		identity: identity,
		now:      utcNow,
	}
}

// WithClock overrides the time source.
func (m *LockManager) WithClock(now func() time.Time) *LockManager {
	if now != nil {
		m.now = now
	}
	return m
}

func (m *LockManager) Acquire(ctx context.Context, documentID, workerID string) (*domain.Lock, error) {
	if err := requireIDs("acquire lock", documentID, workerID); err != nil {
		return nil, err
	}
	return acquireLock(ctx, m.locks, m.identity, documentID, workerID, m.now())
}

func (m *LockManager) Query(ctx context.Context, documentID string) (domain.LockState, error) {
	if err := requireIDs("query lock", documentID); err != nil {
		return domain.LockState{}, err
	}
	return queryLock(ctx, m.locks, m.identity, documentID, m.now())
}

func (m *LockManager) Release(ctx context.Context, documentID, workerID string) error {
	if err := requireIDs("release lock", documentID, workerID); err != nil {
		return err
	}
	if err := m.locks.DeleteHeldBy(ctx, documentID, workerID); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// Reclaim destroys any lock regardless of holder and reports whether one existed.
func (m *LockManager) Reclaim(ctx context.Context, documentID, adminID string) (bool, error) {
	if err := requireIDs("reclaim lock", documentID, adminID); err != nil {
		return false, err
	}
	existed, err := m.locks.Delete(ctx, documentID)
	if err != nil {
		return false, fmt.Errorf("reclaim lock: %w", err)
	}
	if existed {
		slog.Info("lock_reclaimed", "document_id", documentID, "admin_id", adminID)
	}
	return existed, nil
}

func (m *LockManager) RecordProgress(ctx context.Context, documentID, workerID string, unitIndex int) (*domain.Lock, error) {
	if err := requireIDs("record progress", documentID, workerID); err != nil {
		return nil, err
	}
	if unitIndex < 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "record progress", fmt.Errorf("unit index %d is negative", unitIndex))
	}
	lock, err := m.locks.AddCompletedUnit(ctx, documentID, workerID, unitIndex)
	if err != nil {
		return nil, fmt.Errorf("record progress: %w", err)
	}
	return lock, nil
}

func (m *LockManager) ListLocks(ctx context.Context) ([]domain.LockState, error) {
	locks, err := m.locks.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list locks: %w", err)
	}
	now := m.now()
	out := make([]domain.LockState, 0, len(locks))
	for _, lock := range locks {
		out = append(out, domain.NewLockState(lock, displayName(ctx, m.identity, lock.HolderID), now))
	}
	return out, nil
}

// acquireLock relies on LockStore.Insert being a single conditional write, so two
// concurrent callers can never both succeed.
func acquireLock(
	ctx context.Context,
	locks ports.LockStore,
	identity ports.IdentityProvider,
	documentID, workerID string,
	now time.Time,
) (*domain.Lock, error) {
	lock := domain.Lock{
		DocumentID:     documentID,
		HolderID:       workerID,
		AcquiredAt:     now,
		CompletedUnits: []int{},
	}
	err := locks.Insert(ctx, lock)
	if err == nil {
		return &lock, nil
	}
	if !domain.IsKind(err, domain.ErrAlreadyLocked) {
		return nil, fmt.Errorf("insert lock: %w", err)
	}

	existing, err := locks.Get(ctx, documentID)
	if err != nil {
		if domain.IsKind(err, domain.ErrLockNotFound) {
			// Released between our insert and read; the caller may retry.
			return nil, &domain.LockConflictError{DocumentID: documentID}
		}
		return nil, fmt.Errorf("load existing lock: %w", err)
	}
	if existing.HeldBy(workerID) {
		return existing, nil
	}
	return nil, &domain.LockConflictError{
		DocumentID: documentID,
		HolderID:   existing.HolderID,
		HolderName: displayName(ctx, identity, existing.HolderID),
		AcquiredAt: existing.AcquiredAt,
	}
}

func queryLock(
	ctx context.Context,
	locks ports.LockStore,
	identity ports.IdentityProvider,
	documentID string,
	now time.Time,
) (domain.LockState, error) {
	lock, err := locks.Get(ctx, documentID)
	if err != nil {
		if domain.IsKind(err, domain.ErrLockNotFound) {
			return domain.UnlockedState(documentID), nil
		}
		return domain.LockState{}, fmt.Errorf("query lock: %w", err)
	}
	return domain.NewLockState(*lock, displayName(ctx, identity, lock.HolderID), now), nil
}

func requireHolder(
	ctx context.Context,
	locks ports.LockStore,
	doc *domain.Document,
	action domain.Action,
	workerID string,
) (*domain.Lock, error) {
	lock, err := locks.Get(ctx, doc.ID)
	if err != nil {
		if domain.IsKind(err, domain.ErrLockNotFound) {
			return nil, domain.WrapError(domain.ErrNotLockHolder, string(action), fmt.Errorf("document %s is not locked", doc.ID))
		}
		return nil, fmt.Errorf("load lock: %w", err)
	}
	if !lock.HeldBy(workerID) {
		return nil, domain.WrapError(
			domain.ErrNotLockHolder,
			string(action),
			fmt.Errorf("lock on %s is held by %s", doc.ID, lock.HolderID),
		)
	}
	return lock, nil
}

// displayName never fails: identity is cosmetic, so an unknown worker shows as its id.
func displayName(ctx context.Context, identity ports.IdentityProvider, workerID string) string {
	if identity == nil || workerID == "" {
		return workerID
	}
	name, err := identity.DisplayName(ctx, workerID)
	if err != nil || strings.TrimSpace(name) == "" {
		if err != nil {
			slog.Debug("identity_lookup_failed", "worker_id", workerID, "error", err)
		}
		return workerID
	}
	return name
}

func requireIDs(operation string, ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return domain.WrapError(domain.ErrInvalidInput, operation, errors.New("document and worker ids are required"))
		}
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
