package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/repository/memory"
)

func TestAcquireIsIdempotentForHolder(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	first, err := f.locks.Acquire(ctx, "doc-1", "w-a")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	f.clock.Advance(time.Hour)
	second, err := f.locks.Acquire(ctx, "doc-1", "w-a")
	if err != nil {
		t.Fatalf("second Acquire() error = %v", err)
	}
	if !second.AcquiredAt.Equal(first.AcquiredAt) {
		t.Fatalf("re-acquire must return the existing lock, got %v want %v", second.AcquiredAt, first.AcquiredAt)
	}
	if len(second.CompletedUnits) != 0 {
		t.Fatalf("new lock must start without completed units, got %v", second.CompletedUnits)
	}
}

func TestConcurrentAcquireGrantsOneLock(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		holders []string
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			workerID := "w-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
			lock, err := f.locks.Acquire(ctx, "doc-1", workerID)
			if err != nil {
				if !errors.Is(err, domain.ErrAlreadyLocked) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			mu.Lock()
			holders = append(holders, lock.HolderID)
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	if len(holders) != 1 {
		t.Fatalf("expected one holder, got %v", holders)
	}
}

func TestStaleLockCanBeReclaimed(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	docID := f.pendingDocument(t)

	if _, err := f.lifecycle.StartTranslation(ctx, docID, "w-a"); err != nil {
		t.Fatalf("StartTranslation() error = %v", err)
	}

	f.clock.Advance(23 * time.Hour)
	state, err := f.locks.Query(ctx, docID)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if state.IsStale {
		t.Fatalf("lock younger than 24h must not be stale")
	}

	f.clock.Advance(2 * time.Hour)
	state, err = f.locks.Query(ctx, docID)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if !state.Locked || !state.IsStale || state.HolderName != "Alice" {
		t.Fatalf("expected stale lock held by Alice, got %+v", state)
	}

	// Staleness is advisory: the holder can still work.
	if _, err := f.lifecycle.SaveDraft(ctx, docID, "w-a", "<p>late</p>"); err != nil {
		t.Fatalf("stale holder must keep editing rights, got %v", err)
	}

	if err := f.lifecycle.ReclaimLock(ctx, docID, "admin"); err != nil {
		t.Fatalf("ReclaimLock() error = %v", err)
	}
	if err := f.lifecycle.ReclaimLock(ctx, docID, "admin"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second reclaim must report no active lock, got %v", err)
	}
	resumed, err := f.lifecycle.ResumeTranslation(ctx, docID, "w-b")
	if err != nil {
		t.Fatalf("ResumeTranslation() error = %v", err)
	}
	if resumed.Lock.HolderID != "w-b" || !resumed.Lock.AcquiredAt.Equal(f.clock.Now()) {
		t.Fatalf("unexpected lock after reclaim: %+v", resumed.Lock)
	}
}

func TestLockManagerReleaseAndReclaim(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	if _, err := f.locks.Acquire(ctx, "doc-1", "w-a"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := f.locks.Release(ctx, "doc-1", "w-b"); !errors.Is(err, domain.ErrNotLockHolder) {
		t.Fatalf("expected ErrNotLockHolder, got %v", err)
	}
	if err := f.locks.Release(ctx, "doc-1", "w-a"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	state, err := f.locks.Query(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if state.Locked {
		t.Fatalf("expected unlocked state, got %+v", state)
	}

	existed, err := f.locks.Reclaim(ctx, "doc-1", "admin")
	if err != nil || existed {
		t.Fatalf("reclaim of missing lock: existed=%v err=%v", existed, err)
	}
	if _, err := f.locks.Acquire(ctx, "doc-1", "w-b"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	existed, err = f.locks.Reclaim(ctx, "doc-1", "admin")
	if err != nil || !existed {
		t.Fatalf("reclaim of held lock: existed=%v err=%v", existed, err)
	}
}

func TestLifecycleReleaseAndReclaimShareLockManagerRules(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	docID := f.pendingDocument(t)

	if _, err := f.lifecycle.StartTranslation(ctx, docID, "w-a"); err != nil {
		t.Fatalf("StartTranslation() error = %v", err)
	}
	if err := f.lifecycle.ReleaseLock(ctx, docID, "w-b"); !errors.Is(err, domain.ErrNotLockHolder) {
		t.Fatalf("expected ErrNotLockHolder for non-holder release, got %v", err)
	}
	if err := f.lifecycle.ReleaseLock(ctx, docID, "w-a"); err != nil {
		t.Fatalf("ReleaseLock() error = %v", err)
	}
	if state, err := f.locks.Query(ctx, docID); err != nil || state.Locked {
		t.Fatalf("expected released lock, got %+v err=%v", state, err)
	}

	if _, err := f.lifecycle.ResumeTranslation(ctx, docID, "w-b"); err != nil {
		t.Fatalf("ResumeTranslation() error = %v", err)
	}
	if err := f.lifecycle.ReclaimLock(ctx, docID, "admin"); err != nil {
		t.Fatalf("ReclaimLock() error = %v", err)
	}
	if state, err := f.locks.Query(ctx, docID); err != nil || state.Locked {
		t.Fatalf("expected reclaimed lock, got %+v err=%v", state, err)
	}
	if got := f.status(t, docID); got != domain.StatusInTranslation {
		t.Fatalf("reclaim must not change status, got %s", got)
	}
}

func TestRecordProgress(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	if _, err := f.locks.Acquire(ctx, "doc-1", "w-a"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := f.locks.RecordProgress(ctx, "doc-1", "w-a", -1); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative index, got %v", err)
	}
	if _, err := f.locks.RecordProgress(ctx, "doc-1", "w-b", 0); !errors.Is(err, domain.ErrNotLockHolder) {
		t.Fatalf("expected ErrNotLockHolder, got %v", err)
	}
	for _, unit := range []int{3, 1, 3} {
		if _, err := f.locks.RecordProgress(ctx, "doc-1", "w-a", unit); err != nil {
			t.Fatalf("RecordProgress(%d) error = %v", unit, err)
		}
	}
	state, err := f.locks.Query(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(state.CompletedUnits) != 2 || state.CompletedUnits[0] != 1 || state.CompletedUnits[1] != 3 {
		t.Fatalf("expected units [1 3], got %v", state.CompletedUnits)
	}
}

func TestListLocksFallsBackToWorkerID(t *testing.T) {
	store := memory.NewStore()
	manager := NewLockManager(store.Repositories().Locks, identityFake{"w-a": "Alice"})
	ctx := context.Background()

	if _, err := manager.Acquire(ctx, "doc-1", "w-a"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := manager.Acquire(ctx, "doc-2", "w-unknown"); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	locks, err := manager.ListLocks(ctx)
	if err != nil {
		t.Fatalf("ListLocks() error = %v", err)
	}
	names := map[string]string{}
	for _, lock := range locks {
		names[lock.DocumentID] = lock.HolderName
	}
	if names["doc-1"] != "Alice" || names["doc-2"] != "w-unknown" {
		t.Fatalf("unexpected holder names: %v", names)
	}
	if _, err := manager.Acquire(ctx, "", "w-a"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty document id, got %v", err)
	}
}
