package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
	"github.com/kirillkom/doc-lifecycle/internal/infrastructure/repository/memory"
)

type clockFake struct {
	mu  sync.Mutex
	now time.Time
}

func newClockFake() *clockFake {
	return &clockFake{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *clockFake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clockFake) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type identityFake map[string]string

func (f identityFake) DisplayName(_ context.Context, workerID string) (string, error) {
	name, ok := f[workerID]
	if !ok {
		return "", errors.New("unknown worker")
	}
	return name, nil
}

type publisherFake struct {
	mu     sync.Mutex
	events []domain.LifecycleEvent
	err    error
}

func (f *publisherFake) PublishLifecycleEvent(_ context.Context, event domain.LifecycleEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *publisherFake) Events() []domain.LifecycleEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.LifecycleEvent(nil), f.events...)
}

type counterFake struct {
	units int
}

func (f counterFake) CountUnits(string) int { return f.units }

type failingUnitOfWork struct {
	err error
}

func (f failingUnitOfWork) Do(context.Context, func(context.Context, ports.Repositories) error) error {
	return f.err
}

type fixture struct {
	store     *memory.Store
	clock     *clockFake
	publisher *publisherFake
	lifecycle *LifecycleUseCase
	locks     *LockManager
	reader    *DocumentReaderUseCase
	audit     *AuditUseCase
}

func newFixture(t *testing.T, totalUnits int) *fixture {
	t.Helper()
	clock := newClockFake()
	store := memory.NewStore().WithClock(clock.Now)
	identity := identityFake{"w-a": "Alice", "w-b": "Bob"}
	publisher := &publisherFake{}
	repos := store.Repositories()

	return &fixture{
		store:     store,
		clock:     clock,
		publisher: publisher,
		lifecycle: NewLifecycleUseCase(store, identity, publisher).WithClock(clock.Now),
		locks:     NewLockManager(repos.Locks, identity).WithClock(clock.Now),
		reader: NewDocumentReaderUseCase(
			repos.Documents, repos.Versions, repos.Locks, repos.Handovers, identity, counterFake{units: totalUnits},
		).WithClock(clock.Now),
		audit: NewAuditUseCase(store.AuditLog()),
	}
}

// pendingDocument creates a document with ORIGINAL#1 and AI_DRAFT#2 awaiting a translator.
func (f *fixture) pendingDocument(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	created, err := f.lifecycle.CreateDocument(ctx, domain.CreateDocumentRequest{
		Title:           "Safety manual",
		OriginalContent: "<p>one</p><p>two</p>",
		AIDraftContent:  "<p>uno</p><p>dos</p>",
		CreatedBy:       "editor",
	})
	if err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}
	if _, err := f.lifecycle.RequestTranslation(ctx, created.Document.ID, "editor", ""); err != nil {
		t.Fatalf("RequestTranslation() error = %v", err)
	}
	return created.Document.ID
}

func (f *fixture) status(t *testing.T, documentID string) domain.DocumentStatus {
	t.Helper()
	view, err := f.reader.View(context.Background(), documentID)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	return view.Document.Status
}
