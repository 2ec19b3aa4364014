package ports

import (
	"context"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

// DocumentStore persists document records. The coordinator mutates only status and the version pointer.
type DocumentStore interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	SetCurrentVersionPointer(ctx context.Context, id, versionID string) error
}

// VersionStore is an append-only store of version content.
type VersionStore interface {
	// ListByDocument returns versions ordered by number ascending.
	ListByDocument(ctx context.Context, documentID string) ([]domain.Version, error)
	// Append assigns the next sequential number for the document.
	Append(ctx context.Context, version domain.NewVersion) (domain.Version, error)
}

// LockStore holds at most one active lock per document.
type LockStore interface {
	// Get returns ErrLockNotFound when the document is unlocked.
	Get(ctx context.Context, documentID string) (*domain.Lock, error)
	// Insert is a single conditional write; it returns ErrAlreadyLocked if any lock exists.
	Insert(ctx context.Context, lock domain.Lock) error
	// Delete removes any lock and reports whether one existed.
	Delete(ctx context.Context, documentID string) (bool, error)
	// DeleteHeldBy removes the lock only if holderID holds it, else ErrNotLockHolder.
	DeleteHeldBy(ctx context.Context, documentID, holderID string) error
	// AddCompletedUnit returns ErrNotLockHolder when holderID does not hold the lock.
	AddCompletedUnit(ctx context.Context, documentID, holderID string, index int) (*domain.Lock, error)
	List(ctx context.Context) ([]domain.Lock, error)
}

// HandoverStore keeps the latest handover per document.
type HandoverStore interface {
	// Save supersedes any previous handover for the same document.
	Save(ctx context.Context, handover *domain.Handover) error
	// GetByDocument returns ErrHandoverNotFound when none is recorded.
	GetByDocument(ctx context.Context, documentID string) (*domain.Handover, error)
	Delete(ctx context.Context, documentID string) error
}

// FavoriteStore is keyed by (worker, document).
type FavoriteStore interface {
	AddFavorite(ctx context.Context, favorite domain.Favorite) error
	RemoveFavorite(ctx context.Context, workerID, documentID string) error
	ListFavorites(ctx context.Context, workerID string) ([]domain.Favorite, error)
}

// Repositories is the set of stores bound to one unit of work.
type Repositories struct {
	Documents DocumentStore
	Versions  VersionStore
	Locks     LockStore
	Handovers HandoverStore
}

// UnitOfWork runs fn atomically: either every store mutation inside fn applies, or none does.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// IdentityProvider resolves a worker id to a display name.
type IdentityProvider interface {
	DisplayName(ctx context.Context, workerID string) (string, error)
}

// UnitCounter counts addressable content units in a structural content blob.
type UnitCounter interface {
	CountUnits(content string) int
}

// EventPublisher emits lifecycle events after commit.
type EventPublisher interface {
	PublishLifecycleEvent(ctx context.Context, event domain.LifecycleEvent) error
}

// EventSubscriber consumes lifecycle events.
type EventSubscriber interface {
	SubscribeLifecycleEvents(ctx context.Context, handler func(context.Context, domain.LifecycleEvent) error) error
}

// AuditLog persists lifecycle events.
type AuditLog interface {
	AppendEvent(ctx context.Context, event domain.LifecycleEvent) error
	ListEvents(ctx context.Context, documentID string) ([]domain.LifecycleEvent, error)
}
