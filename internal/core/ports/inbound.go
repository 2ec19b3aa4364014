package ports

import (
	"context"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

// LockService is the inbound contract for exclusive edit locks.
type LockService interface {
	Acquire(ctx context.Context, documentID, workerID string) (*domain.Lock, error)
	Query(ctx context.Context, documentID string) (domain.LockState, error)
	Release(ctx context.Context, documentID, workerID string) error
	Reclaim(ctx context.Context, documentID, adminID string) (bool, error)
	RecordProgress(ctx context.Context, documentID, workerID string, unitIndex int) (*domain.Lock, error)
	ListLocks(ctx context.Context) ([]domain.LockState, error)
}

// LifecycleService is the inbound contract for document status transitions.
type LifecycleService interface {
	CreateDocument(ctx context.Context, req domain.CreateDocumentRequest) (*domain.TransitionResult, error)
	RequestTranslation(ctx context.Context, documentID, actorID, aiDraft string) (*domain.TransitionResult, error)
	StartTranslation(ctx context.Context, documentID, workerID string) (*domain.TransitionResult, error)
	ResumeTranslation(ctx context.Context, documentID, workerID string) (*domain.TransitionResult, error)
	SaveDraft(ctx context.Context, documentID, workerID, content string) (*domain.TransitionResult, error)
	SubmitForReview(ctx context.Context, documentID, workerID, content string) (*domain.TransitionResult, error)
	Approve(ctx context.Context, documentID, reviewerID, content string) (*domain.TransitionResult, error)
	Reject(ctx context.Context, documentID, reviewerID string) (*domain.TransitionResult, error)
	Publish(ctx context.Context, documentID, actorID string) (*domain.TransitionResult, error)
	HandOver(ctx context.Context, req domain.HandoverRequest) (*domain.TransitionResult, error)
	ConvertToPending(ctx context.Context, documentID, adminID string) (*domain.TransitionResult, error)
	ReleaseLock(ctx context.Context, documentID, workerID string) error
	ReclaimLock(ctx context.Context, documentID, adminID string) error
}

// DocumentReader is the inbound read model; current content is resolved on every call.
type DocumentReader interface {
	View(ctx context.Context, documentID string) (*domain.DocumentView, error)
	Versions(ctx context.Context, documentID string) ([]domain.Version, error)
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)
}

// FavoriteService manages per-worker favorite documents.
type FavoriteService interface {
	Add(ctx context.Context, workerID, documentID string) error
	Remove(ctx context.Context, workerID, documentID string) error
	List(ctx context.Context, workerID string) ([]domain.Favorite, error)
}

// EventRecorder persists lifecycle events delivered to the worker.
type EventRecorder interface {
	Record(ctx context.Context, event domain.LifecycleEvent) error
}

// EventHistory reads the persisted audit trail of one document.
type EventHistory interface {
	History(ctx context.Context, documentID string) ([]domain.LifecycleEvent, error)
}
