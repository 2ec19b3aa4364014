package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
)

type DocumentReaderUseCase struct {
	docs      ports.DocumentStore
	versions  ports.VersionStore
	locks     ports.LockStore
	handovers ports.HandoverStore
	identity  ports.IdentityProvider
	counter   ports.UnitCounter
	now       func() time.Time
}

func NewDocumentReaderUseCase(
	docs ports.DocumentStore,
	versions ports.VersionStore,
	locks ports.LockStore,
	handovers ports.HandoverStore,
	identity ports.IdentityProvider,
	counter ports.UnitCounter,
) *DocumentReaderUseCase {
	return &DocumentReaderUseCase{
		docs:      docs,
		versions:  versions,
		locks:     locks,
		handovers: handovers,
		identity:  identity,
		counter:   counter,
		now:       utcNow,
	}
}

func (uc *DocumentReaderUseCase) WithClock(now func() time.Time) *DocumentReaderUseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// View resolves the current version on every call and never trusts the stored pointer.
func (uc *DocumentReaderUseCase) View(ctx context.Context, documentID string) (*domain.DocumentView, error) {
	if err := requireIDs("view document", documentID); err != nil {
		return nil, err
	}
	doc, err := uc.docs.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	versions, err := uc.versions.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	lockState, err := queryLock(ctx, uc.locks, uc.identity, documentID, uc.now())
	if err != nil {
		return nil, err
	}
	handover, err := uc.handover(ctx, documentID)
	if err != nil {
		return nil, err
	}

	view := &domain.DocumentView{
		Document: *doc,
		Lock:     lockState,
		Handover: handover,
	}
	if current, ok := domain.ResolveCurrentVersion(doc.Status, versions); ok {
		view.CurrentVersion = &current
	}
	view.TotalUnits = uc.totalUnits(versions)

	completed := lockState.CompletedUnits
	if !lockState.Locked && handover != nil {
		completed = handover.CompletedUnits
	}
	view.Progress = domain.ComputeProgress(doc.Status, completed, view.TotalUnits)
	return view, nil
}

func (uc *DocumentReaderUseCase) Versions(ctx context.Context, documentID string) ([]domain.Version, error) {
	if err := requireIDs("list versions", documentID); err != nil {
		return nil, err
	}
	if _, err := uc.docs.GetByID(ctx, documentID); err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	versions, err := uc.versions.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

func (uc *DocumentReaderUseCase) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "list documents", fmt.Errorf("unknown status %q", filter.Status))
	}
	docs, err := uc.docs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// totalUnits counts from the ORIGINAL only; translations may split or merge paragraphs.
func (uc *DocumentReaderUseCase) totalUnits(versions []domain.Version) int {
	if uc.counter == nil {
		return 0
	}
	original, ok := domain.LatestOfType(versions, domain.VersionOriginal)
	if !ok {
		return 0
	}
	return uc.counter.CountUnits(original.Content)
}

func (uc *DocumentReaderUseCase) handover(ctx context.Context, documentID string) (*domain.Handover, error) {
	handover, err := uc.handovers.GetByDocument(ctx, documentID)
	if err != nil {
		if domain.IsKind(err, domain.ErrHandoverNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load handover: %w", err)
	}
	handover.WorkerName = displayName(ctx, uc.identity, handover.WorkerID)
	return handover, nil
}
