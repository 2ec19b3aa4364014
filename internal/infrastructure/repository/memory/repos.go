package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

type documentRepo struct {
	acc accessor
	now func() time.Time
}

func (r documentRepo) Create(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("create document: %w", domain.ErrInvalidInput)
	}
	st, unlock := r.acc()
	defer unlock()

	if _, exists := st.documents[doc.ID]; exists {
		return fmt.Errorf("create document %s: %w: duplicate id", doc.ID, domain.ErrInvalidInput)
	}
	st.documents[doc.ID] = *doc
	return nil
}

func (r documentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	st, unlock := r.acc()
	defer unlock()

	doc, ok := st.documents[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
	}
	return &doc, nil
}

func (r documentRepo) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	st, unlock := r.acc()
	defer unlock()

	out := make([]domain.Document, 0, len(st.documents))
	for _, doc := range st.documents {
		if filter.Status != "" && doc.Status != filter.Status {
			continue
		}
		if filter.CategoryID != "" && doc.CategoryID != filter.CategoryID {
			continue
		}
		out = append(out, doc)
	}
	sortDocuments(out)
	return out, nil
}

func (r documentRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	st, unlock := r.acc()
	defer unlock()

	doc, ok := st.documents[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "update status", fmt.Errorf("id=%s", id))
	}
	doc.Status = status
	doc.UpdatedAt = r.now()
	st.documents[id] = doc
	return nil
}

func (r documentRepo) SetCurrentVersionPointer(_ context.Context, id, versionID string) error {
	st, unlock := r.acc()
	defer unlock()

	doc, ok := st.documents[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "set version pointer", fmt.Errorf("id=%s", id))
	}
	doc.CurrentVersionID = versionID
	st.documents[id] = doc
	return nil
}

type versionRepo struct {
	acc accessor
	now func() time.Time
}

func (r versionRepo) ListByDocument(_ context.Context, documentID string) ([]domain.Version, error) {
	st, unlock := r.acc()
	defer unlock()

	return append([]domain.Version{}, st.versions[documentID]...), nil
}

func (r versionRepo) Append(_ context.Context, in domain.NewVersion) (domain.Version, error) {
	if in.DocumentID == "" || !in.Type.Valid() {
		return domain.Version{}, fmt.Errorf("append version: %w", domain.ErrInvalidInput)
	}
	st, unlock := r.acc()
	defer unlock()

	if _, ok := st.documents[in.DocumentID]; !ok {
		return domain.Version{}, domain.WrapError(domain.ErrDocumentNotFound, "append version", fmt.Errorf("id=%s", in.DocumentID))
	}
	existing := st.versions[in.DocumentID]
	number := 1
	if n := len(existing); n > 0 {
		number = existing[n-1].Number + 1
	}
	version := domain.Version{
		ID:         uuid.NewString(),
		DocumentID: in.DocumentID,
		Number:     number,
		Type:       in.Type,
		Content:    in.Content,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  r.now(),
	}
	st.versions[in.DocumentID] = append(existing, version)
	return version, nil
}

type lockRepo struct {
	acc accessor
}

func (r lockRepo) Get(_ context.Context, documentID string) (*domain.Lock, error) {
	st, unlock := r.acc()
	defer unlock()

	lock, ok := st.locks[documentID]
	if !ok {
		return nil, domain.WrapError(domain.ErrLockNotFound, "get lock", fmt.Errorf("document_id=%s", documentID))
	}
	return copyLock(lock), nil
}

func (r lockRepo) Insert(_ context.Context, lock domain.Lock) error {
	if lock.DocumentID == "" || lock.HolderID == "" {
		return fmt.Errorf("insert lock: %w", domain.ErrInvalidInput)
	}
	st, unlock := r.acc()
	defer unlock()

	if _, held := st.locks[lock.DocumentID]; held {
		return domain.WrapError(domain.ErrAlreadyLocked, "insert lock", fmt.Errorf("document_id=%s", lock.DocumentID))
	}
	lock.CompletedUnits = domain.NormalizeUnits(lock.CompletedUnits)
	st.locks[lock.DocumentID] = lock
	return nil
}

func (r lockRepo) Delete(_ context.Context, documentID string) (bool, error) {
	st, unlock := r.acc()
	defer unlock()

	_, existed := st.locks[documentID]
	delete(st.locks, documentID)
	return existed, nil
}

func (r lockRepo) DeleteHeldBy(_ context.Context, documentID, holderID string) error {
	st, unlock := r.acc()
	defer unlock()

	lock, ok := st.locks[documentID]
	if !ok || !lock.HeldBy(holderID) {
		return domain.WrapError(domain.ErrNotLockHolder, "release lock", fmt.Errorf("document_id=%s worker_id=%s", documentID, holderID))
	}
	delete(st.locks, documentID)
	return nil
}

func (r lockRepo) AddCompletedUnit(_ context.Context, documentID, holderID string, index int) (*domain.Lock, error) {
	st, unlock := r.acc()
	defer unlock()

	lock, ok := st.locks[documentID]
	if !ok || !lock.HeldBy(holderID) {
		return nil, domain.WrapError(domain.ErrNotLockHolder, "record progress", fmt.Errorf("document_id=%s worker_id=%s", documentID, holderID))
	}
	lock.CompletedUnits = domain.WithUnit(lock.CompletedUnits, index)
	st.locks[documentID] = lock
	return copyLock(lock), nil
}

func (r lockRepo) List(_ context.Context) ([]domain.Lock, error) {
	st, unlock := r.acc()
	defer unlock()

	out := make([]domain.Lock, 0, len(st.locks))
	for _, lock := range st.locks {
		out = append(out, *copyLock(lock))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AcquiredAt.Equal(out[j].AcquiredAt) {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].AcquiredAt.Before(out[j].AcquiredAt)
	})
	return out, nil
}

type handoverRepo struct {
	acc accessor
}

func (r handoverRepo) Save(_ context.Context, handover *domain.Handover) error {
	if handover == nil || handover.DocumentID == "" {
		return fmt.Errorf("save handover: %w", domain.ErrInvalidInput)
	}
	st, unlock := r.acc()
	defer unlock()

	saved := *handover
	saved.CompletedUnits = domain.NormalizeUnits(saved.CompletedUnits)
	st.handovers[saved.DocumentID] = saved
	return nil
}

func (r handoverRepo) GetByDocument(_ context.Context, documentID string) (*domain.Handover, error) {
	st, unlock := r.acc()
	defer unlock()

	handover, ok := st.handovers[documentID]
	if !ok {
		return nil, domain.WrapError(domain.ErrHandoverNotFound, "get handover", fmt.Errorf("document_id=%s", documentID))
	}
	handover.CompletedUnits = append([]int{}, handover.CompletedUnits...)
	return &handover, nil
}

func (r handoverRepo) Delete(_ context.Context, documentID string) error {
	st, unlock := r.acc()
	defer unlock()

	delete(st.handovers, documentID)
	return nil
}

type favoriteRepo struct {
	acc accessor
}

func (r favoriteRepo) AddFavorite(_ context.Context, favorite domain.Favorite) error {
	if favorite.WorkerID == "" || favorite.DocumentID == "" {
		return fmt.Errorf("add favorite: %w", domain.ErrInvalidInput)
	}
	st, unlock := r.acc()
	defer unlock()

	byWorker, ok := st.favorites[favorite.WorkerID]
	if !ok {
		byWorker = make(map[string]domain.Favorite)
		st.favorites[favorite.WorkerID] = byWorker
	}
	if _, exists := byWorker[favorite.DocumentID]; exists {
		return nil
	}
	byWorker[favorite.DocumentID] = favorite
	return nil
}

func (r favoriteRepo) RemoveFavorite(_ context.Context, workerID, documentID string) error {
	st, unlock := r.acc()
	defer unlock()

	delete(st.favorites[workerID], documentID)
	return nil
}

func (r favoriteRepo) ListFavorites(_ context.Context, workerID string) ([]domain.Favorite, error) {
	st, unlock := r.acc()
	defer unlock()

	out := make([]domain.Favorite, 0, len(st.favorites[workerID]))
	for _, favorite := range st.favorites[workerID] {
		out = append(out, favorite)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

type auditRepo struct {
	acc accessor
}

// AppendEvent ignores redelivered events with an ID already stored.
func (r auditRepo) AppendEvent(_ context.Context, event domain.LifecycleEvent) error {
	if event.ID == "" || event.DocumentID == "" {
		return fmt.Errorf("append event: %w", domain.ErrInvalidInput)
	}
	st, unlock := r.acc()
	defer unlock()

	if _, seen := st.eventIDs[event.ID]; seen {
		return nil
	}
	st.eventIDs[event.ID] = struct{}{}
	st.events[event.DocumentID] = append(st.events[event.DocumentID], event)
	return nil
}

func (r auditRepo) ListEvents(_ context.Context, documentID string) ([]domain.LifecycleEvent, error) {
	st, unlock := r.acc()
	defer unlock()

	out := append([]domain.LifecycleEvent{}, st.events[documentID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}
