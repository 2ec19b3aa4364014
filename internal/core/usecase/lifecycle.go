package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
)

const actionCreateDocument domain.Action = "create_document"

// LifecycleUseCase coordinates status transitions with the lock, version and handover stores.
// Every transition runs inside one unit of work; events are published only after commit.
type LifecycleUseCase struct {
	uow       ports.UnitOfWork
	identity  ports.IdentityProvider
	publisher ports.EventPublisher
	now       func() time.Time
}

func NewLifecycleUseCase(
	uow ports.UnitOfWork,
	identity ports.IdentityProvider,
	publisher ports.EventPublisher,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		uow:       uow,
		identity:  identity,
		publisher: publisher,
		now:       utcNow,
	}
}

// WithClock overrides the time source used for lock acquisition and handovers.
func (uc *LifecycleUseCase) WithClock(now func() time.Time) *LifecycleUseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

type applyFunc func(ctx context.Context, repos ports.Repositories, doc *domain.Document, result *domain.TransitionResult) error

func (uc *LifecycleUseCase) CreateDocument(ctx context.Context, req domain.CreateDocumentRequest) (*domain.TransitionResult, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create document", errors.New("title is required"))
	}
	if strings.TrimSpace(req.OriginalContent) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create document", errors.New("original content is required"))
	}

	now := uc.now()
	doc := &domain.Document{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(req.Title),
		Status:     domain.StatusDraft,
		CategoryID: strings.TrimSpace(req.CategoryID),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	result := &domain.TransitionResult{}

	err := uc.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		if err := repos.Documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		original, err := repos.Versions.Append(ctx, domain.NewVersion{
			DocumentID: doc.ID,
			Type:       domain.VersionOriginal,
			Content:    req.OriginalContent,
			CreatedBy:  req.CreatedBy,
		})
		if err != nil {
			return fmt.Errorf("append original version: %w", err)
		}
		result.AppendedVersion = &original

		if strings.TrimSpace(req.AIDraftContent) != "" {
			draft, err := repos.Versions.Append(ctx, domain.NewVersion{
				DocumentID: doc.ID,
				Type:       domain.VersionAIDraft,
				Content:    req.AIDraftContent,
				CreatedBy:  req.CreatedBy,
			})
			if err != nil {
				return fmt.Errorf("append ai draft: %w", err)
			}
			result.AppendedVersion = &draft
		}

		if err := refreshVersionPointer(ctx, repos, doc); err != nil {
			return err
		}
		result.Document = *doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, domain.LifecycleEvent{
		DocumentID:    doc.ID,
		Action:        actionCreateDocument,
		FromStatus:    domain.StatusDraft,
		ToStatus:      domain.StatusDraft,
		ActorID:       req.CreatedBy,
		VersionNumber: result.AppendedVersion.Number,
	})
	return result, nil
}

func (uc *LifecycleUseCase) RequestTranslation(ctx context.Context, documentID, actorID, aiDraft string) (*domain.TransitionResult, error) {
	return uc.transition(ctx, documentID, actorID, domain.ActionRequestTranslation,
		func(ctx context.Context, repos ports.Repositories, doc *domain.Document, result *domain.TransitionResult) error {
			versions, err := repos.Versions.ListByDocument(ctx, doc.ID)
			if err != nil {
				return fmt.Errorf("list versions: %w", err)
			}
			if _, ok := domain.LatestOfType(versions, domain.VersionOriginal); !ok {
				return domain.NewInvalidTransition(doc, domain.ActionRequestTranslation, "original version is missing")
			}
			if strings.TrimSpace(aiDraft) == "" {
				return nil
			}
			if _, ok := domain.LatestOfType(versions, domain.VersionAIDraft); ok {
				return domain.WrapError(domain.ErrInvalidInput, "request translation", errors.New("ai draft already exists"))
			}
			return appendVersion(ctx, repos, doc, domain.VersionAIDraft, aiDraft, actorID, result)
		})
}

// StartTranslation moves a pending document into translation and locks it for workerID.
func (uc *LifecycleUseCase) StartTranslation(ctx context.Context, documentID, workerID string) (*domain.TransitionResult, error) {
	return uc.transition(ctx, documentID, workerID, domain.ActionStartTranslation, uc.lockFor(workerID))
}

// ResumeTranslation locks a document already in translation, e.g. after a rejection or handover.
func (uc *LifecycleUseCase) ResumeTranslation(ctx context.Context, documentID, workerID string) (*domain.TransitionResult, error) {
	return uc.transition(ctx, documentID, workerID, domain.ActionResumeTranslation, uc.lockFor(workerID))
}

func (uc *LifecycleUseCase) lockFor(workerID string) applyFunc {
	return func(ctx context.Context, repos ports.Repositories, doc *domain.Document, result *domain.TransitionResult) error {
		lock, err := uc.locksIn(repos).Acquire(ctx, doc.ID, workerID)
		if err != nil {
			return err
		}
		result.Lock = lock
		return nil
	}
}

// locksIn binds a LockManager to the lock store of the current unit of work.
func (uc *LifecycleUseCase) locksIn(repos ports.Repositories) *LockManager {
	return NewLockManager(repos.Locks, uc.identity).WithClock(uc.now)
}

func (uc *LifecycleUseCase) SaveDraft(ctx context.Context, documentID, workerID, content string) (*domain.TransitionResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "save draft", errors.New("content is required"))
	}
	return uc.transition(ctx, documentID, workerID, domain.ActionSaveDraft,
		func(ctx context.Context, repos ports.Repositories, doc *domain.Document, result *domain.TransitionResult) error {
			lock, err := requireHolder(ctx, repos.Locks, doc, domain.ActionSaveDraft, workerID)
			if err != nil {
				return err
			}
			result.Lock = lock
			return appendVersion(ctx, repos, doc, domain.VersionManualTranslation, content, workerID, result)
		})
}

// SubmitForReview appends the translation first and treats lock release as cleanup in the same unit of work.
// Empty content submits the current working translation unchanged.
func (uc *LifecycleUseCase) SubmitForReview(ctx context.Context, documentID, workerID, content string) (*domain.TransitionResult, error) {
	return uc.transition(ctx, documentID, workerID, domain.ActionSubmitForReview,
		func(ctx context.Context, repos ports.Repositories, doc *domain.Document, result *domain.TransitionResult) error {
			if _, err := requireHolder(ctx, repos.Locks, doc, domain.ActionSubmitForReview, workerID); err != nil {
				return err
			}
			if strings.TrimSpace(content) == "" {
				current, err := resolveFor(ctx, repos, doc, domain.StatusInTranslation)
				if domain.IsKind(err, domain.ErrVersionNotFound) {
					return domain.WrapError(domain.ErrInvalidInput, "submit for review", errors.New("no translation content to submit"))
				}
				if err != nil {
					return err
				}
				content = current.Content
			}
			if err := appendVersion(ctx, repos, doc, domain.VersionManualTranslation, content, workerID, result); err != nil {
				return err
			}
			if err := uc.locksIn(repos).Release(ctx, doc.ID, workerID); err != nil {
				return err
			}
			if err := repos.Handovers.Delete(ctx, doc.ID); err != nil {
				return fmt.Errorf("clear handover: %w", err)
			}
			return nil
		})
}

// Approve appends a FINAL version; empty content finalizes the submitted translation as-is.
// A FINAL left over from an earlier review cycle is never reused.
func (uc *LifecycleUseCase) Approve(ctx context.Context, documentID, reviewerID, content string) (*domain.TransitionResult, error) {
	return uc.transition(ctx, documentID, reviewerID, domain.ActionApprove,
		func(ctx context.Context, repos ports.Repositories, doc *domain.Document, result *domain.TransitionResult) error {
			if strings.TrimSpace(content) == "" {
				versions, err := repos.Versions.ListByDocument(ctx, doc.ID)
				if err != nil {
					return fmt.Errorf("list versions: %w", err)
				}
				submitted, ok := domain.LatestOfType(versions, domain.VersionManualTranslation)
				if !ok {
					return domain.WrapError(domain.ErrVersionNotFound, "approve",
						fmt.Errorf("document %s has no submitted translation", doc.ID))
				}
				content = submitted.Content
			}
			return appendVersion(ctx, repos, doc, domain.VersionFinal, content, reviewerID, result)
		})
}

func (uc *LifecycleUseCase) Reject(ctx context.Context, documentID, reviewerID string) (*domain.TransitionResult, error) {
	return uc.transition(ctx, documentID, reviewerID, domain.ActionReject, noSideEffects)
}

func (uc *LifecycleUseCase) Publish(ctx context.Context, documentID, actorID string) (*domain.TransitionResult, error) {
	return uc.transition(ctx, documentID, actorID, domain.ActionPublish, noSideEffects)
}

// HandOver releases the requester's lock and records context for the next worker; status is unchanged.
func (uc *LifecycleUseCase) HandOver(ctx context.Context, req domain.HandoverRequest) (*domain.TransitionResult, error) {
	if strings.TrimSpace(req.Memo) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "hand over", errors.New("memo is required"))
	}
	return uc.transition(ctx, req.DocumentID, req.WorkerID, domain.ActionHandOver,
		func(ctx context.Context, repos ports.Repositories, doc *domain.Document, result *domain.TransitionResult) error {
			lock, err := requireHolder(ctx, repos.Locks, doc, domain.ActionHandOver, req.WorkerID)
			if err != nil {
				return err
			}
			if strings.TrimSpace(req.Content) != "" {
				if err := appendVersion(ctx, repos, doc, domain.VersionManualTranslation, req.Content, req.WorkerID, result); err != nil {
					return err
				}
			}

			handover := &domain.Handover{
				ID:             uuid.NewString(),
				DocumentID:     doc.ID,
				Memo:           strings.TrimSpace(req.Memo),
				TermsNotes:     strings.TrimSpace(req.TermsNotes),
				CompletedUnits: domain.NormalizeUnits(lock.CompletedUnits),
				WorkerID:       req.WorkerID,
				WorkerName:     displayName(ctx, uc.identity, req.WorkerID),
				CreatedAt:      uc.now(),
			}
			if err := repos.Handovers.Save(ctx, handover); err != nil {
				return fmt.Errorf("save handover: %w", err)
			}
			if err := uc.locksIn(repos).Release(ctx, doc.ID, req.WorkerID); err != nil {
				return err
			}
			result.Handover = handover
			return nil
		})
}

// ConvertToPending returns handed-over work to the pending pool, copying the latest
// translation forward into a new version. Untranslated documents get no new version.
// The handover stays for display.
func (uc *LifecycleUseCase) ConvertToPending(ctx context.Context, documentID, adminID string) (*domain.TransitionResult, error) {
	return uc.transition(ctx, documentID, adminID, domain.ActionConvertToPending,
		func(ctx context.Context, repos ports.Repositories, doc *domain.Document, result *domain.TransitionResult) error {
			handover, err := repos.Handovers.GetByDocument(ctx, doc.ID)
			if err != nil {
				if domain.IsKind(err, domain.ErrHandoverNotFound) {
					return domain.NewInvalidTransition(doc, domain.ActionConvertToPending, "no handover recorded")
				}
				return fmt.Errorf("load handover: %w", err)
			}
			lock, err := repos.Locks.Get(ctx, doc.ID)
			switch {
			case err == nil:
				return domain.NewInvalidTransition(doc, domain.ActionConvertToPending,
					fmt.Sprintf("document is locked by %s", displayName(ctx, uc.identity, lock.HolderID)))
			case !domain.IsKind(err, domain.ErrLockNotFound):
				return fmt.Errorf("load lock: %w", err)
			}

			versions, err := repos.Versions.ListByDocument(ctx, doc.ID)
			if err != nil {
				return fmt.Errorf("list versions: %w", err)
			}
			if latest, ok := domain.LatestTranslation(versions); ok {
				if err := appendVersion(ctx, repos, doc, domain.VersionManualTranslation, latest.Content, adminID, result); err != nil {
					return err
				}
			}
			handover.WorkerName = displayName(ctx, uc.identity, handover.WorkerID)
			result.Handover = handover
			return nil
		})
}

func (uc *LifecycleUseCase) ReleaseLock(ctx context.Context, documentID, workerID string) error {
	_, err := uc.transition(ctx, documentID, workerID, domain.ActionReleaseLock,
		func(ctx context.Context, repos ports.Repositories, doc *domain.Document, _ *domain.TransitionResult) error {
			return uc.locksIn(repos).Release(ctx, doc.ID, workerID)
		})
	return err
}

// ReclaimLock destroys the lock whoever holds it; versions and status are untouched.
func (uc *LifecycleUseCase) ReclaimLock(ctx context.Context, documentID, adminID string) error {
	_, err := uc.transition(ctx, documentID, adminID, domain.ActionReclaimLock,
		func(ctx context.Context, repos ports.Repositories, doc *domain.Document, _ *domain.TransitionResult) error {
			existed, err := uc.locksIn(repos).Reclaim(ctx, doc.ID, adminID)
			if err != nil {
				return err
			}
			if !existed {
				return domain.NewInvalidTransition(doc, domain.ActionReclaimLock, "no active lock")
			}
			return nil
		})
	return err
}

func (uc *LifecycleUseCase) transition(
	ctx context.Context,
	documentID, actorID string,
	action domain.Action,
	apply applyFunc,
) (*domain.TransitionResult, error) {
	if err := requireIDs(string(action), documentID, actorID); err != nil {
		return nil, err
	}

	var from domain.DocumentStatus
	result := &domain.TransitionResult{}
	err := uc.uow.Do(ctx, func(ctx context.Context, repos ports.Repositories) error {
		doc, err := repos.Documents.GetByID(ctx, documentID)
		if err != nil {
			return fmt.Errorf("load document: %w", err)
		}
		from = doc.Status

		next, err := domain.NextStatus(doc, action)
		if err != nil {
			return err
		}
		if err := apply(ctx, repos, doc, result); err != nil {
			return err
		}
		if next != doc.Status {
			if err := repos.Documents.UpdateStatus(ctx, doc.ID, next); err != nil {
				return fmt.Errorf("update status: %w", err)
			}
			doc.Status = next
			doc.UpdatedAt = uc.now()
		}
		if err := refreshVersionPointer(ctx, repos, doc); err != nil {
			return err
		}
		result.Document = *doc
		return nil
	})
	if err != nil {
		slog.Debug("lifecycle_transition_rejected",
			"document_id", documentID,
			"action", string(action),
			"actor_id", actorID,
			"error", err,
		)
		return nil, err
	}

	slog.Info("lifecycle_transition",
		"document_id", documentID,
		"action", string(action),
		"from", string(from),
		"to", string(result.Document.Status),
		"actor_id", actorID,
	)
	event := domain.LifecycleEvent{
		DocumentID: documentID,
		Action:     action,
		FromStatus: from,
		ToStatus:   result.Document.Status,
		ActorID:    actorID,
	}
	if result.AppendedVersion != nil {
		event.VersionNumber = result.AppendedVersion.Number
	}
	uc.publish(ctx, event)
	return result, nil
}

// publish is best-effort: the transition has already committed.
func (uc *LifecycleUseCase) publish(ctx context.Context, event domain.LifecycleEvent) {
	if uc.publisher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = uc.now()
	if err := uc.publisher.PublishLifecycleEvent(ctx, event); err != nil {
		slog.Warn("event_publish_failed",
			"document_id", event.DocumentID,
			"action", string(event.Action),
			"error", err,
		)
	}
}

func noSideEffects(context.Context, ports.Repositories, *domain.Document, *domain.TransitionResult) error {
	return nil
}

func appendVersion(
	ctx context.Context,
	repos ports.Repositories,
	doc *domain.Document,
	versionType domain.VersionType,
	content, actorID string,
	result *domain.TransitionResult,
) error {
	version, err := repos.Versions.Append(ctx, domain.NewVersion{
		DocumentID: doc.ID,
		Type:       versionType,
		Content:    content,
		CreatedBy:  actorID,
	})
	if err != nil {
		return fmt.Errorf("append %s version: %w", strings.ToLower(string(versionType)), err)
	}
	result.AppendedVersion = &version
	return nil
}

func resolveFor(ctx context.Context, repos ports.Repositories, doc *domain.Document, status domain.DocumentStatus) (domain.Version, error) {
	versions, err := repos.Versions.ListByDocument(ctx, doc.ID)
	if err != nil {
		return domain.Version{}, fmt.Errorf("list versions: %w", err)
	}
	current, ok := domain.ResolveCurrentVersion(status, versions)
	if !ok {
		return domain.Version{}, domain.WrapError(
			domain.ErrVersionNotFound,
			"resolve current version",
			fmt.Errorf("document %s has no version for status %s", doc.ID, status),
		)
	}
	return current, nil
}

// refreshVersionPointer re-resolves after any append; the stored pointer is only a hint for readers.
func refreshVersionPointer(ctx context.Context, repos ports.Repositories, doc *domain.Document) error {
	versions, err := repos.Versions.ListByDocument(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}
	pointer := ""
	if current, ok := domain.ResolveCurrentVersion(doc.Status, versions); ok {
		pointer = current.ID
	}
	if pointer == doc.CurrentVersionID {
		return nil
	}
	if err := repos.Documents.SetCurrentVersionPointer(ctx, doc.ID, pointer); err != nil {
		return fmt.Errorf("set current version pointer: %w", err)
	}
	doc.CurrentVersionID = pointer
	return nil
}
