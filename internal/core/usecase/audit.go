package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
)

// AuditUseCase persists lifecycle events consumed by the worker.
type AuditUseCase struct {
	log ports.AuditLog
}

func NewAuditUseCase(log ports.AuditLog) *AuditUseCase {
	return &AuditUseCase{log: log}
}

// Record is idempotent per event id, so redelivered messages are harmless.
func (uc *AuditUseCase) Record(ctx context.Context, event domain.LifecycleEvent) error {
	if event.ID == "" || event.DocumentID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "record event", errors.New("event id and document id are required"))
	}
	if err := uc.log.AppendEvent(ctx, event); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (uc *AuditUseCase) History(ctx context.Context, documentID string) ([]domain.LifecycleEvent, error) {
	if err := requireIDs("event history", documentID); err != nil {
		return nil, err
	}
	events, err := uc.log.ListEvents(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}
