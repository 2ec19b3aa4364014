package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

func TestAuditRecordsPublishedEvents(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	docID := f.pendingDocument(t)

	for _, event := range f.publisher.Events() {
		if err := f.audit.Record(ctx, event); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	// Redelivery of the same message is harmless.
	events := f.publisher.Events()
	if err := f.audit.Record(ctx, events[len(events)-1]); err != nil {
		t.Fatalf("Record() redelivery error = %v", err)
	}

	history, err := f.audit.History(ctx, docID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected create and request events, got %+v", history)
	}
	if history[1].Action != domain.ActionRequestTranslation || history[1].ToStatus != domain.StatusPendingTranslation {
		t.Fatalf("unexpected last event: %+v", history[1])
	}
}

func TestAuditRejectsIncompleteEvents(t *testing.T) {
	f := newFixture(t, 0)
	err := f.audit.Record(context.Background(), domain.LifecycleEvent{DocumentID: "doc-1", OccurredAt: time.Now()})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
