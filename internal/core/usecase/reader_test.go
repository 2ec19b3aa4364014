package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

func TestViewReportsProgressFromActiveLock(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()
	docID := f.pendingDocument(t)

	view, err := f.reader.View(ctx, docID)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if view.TotalUnits != 4 || view.Progress != 0 {
		t.Fatalf("expected 0%% of 4 units, got %d%% of %d", view.Progress, view.TotalUnits)
	}

	if _, err := f.lifecycle.StartTranslation(ctx, docID, "w-a"); err != nil {
		t.Fatalf("StartTranslation() error = %v", err)
	}
	if _, err := f.locks.RecordProgress(ctx, docID, "w-a", 2); err != nil {
		t.Fatalf("RecordProgress() error = %v", err)
	}
	view, err = f.reader.View(ctx, docID)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if view.Progress != 25 || view.Lock.HolderName != "Alice" {
		t.Fatalf("expected 25%% held by Alice, got %d%% %+v", view.Progress, view.Lock)
	}
}

func TestViewWithoutUnitsReportsZero(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	docID := f.pendingDocument(t)

	if _, err := f.lifecycle.StartTranslation(ctx, docID, "w-a"); err != nil {
		t.Fatalf("StartTranslation() error = %v", err)
	}
	if _, err := f.locks.RecordProgress(ctx, docID, "w-a", 0); err != nil {
		t.Fatalf("RecordProgress() error = %v", err)
	}
	view, err := f.reader.View(ctx, docID)
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
	if view.Progress != 0 {
		t.Fatalf("expected 0%% when total units is unknown, got %d", view.Progress)
	}
}

func TestReaderRejectsUnknownDocumentAndStatus(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	if _, err := f.reader.View(ctx, "missing"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if _, err := f.reader.Versions(ctx, "missing"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	if _, err := f.reader.List(ctx, domain.DocumentFilter{Status: "ARCHIVED"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	pending := f.pendingDocument(t)
	if _, err := f.lifecycle.CreateDocument(ctx, domain.CreateDocumentRequest{Title: "Draft only", OriginalContent: "x"}); err != nil {
		t.Fatalf("CreateDocument() error = %v", err)
	}

	docs, err := f.reader.List(ctx, domain.DocumentFilter{Status: domain.StatusPendingTranslation})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 1 || docs[0].ID != pending {
		t.Fatalf("expected only the pending document, got %+v", docs)
	}
	all, err := f.reader.List(ctx, domain.DocumentFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two documents, got %d", len(all))
	}
}
