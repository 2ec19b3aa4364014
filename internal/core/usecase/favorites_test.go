package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

func TestFavoritesRequireExistingDocument(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	docID := f.pendingDocument(t)
	favorites := NewFavoritesUseCase(f.store.Repositories().Documents, f.store.Favorites())

	if err := favorites.Add(ctx, "w-a", "missing"); !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := favorites.Add(ctx, "w-a", docID); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	list, err := favorites.List(ctx, "w-a")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].DocumentID != docID {
		t.Fatalf("expected a single favorite, got %+v", list)
	}
	if err := favorites.Remove(ctx, "w-a", docID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	list, err = favorites.List(ctx, "w-a")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected no favorites, got %+v", list)
	}
}
