package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
)

type FavoritesUseCase struct {
	docs      ports.DocumentStore
	favorites ports.FavoriteStore
}

func NewFavoritesUseCase(docs ports.DocumentStore, favorites ports.FavoriteStore) *FavoritesUseCase {
	return &FavoritesUseCase{docs: docs, favorites: favorites}
}

func (uc *FavoritesUseCase) Add(ctx context.Context, workerID, documentID string) error {
	if err := requireIDs("add favorite", workerID, documentID); err != nil {
		return err
	}
	if _, err := uc.docs.GetByID(ctx, documentID); err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if err := uc.favorites.AddFavorite(ctx, domain.Favorite{
		WorkerID:   workerID,
		DocumentID: documentID,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

func (uc *FavoritesUseCase) Remove(ctx context.Context, workerID, documentID string) error {
	if err := requireIDs("remove favorite", workerID, documentID); err != nil {
		return err
	}
	if err := uc.favorites.RemoveFavorite(ctx, workerID, documentID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

func (uc *FavoritesUseCase) List(ctx context.Context, workerID string) ([]domain.Favorite, error) {
	if err := requireIDs("list favorites", workerID); err != nil {
		return nil, err
	}
	favorites, err := uc.favorites.ListFavorites(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favorites, nil
}
