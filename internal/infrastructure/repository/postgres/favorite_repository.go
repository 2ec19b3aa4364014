package postgres

import (
	"context"
	"database/sql"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

type FavoriteRepository struct {
	db dbtx
}

func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) AddFavorite(ctx context.Context, favorite domain.Favorite) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO favorites (worker_id, document_id, created_at)
VALUES ($1,$2,$3)
ON CONFLICT (worker_id, document_id) DO NOTHING
`, favorite.WorkerID, favorite.DocumentID, favorite.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.WrapError(domain.ErrDocumentNotFound, "add favorite", err)
		}
		return unavailable("add favorite", err)
	}
	return nil
}

func (r *FavoriteRepository) RemoveFavorite(ctx context.Context, workerID, documentID string) error {
	_, err := r.db.ExecContext(ctx, `
DELETE FROM favorites
WHERE worker_id = $1 AND document_id = $2
`, workerID, documentID)
	if err != nil {
		return unavailable("remove favorite", err)
	}
	return nil
}

func (r *FavoriteRepository) ListFavorites(ctx context.Context, workerID string) ([]domain.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT worker_id, document_id, created_at
FROM favorites
WHERE worker_id = $1
ORDER BY created_at DESC, document_id
`, workerID)
	if err != nil {
		return nil, unavailable("list favorites", err)
	}
	defer rows.Close()

	out := make([]domain.Favorite, 0)
	for rows.Next() {
		var f domain.Favorite
		if err := rows.Scan(&f.WorkerID, &f.DocumentID, &f.CreatedAt); err != nil {
			return nil, unavailable("scan favorite", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate favorites", err)
	}
	return out, nil
}
