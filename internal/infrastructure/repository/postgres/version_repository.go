package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

type VersionRepository struct {
	db dbtx
}

func NewVersionRepository(db *sql.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

func (r *VersionRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.Version, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, number, type, content, created_by, created_at
FROM document_versions
WHERE document_id = $1
ORDER BY number ASC
`, documentID)
	if err != nil {
		return nil, unavailable("list versions", err)
	}
	defer rows.Close()

	out := make([]domain.Version, 0)
	for rows.Next() {
		var (
			v           domain.Version
			versionType string
		)
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Number, &versionType, &v.Content, &v.CreatedBy, &v.CreatedAt); err != nil {
			return nil, unavailable("scan version", err)
		}
		v.Type = domain.VersionType(versionType)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate versions", err)
	}
	return out, nil
}

// Append numbers the version from the current maximum. UNIQUE(document_id, number)
// rejects a racing append outside a unit of work; the caller sees ErrTemporary and may retry.
func (r *VersionRepository) Append(ctx context.Context, in domain.NewVersion) (domain.Version, error) {
	if in.DocumentID == "" || !in.Type.Valid() {
		return domain.Version{}, fmt.Errorf("append version: %w", domain.ErrInvalidInput)
	}
	v := domain.Version{
		ID:         uuid.NewString(),
		DocumentID: in.DocumentID,
		Type:       in.Type,
		Content:    in.Content,
		CreatedBy:  in.CreatedBy,
		CreatedAt:  time.Now().UTC(),
	}

	err := r.db.QueryRowContext(ctx, `
INSERT INTO document_versions (id, document_id, number, type, content, created_by, created_at)
SELECT $1, $2, COALESCE(MAX(number), 0) + 1, $3, $4, $5, $6
FROM document_versions
WHERE document_id = $2
RETURNING number
`, v.ID, v.DocumentID, string(v.Type), v.Content, v.CreatedBy, v.CreatedAt).Scan(&v.Number)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Version{}, domain.WrapError(domain.ErrTemporary, "append version", err)
		}
		if isForeignKeyViolation(err) {
			return domain.Version{}, domain.WrapError(domain.ErrDocumentNotFound, "append version", err)
		}
		return domain.Version{}, unavailable("append version", err)
	}
	return v, nil
}
