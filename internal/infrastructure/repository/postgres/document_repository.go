package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

const documentColumns = `id, title, status, category_id, current_version_id, created_at, updated_at`

type DocumentRepository struct {
	db dbtx
	// forUpdate row-locks documents read inside a unit of work.
	forUpdate bool
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO documents (id, title, status, category_id, current_version_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,NULLIF($5,''),$6,$7)
`, doc.ID, doc.Title, string(doc.Status), doc.CategoryID, doc.CurrentVersionID, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.WrapError(domain.ErrInvalidInput, "insert document", err)
		}
		return unavailable("insert document", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1`
	if r.forUpdate {
		query += "\nFOR UPDATE"
	}

	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, unavailable("get document", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.CategoryID != "" {
		args = append(args, filter.CategoryID)
		clauses = append(clauses, "category_id = $"+strconv.Itoa(len(args)))
	}

	query := "SELECT " + documentColumns + "\nFROM documents\n"
	if len(clauses) > 0 {
		query += "WHERE " + strings.Join(clauses, " AND ") + "\n"
	}
	query += "ORDER BY updated_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list documents", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, unavailable("scan document", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate documents", err)
	}
	return out, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, updated_at = $3
WHERE id = $1
`, id, string(status), time.Now().UTC())
	if err != nil {
		return unavailable("update document status", err)
	}
	return requireRow(result, "update document status", domain.ErrDocumentNotFound, id)
}

func (r *DocumentRepository) SetCurrentVersionPointer(ctx context.Context, id, versionID string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET current_version_id = NULLIF($2,'')
WHERE id = $1
`, id, versionID)
	if err != nil {
		return unavailable("set version pointer", err)
	}
	return requireRow(result, "set version pointer", domain.ErrDocumentNotFound, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (domain.Document, error) {
	var (
		doc       domain.Document
		status    string
		versionID sql.NullString
	)
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&status,
		&doc.CategoryID,
		&versionID,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return domain.Document{}, err
	}
	doc.Status = domain.DocumentStatus(status)
	doc.CurrentVersionID = versionID.String
	return doc, nil
}

func requireRow(result sql.Result, operation string, notFound error, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return unavailable(operation+" rows affected", err)
	}
	if rows == 0 {
		return domain.WrapError(notFound, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}
