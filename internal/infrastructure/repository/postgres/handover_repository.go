package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

type HandoverRepository struct {
	db dbtx
}

func NewHandoverRepository(db *sql.DB) *HandoverRepository {
	return &HandoverRepository{db: db}
}

func (r *HandoverRepository) Save(ctx context.Context, handover *domain.Handover) error {
	unitsJSON, err := json.Marshal(domain.NormalizeUnits(handover.CompletedUnits))
	if err != nil {
		return fmt.Errorf("marshal completed units: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO document_handovers (document_id, id, memo, terms_notes, completed_units, worker_id, worker_name, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (document_id) DO UPDATE
SET id = EXCLUDED.id,
	memo = EXCLUDED.memo,
	terms_notes = EXCLUDED.terms_notes,
	completed_units = EXCLUDED.completed_units,
	worker_id = EXCLUDED.worker_id,
	worker_name = EXCLUDED.worker_name,
	created_at = EXCLUDED.created_at
`, handover.DocumentID, handover.ID, handover.Memo, handover.TermsNotes, unitsJSON,
		handover.WorkerID, handover.WorkerName, handover.CreatedAt)
	if err != nil {
		return unavailable("save handover", err)
	}
	return nil
}

func (r *HandoverRepository) GetByDocument(ctx context.Context, documentID string) (*domain.Handover, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, document_id, memo, terms_notes, completed_units, worker_id, worker_name, created_at
FROM document_handovers
WHERE document_id = $1
`, documentID)

	var (
		h        domain.Handover
		unitsRaw []byte
	)
	err := row.Scan(&h.ID, &h.DocumentID, &h.Memo, &h.TermsNotes, &unitsRaw, &h.WorkerID, &h.WorkerName, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrHandoverNotFound, "get handover", fmt.Errorf("document_id=%s", documentID))
		}
		return nil, unavailable("get handover", err)
	}
	units, err := decodeUnits(unitsRaw)
	if err != nil {
		return nil, err
	}
	h.CompletedUnits = units
	return &h, nil
}

func (r *HandoverRepository) Delete(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_handovers WHERE document_id = $1`, documentID); err != nil {
		return unavailable("delete handover", err)
	}
	return nil
}
