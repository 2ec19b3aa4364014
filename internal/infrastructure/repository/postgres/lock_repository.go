package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

type LockRepository struct {
	db dbtx
	// forUpdate holds the lock row until commit so concurrent progress updates wait.
	forUpdate bool
}

func NewLockRepository(db *sql.DB) *LockRepository {
	return &LockRepository{db: db}
}

func (r *LockRepository) Get(ctx context.Context, documentID string) (*domain.Lock, error) {
	query := `
SELECT document_id, holder_id, acquired_at, completed_units
FROM document_locks
WHERE document_id = $1`
	if r.forUpdate {
		query += "\nFOR UPDATE"
	}

	lock, err := scanLock(r.db.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrLockNotFound, "get lock", fmt.Errorf("document_id=%s", documentID))
		}
		return nil, unavailable("get lock", err)
	}
	return &lock, nil
}

// Insert relies on the primary key: a conflicting row leaves zero rows affected.
func (r *LockRepository) Insert(ctx context.Context, lock domain.Lock) error {
	unitsJSON, err := json.Marshal(domain.NormalizeUnits(lock.CompletedUnits))
	if err != nil {
		return fmt.Errorf("marshal completed units: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
INSERT INTO document_locks (document_id, holder_id, acquired_at, completed_units)
VALUES ($1,$2,$3,$4)
ON CONFLICT (document_id) DO NOTHING
`, lock.DocumentID, lock.HolderID, lock.AcquiredAt, unitsJSON)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.WrapError(domain.ErrDocumentNotFound, "insert lock", err)
		}
		return unavailable("insert lock", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return unavailable("insert lock rows affected", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrAlreadyLocked, "insert lock", fmt.Errorf("document_id=%s", lock.DocumentID))
	}
	return nil
}

func (r *LockRepository) Delete(ctx context.Context, documentID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM document_locks WHERE document_id = $1`, documentID)
	if err != nil {
		return false, unavailable("delete lock", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, unavailable("delete lock rows affected", err)
	}
	return rows > 0, nil
}

func (r *LockRepository) DeleteHeldBy(ctx context.Context, documentID, holderID string) error {
	result, err := r.db.ExecContext(ctx, `
DELETE FROM document_locks
WHERE document_id = $1 AND holder_id = $2
`, documentID, holderID)
	if err != nil {
		return unavailable("release lock", err)
	}
	return requireRow(result, "release lock", domain.ErrNotLockHolder, documentID)
}

// AddCompletedUnit appends index to the JSONB set unless it is already present.
func (r *LockRepository) AddCompletedUnit(ctx context.Context, documentID, holderID string, index int) (*domain.Lock, error) {
	lock, err := scanLock(r.db.QueryRowContext(ctx, `
UPDATE document_locks
SET completed_units = CASE
	WHEN completed_units @> jsonb_build_array($3::int) THEN completed_units
	ELSE completed_units || jsonb_build_array($3::int)
END
WHERE document_id = $1 AND holder_id = $2
RETURNING document_id, holder_id, acquired_at, completed_units
`, documentID, holderID, index))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotLockHolder, "record progress", fmt.Errorf("document_id=%s worker_id=%s", documentID, holderID))
		}
		return nil, unavailable("record progress", err)
	}
	return &lock, nil
}

func (r *LockRepository) List(ctx context.Context) ([]domain.Lock, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT document_id, holder_id, acquired_at, completed_units
FROM document_locks
ORDER BY acquired_at ASC, document_id
`)
	if err != nil {
		return nil, unavailable("list locks", err)
	}
	defer rows.Close()

	out := make([]domain.Lock, 0)
	for rows.Next() {
		lock, err := scanLock(rows)
		if err != nil {
			return nil, unavailable("scan lock", err)
		}
		out = append(out, lock)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate locks", err)
	}
	return out, nil
}

func scanLock(row rowScanner) (domain.Lock, error) {
	var (
		lock     domain.Lock
		unitsRaw []byte
	)
	if err := row.Scan(&lock.DocumentID, &lock.HolderID, &lock.AcquiredAt, &unitsRaw); err != nil {
		return domain.Lock{}, err
	}
	units, err := decodeUnits(unitsRaw)
	if err != nil {
		return domain.Lock{}, err
	}
	lock.CompletedUnits = units
	return lock, nil
}

func decodeUnits(raw []byte) ([]int, error) {
	var units []int
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &units); err != nil {
			return nil, fmt.Errorf("unmarshal completed units: %w", err)
		}
	}
	return domain.NormalizeUnits(units), nil
}
