package postgres

import (
	"context"
	"database/sql"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

type AuditRepository struct {
	db dbtx
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// AppendEvent is idempotent on event id so redelivered messages are harmless.
func (r *AuditRepository) AppendEvent(ctx context.Context, event domain.LifecycleEvent) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO lifecycle_events (id, document_id, action, from_status, to_status, actor_id, version_number, occurred_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO NOTHING
`, event.ID, event.DocumentID, string(event.Action), string(event.FromStatus), string(event.ToStatus),
		event.ActorID, event.VersionNumber, event.OccurredAt)
	if err != nil {
		return unavailable("append event", err)
	}
	return nil
}

func (r *AuditRepository) ListEvents(ctx context.Context, documentID string) ([]domain.LifecycleEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, action, from_status, to_status, actor_id, version_number, occurred_at
FROM lifecycle_events
WHERE document_id = $1
ORDER BY occurred_at ASC, id
`, documentID)
	if err != nil {
		return nil, unavailable("list events", err)
	}
	defer rows.Close()

	out := make([]domain.LifecycleEvent, 0)
	for rows.Next() {
		var (
			e                    domain.LifecycleEvent
			action, from, target string
		)
		if err := rows.Scan(&e.ID, &e.DocumentID, &action, &from, &target, &e.ActorID, &e.VersionNumber, &e.OccurredAt); err != nil {
			return nil, unavailable("scan event", err)
		}
		e.Action = domain.Action(action)
		e.FromStatus = domain.DocumentStatus(from)
		e.ToStatus = domain.DocumentStatus(target)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate events", err)
	}
	return out, nil
}
