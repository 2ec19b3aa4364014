package postgres

import (
	"context"
	"fmt"
)

const schemaLockKey int64 = 2026101701

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	category_id TEXT NOT NULL DEFAULT '',
	current_version_id TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_category ON documents(category_id);
CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents(updated_at DESC);

CREATE TABLE IF NOT EXISTS document_versions (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	number INTEGER NOT NULL,
	type TEXT NOT NULL,
	content TEXT NOT NULL,
	created_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (document_id, number)
);

CREATE TABLE IF NOT EXISTS document_locks (
	document_id TEXT PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
	holder_id TEXT NOT NULL,
	acquired_at TIMESTAMPTZ NOT NULL,
	completed_units JSONB NOT NULL DEFAULT '[]'::jsonb
);

CREATE INDEX IF NOT EXISTS idx_document_locks_acquired_at ON document_locks(acquired_at);

CREATE TABLE IF NOT EXISTS document_handovers (
	document_id TEXT PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
	id TEXT NOT NULL,
	memo TEXT NOT NULL,
	terms_notes TEXT NOT NULL DEFAULT '',
	completed_units JSONB NOT NULL DEFAULT '[]'::jsonb,
	worker_id TEXT NOT NULL,
	worker_name TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS favorites (
	worker_id TEXT NOT NULL,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (worker_id, document_id)
);

CREATE TABLE IF NOT EXISTS lifecycle_events (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	action TEXT NOT NULL,
	from_status TEXT NOT NULL DEFAULT '',
	to_status TEXT NOT NULL,
	actor_id TEXT NOT NULL DEFAULT '',
	version_number INTEGER NOT NULL DEFAULT 0,
	occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lifecycle_events_document ON lifecycle_events(document_id, occurred_at);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
