// Package postgres persists the submission journal: an append-only
// audit of every orchestrated write. With no server-side transaction
// around a multi-form submission, the journal is what reconstructs a
// partially-applied one.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
)

type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (j *Journal) EnsureSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrently starting replicas.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026041702)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS submission_journal (
	id BIGSERIAL PRIMARY KEY,
	session_id TEXT NOT NULL,
	document_id BIGINT NOT NULL,
	step TEXT NOT NULL,
	outcome TEXT NOT NULL,
	detail TEXT,
	recorded_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submission_journal_document ON submission_journal(document_id, recorded_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (j *Journal) Record(ctx context.Context, entry domain.JournalEntry) error {
	at := entry.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO submission_journal (session_id, document_id, step, outcome, detail, recorded_at)
VALUES ($1,$2,$3,$4,$5,$6)
`, entry.SessionID, entry.DocumentID, entry.Step, entry.Outcome, entry.Detail, at)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// RecentForDocument lists the latest journal entries of a document,
// newest first.
func (j *Journal) RecentForDocument(ctx context.Context, documentID int64, limit int) ([]domain.JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT session_id, document_id, step, outcome, COALESCE(detail, ''), recorded_at
FROM submission_journal
WHERE document_id = $1
ORDER BY recorded_at DESC
LIMIT $2
`, documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		if err := rows.Scan(&e.SessionID, &e.DocumentID, &e.Step, &e.Outcome, &e.Detail, &e.At); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}
