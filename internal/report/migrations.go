package report

import (
	"context"
	"database/sql"
	"strings"
)

// schema contains the DDL for the report tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS batches (
		id            TEXT PRIMARY KEY,
		workflow_path TEXT NOT NULL,
		state         TEXT NOT NULL DEFAULT 'PENDING',
		created_at    TEXT NOT NULL,
		completed_at  TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id           TEXT PRIMARY KEY,
		batch_id     TEXT NOT NULL,
		group_index  INTEGER NOT NULL DEFAULT 0,
		state        TEXT NOT NULL DEFAULT 'PENDING',
		phase        TEXT NOT NULL DEFAULT '',
		cause        TEXT NOT NULL DEFAULT '',
		exit_code    INTEGER NOT NULL DEFAULT 0,
		outputs      TEXT NOT NULL DEFAULT '{}',
		started_at   TEXT NOT NULL,
		completed_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_batches_state ON batches(state)`,
	`CREATE INDEX IF NOT EXISTS idx_batches_created_at ON batches(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_batch_id ON jobs(batch_id)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_state ON jobs(state)`,
}

// alterStatements are column additions that need special handling since
// SQLite doesn't support IF NOT EXISTS for ALTER TABLE ADD COLUMN.
var alterStatements = []struct {
	table    string
	column   string
	alterSQL string
}{
	// Secondary cause for jobs whose post-process also failed after a
	// failed execution.
	{
		table:    "jobs",
		column:   "secondary",
		alterSQL: "ALTER TABLE jobs ADD COLUMN secondary TEXT NOT NULL DEFAULT ''",
	},
}

// migrate executes all schema DDL statements and alter migrations.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, alter := range alterStatements {
		if err := addColumnIfNotExists(ctx, db, alter.table, alter.column, alter.alterSQL); err != nil {
			return err
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(ctx context.Context, db *sql.DB, table, column, alterSQL string) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue *string
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if strings.EqualFold(name, column) {
			return nil // Column already exists
		}
	}

	_, err = db.ExecContext(ctx, alterSQL)
	return err
}
