package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/me/gridwe/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "report"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// SaveBatch writes the batch and its jobs in one transaction.
func (s *SQLiteStore) SaveBatch(ctx context.Context, batch *model.BatchReport) error {
	s.logger.Debug("sql", "op", "insert", "table", "batches", "id", batch.ID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var completedAt *string
	if !batch.CompletedAt.IsZero() {
		v := batch.CompletedAt.Format(time.RFC3339Nano)
		completedAt = &v
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO batches (id, workflow_path, state, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		batch.ID, batch.WorkflowPath, string(batch.State),
		batch.CreatedAt.Format(time.RFC3339Nano), completedAt,
	)
	if err != nil {
		return err
	}

	for _, job := range batch.Jobs {
		outputsJSON, err := json.Marshal(job.Outputs)
		if err != nil {
			return fmt.Errorf("marshal outputs: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO jobs (id, batch_id, group_index, state, phase, cause, secondary, exit_code, outputs, started_at, completed_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			job.JobID, job.BatchID, job.GroupIndex, string(job.State),
			string(job.Phase), job.Cause, job.Secondary, job.ExitCode,
			string(outputsJSON),
			job.StartedAt.Format(time.RFC3339Nano),
			job.CompletedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBatch loads one batch with its jobs, or nil if it does not exist.
func (s *SQLiteStore) GetBatch(ctx context.Context, id string) (*model.BatchReport, error) {
	s.logger.Debug("sql", "op", "select", "table", "batches", "id", id)

	var batch model.BatchReport
	var state, createdAt string
	var completedAt *string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, workflow_path, state, created_at, completed_at
		 FROM batches WHERE id = ?`, id,
	).Scan(&batch.ID, &batch.WorkflowPath, &state, &createdAt, &completedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	batch.State = model.BatchState(state)
	batch.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if completedAt != nil {
		batch.CompletedAt, _ = time.Parse(time.RFC3339Nano, *completedAt)
	}

	jobs, err := s.ListJobs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	batch.Jobs = jobs

	return &batch, nil
}

// ListBatches returns a page of batches (jobs not loaded) plus the
// total count matching the filter.
func (s *SQLiteStore) ListBatches(ctx context.Context, opts ListOptions) ([]*model.BatchReport, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "batches", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	var whereClauses []string
	var countArgs []any
	if opts.State != "" {
		whereClauses = append(whereClauses, "state = ?")
		countArgs = append(countArgs, opts.State)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM batches` + whereSQL
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `SELECT id, workflow_path, state, created_at, completed_at
		FROM batches` + whereSQL + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	listArgs := append(countArgs, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var batches []*model.BatchReport
	for rows.Next() {
		var batch model.BatchReport
		var state, createdAt string
		var completedAt *string

		if err := rows.Scan(&batch.ID, &batch.WorkflowPath, &state, &createdAt, &completedAt); err != nil {
			return nil, 0, err
		}
		batch.State = model.BatchState(state)
		batch.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		if completedAt != nil {
			batch.CompletedAt, _ = time.Parse(time.RFC3339Nano, *completedAt)
		}

		batches = append(batches, &batch)
	}
	return batches, total, rows.Err()
}

// ListJobs returns the job reports of one batch in group order.
func (s *SQLiteStore) ListJobs(ctx context.Context, batchID string) ([]model.JobReport, error) {
	s.logger.Debug("sql", "op", "list", "table", "jobs", "batch_id", batchID)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, batch_id, group_index, state, phase, cause, secondary, exit_code, outputs, started_at, completed_at
		 FROM jobs WHERE batch_id = ? ORDER BY group_index`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.JobReport
	for rows.Next() {
		var job model.JobReport
		var state, phase, outputsJSON, startedAt, completedAt string

		if err := rows.Scan(&job.JobID, &job.BatchID, &job.GroupIndex, &state,
			&phase, &job.Cause, &job.Secondary, &job.ExitCode,
			&outputsJSON, &startedAt, &completedAt); err != nil {
			return nil, err
		}

		job.State = model.JobState(state)
		job.Phase = model.Phase(phase)
		if err := json.Unmarshal([]byte(outputsJSON), &job.Outputs); err != nil {
			s.logger.Warn("undecodable outputs column", "job_id", job.JobID, "error", err)
		}
		job.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		job.CompletedAt, _ = time.Parse(time.RFC3339Nano, completedAt)

		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
