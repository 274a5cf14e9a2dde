package jobstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const jobsSchema = `
CREATE TABLE IF NOT EXISTS analysis_jobs (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	request    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	progress   INT NOT NULL DEFAULT 0,
	message    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS analysis_jobs_created_idx ON analysis_jobs (created_at DESC);
`

// PostgresStore persists jobs through database/sql with the pgx driver.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("jobstore: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("jobstore: ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, jobsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("jobstore: ensure schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Create(ctx context.Context, req Request) (Job, error) {
	now := time.Now().UTC()
	job := Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
		Message:   "Job created",
	}
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return Job{}, fmt.Errorf("jobstore: encode request: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analysis_jobs (id, status, request, created_at, updated_at, progress, message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.Status, reqJSON, job.CreatedAt, job.UpdatedAt, job.Progress, job.Message)
	if err != nil {
		return Job{}, fmt.Errorf("jobstore: insert job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Job, error) {
	return scanJob(s.db.QueryRowContext(ctx,
		`SELECT id, status, request, created_at, updated_at, progress, message
		 FROM analysis_jobs WHERE id = $1`, id))
}

func (s *PostgresStore) Update(ctx context.Context, id string, fn func(*Job)) (Job, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Job{}, fmt.Errorf("jobstore: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	job, err := scanJob(tx.QueryRowContext(ctx,
		`SELECT id, status, request, created_at, updated_at, progress, message
		 FROM analysis_jobs WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return Job{}, err
	}

	fn(&job)
	job.UpdatedAt = time.Now().UTC()

	reqJSON, err := json.Marshal(job.Request)
	if err != nil {
		return Job{}, fmt.Errorf("jobstore: encode request: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE analysis_jobs SET status = $2, request = $3, updated_at = $4, progress = $5, message = $6
		 WHERE id = $1`,
		job.ID, job.Status, reqJSON, job.UpdatedAt, job.Progress, job.Message)
	if err != nil {
		return Job{}, fmt.Errorf("jobstore: update job: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Job{}, fmt.Errorf("jobstore: commit: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) List(ctx context.Context, status Status, limit int) ([]Job, error) {
	query := `SELECT id, status, request, created_at, updated_at, progress, message
	          FROM analysis_jobs`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("jobstore: list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if job.Status == StatusRunning {
		return ErrJobRunning
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM analysis_jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("jobstore: delete job: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var reqJSON []byte
	err := row.Scan(&job.ID, &job.Status, &reqJSON, &job.CreatedAt, &job.UpdatedAt, &job.Progress, &job.Message)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("jobstore: scan job: %w", err)
	}
	if err := json.Unmarshal(reqJSON, &job.Request); err != nil {
		return Job{}, fmt.Errorf("jobstore: decode request: %w", err)
	}
	return job, nil
}
