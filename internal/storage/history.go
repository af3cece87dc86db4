// Package storage persists swept job records so clients can still poll
// results after the in-memory registry has been garbage collected.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	// import db drivers
	_ "github.com/lib/pq"

	"github.com/sevigo/pr-warden/internal/core"
)

// Store defines the job history operations.
type Store interface {
	ArchiveJobs(ctx context.Context, jobs []*core.Job) error
	GetJob(ctx context.Context, id string) (*core.Job, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a Store over the given connection pool.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

// ArchiveJobs inserts the swept records in one transaction. Re-archiving
// an id is a no-op, so a crashed sweep can safely repeat.
func (s *postgresStore) ArchiveJobs(ctx context.Context, jobs []*core.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO job_history (id, action, target, state, result, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	for _, job := range jobs {
		resultJSON, err := marshalNullable(job.Result)
		if err != nil {
			return fmt.Errorf("failed to encode result of job %s: %w", job.ID, err)
		}
		errJSON, err := marshalNullable(job.Err)
		if err != nil {
			return fmt.Errorf("failed to encode error of job %s: %w", job.ID, err)
		}

		if _, err := tx.ExecContext(ctx, query,
			job.ID, job.Action, job.Target, job.State,
			resultJSON, errJSON, job.CreatedAt, job.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to archive job %s: %w", job.ID, err)
		}
	}
	return tx.Commit()
}

// GetJob retrieves an archived job record by id.
func (s *postgresStore) GetJob(ctx context.Context, id string) (*core.Job, error) {
	query := `SELECT id, action, target, state, result, error, created_at, updated_at
		FROM job_history WHERE id = $1`

	row := s.db.QueryRowContext(ctx, query, id)

	var job core.Job
	var resultJSON, errJSON []byte
	err := row.Scan(&job.ID, &job.Action, &job.Target, &job.State, &resultJSON, &errJSON, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.Errf(core.ErrNotFound, "job %s not found", id)
		}
		return nil, err
	}

	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &job.Result); err != nil {
			return nil, fmt.Errorf("failed to decode result of job %s: %w", id, err)
		}
	}
	if len(errJSON) > 0 {
		if err := json.Unmarshal(errJSON, &job.Err); err != nil {
			return nil, fmt.Errorf("failed to decode error of job %s: %w", id, err)
		}
	}
	return &job, nil
}

func marshalNullable(v any) ([]byte, error) {
	switch val := v.(type) {
	case *core.Result:
		if val == nil {
			return nil, nil
		}
	case *core.Error:
		if val == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
