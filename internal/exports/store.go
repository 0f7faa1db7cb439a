package exports

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store keeps export jobs in Postgres.
type Store struct {
	db dbConn
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

func (s *Store) Create(ctx context.Context, job Job) (*Job, error) {
	row := s.db.QueryRow(ctx, createJobSQL, job.ID, string(job.Status), job.EntityID, job.EntityType)
	created, err := scanJob(row)
	if err != nil {
		return nil, fmt.Errorf("creating export job: %w", err)
	}
	return created, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	job, err := scanJob(s.db.QueryRow(ctx, getJobSQL, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading export job %s: %w", id, err)
	}
	return job, nil
}

func (s *Store) MarkRunning(ctx context.Context, id string) error {
	return s.update(ctx, id, StatusRunning, "", "")
}

func (s *Store) MarkCompleted(ctx context.Context, id, key string) error {
	return s.update(ctx, id, StatusCompleted, key, "")
}

func (s *Store) MarkFailed(ctx context.Context, id, reason string) error {
	return s.update(ctx, id, StatusFailed, "", reason)
}

func (s *Store) update(ctx context.Context, id string, status Status, key, reason string) error {
	tag, err := s.db.Exec(ctx, updateJobSQL, id, string(status), key, reason)
	if err != nil {
		return fmt.Errorf("updating export job %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanJob(row pgx.Row) (*Job, error) {
	var job Job
	var status string
	if err := row.Scan(
		&job.ID,
		&status,
		&job.EntityID,
		&job.EntityType,
		&job.Key,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		return nil, err
	}
	job.Status = Status(status)
	return &job, nil
}

const jobColumns = `id, status, entity_id, entity_type, object_key, error, created_at, updated_at`

const createJobSQL = `
INSERT INTO export_jobs (id, status, entity_id, entity_type)
VALUES ($1, $2, $3, $4)
RETURNING ` + jobColumns + `;
`

const getJobSQL = `
SELECT ` + jobColumns + `
FROM export_jobs
WHERE id = $1;
`

const updateJobSQL = `
UPDATE export_jobs
SET status     = $2,
    object_key = $3,
    error      = $4,
    updated_at = now()
WHERE id = $1;
`
