package repository

import (
	"context"

	"hireflow/internal/database"
	"hireflow/internal/domain/job"

	"github.com/google/uuid"
)

type ContextFileRepository interface {
	Create(ctx context.Context, f job.ContextFile) (job.ContextFile, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]job.ContextFile, error)
	Delete(ctx context.Context, jobID, id uuid.UUID) error
}

type PostgresContextFileRepository struct {
	db database.DB
}

func NewPostgresContextFileRepository(db database.DB) *PostgresContextFileRepository {
	return &PostgresContextFileRepository{db: db}
}

const contextFileColumns = `id, job_id, name, content_type, content, created_at`

func scanContextFile(row database.Row) (job.ContextFile, error) {
	var f job.ContextFile
	if err := row.Scan(&f.ID, &f.JobID, &f.Name, &f.ContentType, &f.Content, &f.CreatedAt); err != nil {
		if isNoRows(err) {
			return job.ContextFile{}, ErrContextFileNotFound
		}
		return job.ContextFile{}, err
	}
	return f, nil
}

func (r *PostgresContextFileRepository) Create(ctx context.Context, f job.ContextFile) (job.ContextFile, error) {
	return scanContextFile(r.db.QueryRow(ctx,
		`INSERT INTO job_context_files (id, job_id, name, content_type, content)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+contextFileColumns,
		f.ID, f.JobID, f.Name, f.ContentType, f.Content,
	))
}

func (r *PostgresContextFileRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]job.ContextFile, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+contextFileColumns+` FROM job_context_files WHERE job_id = $1 ORDER BY created_at ASC`,
		jobID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.ContextFile, 0)
	for rows.Next() {
		f, err := scanContextFile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresContextFileRepository) Delete(ctx context.Context, jobID, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM job_context_files WHERE id = $1 AND job_id = $2`, id, jobID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrContextFileNotFound
	}
	return nil
}
