package repository

import (
	"context"

	"hireflow/internal/database"
	"hireflow/internal/domain/job"

	"github.com/google/uuid"
)

type JobRepository interface {
	Create(ctx context.Context, j job.Job) (job.Job, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (job.Job, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]job.Job, error)
	Update(ctx context.Context, j job.Job) (job.Job, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `id, user_id, title, COALESCE(company, ''), COALESCE(description, ''), COALESCE(location, ''),
	COALESCE(department, ''), COALESCE(salary, ''), created_at, updated_at`

func scanJob(row database.Row) (job.Job, error) {
	var j job.Job
	if err := row.Scan(&j.ID, &j.UserID, &j.Title, &j.Company, &j.Description, &j.Location,
		&j.Department, &j.Salary, &j.CreatedAt, &j.UpdatedAt); err != nil {
		if isNoRows(err) {
			return job.Job{}, ErrJobNotFound
		}
		return job.Job{}, err
	}
	return j, nil
}

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) (job.Job, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO jobs (id, user_id, title, company, description, location, department, salary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+jobColumns,
		j.ID, j.UserID, j.Title, j.Company, j.Description, j.Location, j.Department, j.Salary,
	)
	return scanJob(row)
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (job.Job, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	return scanJob(row)
}

func (r *PostgresJobRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]job.Job, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresJobRepository) Update(ctx context.Context, j job.Job) (job.Job, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE jobs
		 SET title = $1, company = $2, description = $3, location = $4, department = $5, salary = $6, updated_at = now()
		 WHERE id = $7 AND user_id = $8
		 RETURNING `+jobColumns,
		j.Title, j.Company, j.Description, j.Location, j.Department, j.Salary, j.ID, j.UserID,
	)
	return scanJob(row)
}

// Delete removes the job and everything hanging off it through the
// delete_job_cascade routine.
func (r *PostgresJobRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	var deleted bool
	if err := r.db.QueryRow(ctx, `SELECT delete_job_cascade($1, $2)`, id, userID).Scan(&deleted); err != nil {
		return err
	}
	if !deleted {
		return ErrJobNotFound
	}
	return nil
}
