package repository

import (
	"context"

	"hireflow/internal/database"
	"hireflow/internal/domain/job"

	"github.com/google/uuid"
)

// RequirementRepository writes job_requirements and its id-stable mirror
// job_requirements_mapping together; scores reference the mirror.
type RequirementRepository interface {
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]job.Requirement, error)
	Create(ctx context.Context, r job.Requirement) (job.Requirement, error)
	Update(ctx context.Context, r job.Requirement) (job.Requirement, error)
	Delete(ctx context.Context, jobID, id uuid.UUID) error
	ReplaceAll(ctx context.Context, jobID uuid.UUID, reqs []job.Requirement) ([]job.Requirement, error)
}

type PostgresRequirementRepository struct {
	db database.DB
}

func NewPostgresRequirementRepository(db database.DB) *PostgresRequirementRepository {
	return &PostgresRequirementRepository{db: db}
}

const requirementColumns = `id, job_id, COALESCE(category, ''), description, weight, is_required, position, created_at`

func scanRequirement(row database.Row) (job.Requirement, error) {
	var r job.Requirement
	if err := row.Scan(&r.ID, &r.JobID, &r.Category, &r.Description, &r.Weight, &r.IsRequired, &r.Position, &r.CreatedAt); err != nil {
		if isNoRows(err) {
			return job.Requirement{}, ErrRequirementNotFound
		}
		return job.Requirement{}, err
	}
	return r, nil
}

func (r *PostgresRequirementRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]job.Requirement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+requirementColumns+`
		 FROM job_requirements
		 WHERE job_id = $1
		 ORDER BY position ASC, created_at ASC`,
		jobID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]job.Requirement, 0)
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRequirementRepository) Create(ctx context.Context, req job.Requirement) (job.Requirement, error) {
	var created job.Requirement
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if req.Position <= 0 {
			if err := tx.QueryRow(ctx,
				`SELECT COALESCE(MAX(position), 0) + 1 FROM job_requirements WHERE job_id = $1`,
				req.JobID,
			).Scan(&req.Position); err != nil {
				return err
			}
		}
		var err error
		created, err = insertRequirement(ctx, tx, req)
		return err
	})
	if err != nil {
		return job.Requirement{}, err
	}
	return created, nil
}

func insertRequirement(ctx context.Context, q database.Querier, req job.Requirement) (job.Requirement, error) {
	created, err := scanRequirement(q.QueryRow(ctx,
		`INSERT INTO job_requirements (id, job_id, category, description, weight, is_required, position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+requirementColumns,
		req.ID, req.JobID, req.Category, req.Description, req.Weight, req.IsRequired, req.Position,
	))
	if err != nil {
		return job.Requirement{}, err
	}
	if _, err := q.Exec(ctx,
		`INSERT INTO job_requirements_mapping (requirement_id, job_id) VALUES ($1, $2)`,
		created.ID, created.JobID,
	); err != nil {
		return job.Requirement{}, err
	}
	return created, nil
}

func (r *PostgresRequirementRepository) Update(ctx context.Context, req job.Requirement) (job.Requirement, error) {
	return scanRequirement(r.db.QueryRow(ctx,
		`UPDATE job_requirements
		 SET category = $1, description = $2, weight = $3, is_required = $4
		 WHERE id = $5 AND job_id = $6
		 RETURNING `+requirementColumns,
		req.Category, req.Description, req.Weight, req.IsRequired, req.ID, req.JobID,
	))
}

// Delete fails with a foreign key violation while scores reference the
// requirement.
func (r *PostgresRequirementRepository) Delete(ctx context.Context, jobID, id uuid.UUID) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM job_requirements_mapping WHERE requirement_id = $1 AND job_id = $2`,
			id, jobID,
		); err != nil {
			return err
		}
		n, err := tx.Exec(ctx, `DELETE FROM job_requirements WHERE id = $1 AND job_id = $2`, id, jobID)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrRequirementNotFound
		}
		return nil
	})
}

// ReplaceAll swaps the job's requirement set atomically. Positions follow
// slice order.
func (r *PostgresRequirementRepository) ReplaceAll(ctx context.Context, jobID uuid.UUID, reqs []job.Requirement) ([]job.Requirement, error) {
	out := make([]job.Requirement, 0, len(reqs))
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM job_requirements_mapping WHERE job_id = $1`, jobID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM job_requirements WHERE job_id = $1`, jobID); err != nil {
			return err
		}
		for i, req := range reqs {
			req.JobID = jobID
			req.Position = i + 1
			created, err := insertRequirement(ctx, tx, req)
			if err != nil {
				return err
			}
			out = append(out, created)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
