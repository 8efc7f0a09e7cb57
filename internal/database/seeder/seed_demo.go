package seeder

import (
	"context"
	"errors"
	"fmt"

	"hireflow/internal/database"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const DemoEmail = "demo@hireflow.local"

var (
	demoUserID = uuid.MustParse("00000000-0000-4000-8000-00000000d001")
	demoJobID  = uuid.MustParse("00000000-0000-4000-8000-00000000d101")
)

type DemoRecruiterSeeder struct {
	Password string
}

func (DemoRecruiterSeeder) Name() string { return "demo_recruiter" }

func (s DemoRecruiterSeeder) Run(ctx context.Context, db database.DB) error {
	if len(s.Password) < 8 {
		return errors.New("demo password must be at least 8 characters")
	}
	if err := RequireColumns(ctx, db, "users", "id", "email", "password_hash"); err != nil {
		return err
	}
	if err := RequireColumns(ctx, db, "profiles", "user_id", "full_name", "company_name", "role"); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()`,
			demoUserID, DemoEmail, string(hash),
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO profiles (user_id, full_name, company_name, role) VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id) DO NOTHING`,
			demoUserID, "Demo Recruiter", "Hireflow", "Talent Lead",
		)
		return err
	})
}

type DemoJobSeeder struct{}

func (DemoJobSeeder) Name() string { return "demo_job" }

func (DemoJobSeeder) Run(ctx context.Context, db database.DB) error {
	if err := RequireColumns(ctx, db, "job_requirements", "id", "job_id", "category", "description", "weight", "is_required", "position"); err != nil {
		return err
	}

	items := []struct {
		Category    string
		Description string
		Weight      int
		IsRequired  bool
	}{
		{Category: "technical", Description: "Production experience writing Go services", Weight: 10, IsRequired: true},
		{Category: "technical", Description: "PostgreSQL schema design and query tuning", Weight: 8, IsRequired: true},
		{Category: "technical", Description: "Running workloads on Kubernetes", Weight: 5},
		{Category: "soft", Description: "Clear written communication in design reviews", Weight: 6},
		{Category: "experience", Description: "Five or more years building backend systems", Weight: 7},
	}

	return database.WithTx(ctx, db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx,
			`INSERT INTO jobs (id, user_id, title, company, description, location, department)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (id) DO NOTHING`,
			demoJobID, demoUserID, "Senior Backend Engineer", "Hireflow",
			"Own the services behind candidate ingestion and scoring.", "Remote", "Engineering",
		)
		if err != nil {
			return err
		}
		if n == 0 {
			// Already seeded; requirements may have been edited since.
			return nil
		}

		for i, it := range items {
			id := uuid.New()
			if _, err := tx.Exec(ctx,
				`INSERT INTO job_requirements (id, job_id, category, description, weight, is_required, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				id, demoJobID, it.Category, it.Description, it.Weight, it.IsRequired, i+1,
			); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO job_requirements_mapping (requirement_id, job_id) VALUES ($1, $2)`,
				id, demoJobID,
			); err != nil {
				return err
			}
		}
		return nil
	})
}
