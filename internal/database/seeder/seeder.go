package seeder

import (
	"context"

	"hireflow/internal/database"
)

// Seeder inserts one group of fixture rows. Run must be safe to repeat.
type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}

// Defaults seeds a demo recruiter who owns one job with a weighted
// requirement set, enough to try ingestion and scoring locally. The job
// seeder depends on the recruiter row, so order matters.
func Defaults(password string) []Seeder {
	return []Seeder{
		DemoRecruiterSeeder{Password: password},
		DemoJobSeeder{},
	}
}
