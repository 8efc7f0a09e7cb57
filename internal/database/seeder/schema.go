package seeder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"hireflow/internal/database"
)

var errSchemaMismatch = errors.New("schema mismatch")

// RequireColumns fails unless every named column exists on table in the
// connection's current schema. All missing columns are reported at once, so a
// stale database shows the whole gap after a single seed attempt.
func RequireColumns(ctx context.Context, q database.Querier, table string, columns ...string) error {
	if q == nil {
		return errors.New("nil db")
	}
	if table == "" || slices.Contains(columns, "") {
		return errors.New("table and column names must be non-empty")
	}

	rows, err := q.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = current_schema() AND table_name = $1`,
		table,
	)
	if err != nil {
		return fmt.Errorf("read columns of %s: %w", table, err)
	}
	defer rows.Close()

	have := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		have[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, col := range columns {
		if !have[col] {
			missing = append(missing, table+"."+col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s (run migrations first)", errSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}
