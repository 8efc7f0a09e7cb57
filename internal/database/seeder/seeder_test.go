package seeder

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"hireflow/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSeeder struct {
	name string
	err  error
	log  *[]string
}

func (s recordingSeeder) Name() string { return s.name }

func (s recordingSeeder) Run(ctx context.Context, db database.DB) error {
	*s.log = append(*s.log, s.name)
	return s.err
}

// columnsDB answers the information_schema query with a fixed column list.
type columnsDB struct {
	database.DB
	columns []string
}

func (d columnsDB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	return &columnRows{cols: d.columns, i: -1}, nil
}

type columnRows struct {
	cols []string
	i    int
}

func (r *columnRows) Close() {}

func (r *columnRows) Err() error {
	return nil
}

func (r *columnRows) Next() bool {
	r.i++
	return r.i < len(r.cols)
}

func (r *columnRows) Scan(dest ...any) error {
	p, ok := dest[0].(*string)
	if !ok {
		return sql.ErrNoRows
	}
	*p = r.cols[r.i]
	return nil
}

func TestRunner_StopsAtFirstFailure(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	r := Runner{Seeders: []Seeder{
		recordingSeeder{name: "a", log: &calls},
		nil,
		recordingSeeder{name: "b", err: boom, log: &calls},
		recordingSeeder{name: "c", log: &calls},
	}}

	err := r.Run(context.Background(), columnsDB{})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "seed b")
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestRunner_NilDB(t *testing.T) {
	assert.Error(t, Runner{}.Run(context.Background(), nil))
}

func TestRequireColumns(t *testing.T) {
	db := columnsDB{columns: []string{"id", "email", "password_hash"}}

	require.NoError(t, RequireColumns(context.Background(), db, "users", "id", "email"))

	err := RequireColumns(context.Background(), db, "users", "id", "role", "team")
	require.ErrorIs(t, err, errSchemaMismatch)
	assert.Contains(t, err.Error(), "users.role, users.team")

	assert.Error(t, RequireColumns(context.Background(), db, "users", ""))
	assert.Error(t, RequireColumns(context.Background(), nil, "users", "id"))
}

func TestDefaultsOrderRecruiterFirst(t *testing.T) {
	seeders := Defaults("correct horse")
	require.Len(t, seeders, 2)
	assert.Equal(t, "demo_recruiter", seeders[0].Name())
	assert.Equal(t, "demo_job", seeders[1].Name())
}

func TestDemoRecruiterSeeder_RejectsShortPassword(t *testing.T) {
	err := DemoRecruiterSeeder{Password: "short"}.Run(context.Background(), columnsDB{})
	assert.Error(t, err)
}
