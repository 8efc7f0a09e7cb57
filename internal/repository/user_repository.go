package repository

import (
	"context"
	"strings"

	"hireflow/internal/database"
	"hireflow/internal/domain/user"

	"github.com/google/uuid"
)

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&exists)
	return exists, err
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, u user.User) error {
	return database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
			u.ID, u.Email, u.PasswordHash,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT DO NOTHING`, u.ID)
		return err
	})
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`, id))
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return scanUser(r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`, email))
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

const profileColumns = `user_id, full_name, company_name, role, created_at, updated_at`

func scanProfile(row database.Row) (user.Profile, error) {
	var p user.Profile
	if err := row.Scan(&p.UserID, &p.FullName, &p.CompanyName, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if isNoRows(err) {
			return user.Profile{}, user.ErrProfileNotFound
		}
		return user.Profile{}, err
	}
	return p, nil
}

func (r *PostgresProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID))
}

func (r *PostgresProfileRepository) UpsertProfile(ctx context.Context, p user.Profile) (user.Profile, error) {
	return scanProfile(r.db.QueryRow(ctx,
		`INSERT INTO profiles (user_id, full_name, company_name, role)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			company_name = EXCLUDED.company_name,
			role = EXCLUDED.role,
			updated_at = now()
		 RETURNING `+profileColumns,
		p.UserID, p.FullName, p.CompanyName, p.Role,
	))
}
