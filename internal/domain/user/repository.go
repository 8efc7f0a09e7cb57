package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
)

type Repository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (Profile, error)
	UpsertProfile(ctx context.Context, p Profile) (Profile, error)
}
