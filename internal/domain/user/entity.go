package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the recruiter-facing account detail; one row per user.
type Profile struct {
	UserID      uuid.UUID
	FullName    string
	CompanyName string
	Role        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
