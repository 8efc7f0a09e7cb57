package dto

import (
	"time"

	"hireflow/internal/domain/user"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

type ProfileResponse struct {
	UserID      uuid.UUID  `json:"user_id"`
	FullName    string     `json:"full_name"`
	CompanyName string     `json:"company_name"`
	Role        string     `json:"role"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

func NewProfileResponse(p user.Profile) ProfileResponse {
	out := ProfileResponse{
		UserID:      p.UserID,
		FullName:    p.FullName,
		CompanyName: p.CompanyName,
		Role:        p.Role,
	}
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}
