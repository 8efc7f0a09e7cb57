package profile

import (
	"context"
	"errors"
	"strings"

	"hireflow/internal/domain/user"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

type UpdateInput struct {
	FullName    *string
	CompanyName *string
	Role        *string
}

type Service struct {
	profiles user.ProfileRepository
}

func NewService(profiles user.ProfileRepository) *Service {
	return &Service{profiles: profiles}
}

// Get returns the stored profile, or an empty one for users that never
// saved theirs.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (user.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrProfileNotFound) {
			return user.Profile{UserID: userID}, nil
		}
		return user.Profile{}, ErrInternal
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, userID uuid.UUID, in UpdateInput) (user.Profile, error) {
	if in.FullName == nil && in.CompanyName == nil && in.Role == nil {
		return user.Profile{}, ErrInvalidInput
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return user.Profile{}, err
	}
	if in.FullName != nil {
		p.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.CompanyName != nil {
		p.CompanyName = strings.TrimSpace(*in.CompanyName)
	}
	if in.Role != nil {
		p.Role = strings.TrimSpace(*in.Role)
	}

	updated, err := s.profiles.UpsertProfile(ctx, p)
	if err != nil {
		return user.Profile{}, ErrInternal
	}
	return updated, nil
}
