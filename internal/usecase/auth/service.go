package auth

import (
	"context"
	"errors"
	"strings"

	"hireflow/internal/domain/user"
	"hireflow/internal/pkg/jwt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidRefreshToken    = errors.New("invalid refresh token")
	ErrRefreshTokenExpired    = errors.New("refresh token expired")
	ErrInternal               = errors.New("internal error")
)

const minPasswordLength = 8

type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	CompanyName string
}

type LoginInput struct {
	Email    string
	Password string
}

// Session is a signed-in user with a fresh token pair.
type Session struct {
	User         user.User
	AccessToken  string
	RefreshToken string
}

type Usecase interface {
	Register(ctx context.Context, in RegisterInput) (Session, error)
	Login(ctx context.Context, in LoginInput) (Session, error)
	Refresh(ctx context.Context, refreshToken string) (Session, error)
}

type Service struct {
	users    user.Repository
	profiles user.ProfileRepository
	jwt      jwt.Service
}

func NewService(users user.Repository, profiles user.ProfileRepository, jwtSvc jwt.Service) *Service {
	return &Service{users: users, profiles: profiles, jwt: jwtSvc}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return Session{}, ErrInvalidInput
	}
	if len(strings.TrimSpace(in.Password)) < minPasswordLength {
		return Session{}, ErrInvalidInput
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return Session{}, ErrInternal
	}
	if exists {
		return Session{}, ErrEmailAlreadyRegistered
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, ErrInternal
	}

	u := user.User{ID: uuid.New(), Email: email, PasswordHash: string(hash)}
	if err := s.users.CreateUser(ctx, u); err != nil {
		// A concurrent registration can win between the check and the insert.
		if exists, exErr := s.users.ExistsByEmail(ctx, email); exErr == nil && exists {
			return Session{}, ErrEmailAlreadyRegistered
		}
		return Session{}, ErrInternal
	}

	if s.profiles != nil && (in.FullName != "" || in.CompanyName != "") {
		_, _ = s.profiles.UpsertProfile(ctx, user.Profile{
			UserID:      u.ID,
			FullName:    strings.TrimSpace(in.FullName),
			CompanyName: strings.TrimSpace(in.CompanyName),
		})
	}

	created, err := s.users.GetUserByID(ctx, u.ID)
	if err != nil {
		return Session{}, ErrInternal
	}
	return s.issue(created)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, ErrInternal
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return Session{}, ErrInvalidRefreshToken
	}

	claims, err := s.jwt.ValidateToken(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrRefreshTokenExpired
		}
		return Session{}, ErrInvalidRefreshToken
	}
	if !s.jwt.IsRefreshToken(claims) {
		return Session{}, ErrInvalidRefreshToken
	}

	u, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, ErrInvalidRefreshToken
		}
		return Session{}, ErrInternal
	}
	return s.issue(u)
}

func (s *Service) issue(u user.User) (Session, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return Session{}, ErrInternal
	}
	refresh, err := s.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return Session{}, ErrInternal
	}
	u.PasswordHash = ""
	return Session{User: u, AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
