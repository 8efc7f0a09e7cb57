package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestHMACService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewHMACService("access", "refresh", time.Minute, time.Hour)
	uid := uuid.New()

	tok, err := svc.GenerateAccessToken(uid, "a@b.co")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := svc.ValidateAccessToken(tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != uid || claims.Email != "a@b.co" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestHMACService_RefreshRejectedAsAccess(t *testing.T) {
	svc := NewHMACService("access", "refresh", time.Minute, time.Hour)
	tok, err := svc.GenerateRefreshToken(uuid.New())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := svc.ValidateAccessToken(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
	claims, err := svc.ValidateToken(tok)
	if err != nil || !svc.IsRefreshToken(claims) {
		t.Fatalf("expected refresh token to validate, err=%v", err)
	}
}

func TestHMACService_Expired(t *testing.T) {
	svc := NewHMACService("access", "refresh", time.Minute, time.Hour)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := svc.GenerateAccessToken(uuid.New(), "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.ValidateAccessToken(tok); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}
