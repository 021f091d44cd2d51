package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testmate/testmate-backend/internal/model"
)

func seedUser(t *testing.T, users *fakeUserStore, auth *AuthService, email string, role model.Role, password string, verified bool) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &model.User{
		Name:         "Test User",
		Email:        email,
		PRN:          "PRN-" + uuid.NewString()[:8],
		Stream:       "Computer Science",
		Role:         role,
		PasswordHash: hash,
		Verified:     verified,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	return u
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	svc := NewAuthService(testConfig(), users, newFakeSessionStore())

	student := seedUser(t, users, svc, "student@example.com", model.RoleStudent, "secret123", true)

	t.Run("correct credentials", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, student.Email, "secret123", model.RoleStudent)
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if got.ID != student.ID {
			t.Errorf("wrong user returned")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, student.Email, "not-it", model.RoleStudent)
		if !errors.Is(err, ErrIncorrectPassword) {
			t.Errorf("want ErrIncorrectPassword, got %v", err)
		}
	})

	t.Run("role mismatch reads as unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, student.Email, "secret123", model.RoleTeacher)
		if !errors.Is(err, ErrIncorrectEmail) {
			t.Errorf("want ErrIncorrectEmail, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@example.com", "secret123", model.RoleStudent)
		if !errors.Is(err, ErrIncorrectEmail) {
			t.Errorf("want ErrIncorrectEmail, got %v", err)
		}
	})
}

func TestAuthenticateDeletesUnverified(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserStore()
	svc := NewAuthService(testConfig(), users, newFakeSessionStore())

	u := seedUser(t, users, svc, "pending@example.com", model.RoleStudent, "secret123", false)

	// Even the correct password cannot log an unverified account in; the
	// provisional row is removed so the email frees up for re-signup.
	_, err := svc.Authenticate(ctx, u.Email, "secret123", model.RoleStudent)
	if !errors.Is(err, ErrSignupRequired) {
		t.Fatalf("want ErrSignupRequired, got %v", err)
	}
	if _, err := users.GetByEmail(ctx, u.Email); err == nil {
		t.Error("unverified account should have been deleted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(testConfig(), newFakeUserStore(), newFakeSessionStore())
	userID := uuid.New()

	token, err := svc.IssueToken(userID, model.RoleTeacher)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id: got %s, want %s", claims.UserID, userID)
	}
	if claims.Role != model.RoleTeacher {
		t.Errorf("role: got %s, want %s", claims.Role, model.RoleTeacher)
	}
	if claims.ID == "" {
		t.Error("JTI missing")
	}

	wantExp := time.Now().Add(72 * time.Hour)
	if got := claims.ExpiresAt.Time; got.Before(wantExp.Add(-time.Minute)) || got.After(wantExp.Add(time.Minute)) {
		t.Errorf("expiry %v not around %v", got, wantExp)
	}
}

func TestVerifyTokenRejectsForgery(t *testing.T) {
	svc := NewAuthService(testConfig(), newFakeUserStore(), newFakeSessionStore())

	otherCfg := testConfig()
	otherCfg.JWTSecret = "other-secret"
	other := NewAuthService(otherCfg, newFakeUserStore(), newFakeSessionStore())

	token, err := other.IssueToken(uuid.New(), model.RoleStudent)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("want ErrTokenInvalid, got %v", err)
	}
	if _, err := svc.VerifyToken("not.a.jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("garbage token: want ErrTokenInvalid, got %v", err)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	cfg := testConfig()
	cfg.JWTExpiry = -time.Minute
	svc := NewAuthService(cfg, newFakeUserStore(), newFakeSessionStore())

	token, err := svc.IssueToken(uuid.New(), model.RoleStudent)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("want ErrTokenExpired, got %v", err)
	}
}

func TestRecordAndPrune(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessionStore()
	svc := NewAuthService(testConfig(), newFakeUserStore(), sessions)
	userID := uuid.New()

	now := time.Now()
	sessions.lists[userID] = []model.SessionToken{
		{Token: "fresh", SignedAt: now.Add(-time.Hour)},
		{Token: "stale", SignedAt: now.Add(-100 * time.Hour)},
	}

	if err := svc.RecordAndPrune(ctx, userID, "newest"); err != nil {
		t.Fatalf("RecordAndPrune: %v", err)
	}

	got, _ := sessions.ListTokens(ctx, userID)
	if len(got) != 2 {
		t.Fatalf("expected 2 tokens after prune, got %d", len(got))
	}
	if got[0].Token != "fresh" || got[1].Token != "newest" {
		t.Errorf("unexpected list %v", got)
	}
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessionStore()
	svc := NewAuthService(testConfig(), newFakeUserStore(), sessions)
	userID := uuid.New()

	now := time.Now()
	sessions.lists[userID] = []model.SessionToken{
		{Token: "keep", SignedAt: now},
		{Token: "drop", SignedAt: now},
	}

	if err := svc.Revoke(ctx, userID, "drop"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	if listed, _ := svc.IsListed(ctx, userID, "drop"); listed {
		t.Error("revoked token still listed")
	}
	if listed, _ := svc.IsListed(ctx, userID, "keep"); !listed {
		t.Error("unrelated token was dropped")
	}

	// Revoking an absent token is a silent no-op.
	if err := svc.Revoke(ctx, userID, "never-existed"); err != nil {
		t.Errorf("no-op revoke: %v", err)
	}
}
