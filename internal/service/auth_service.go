package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/testmate/testmate-backend/internal/config"
	"github.com/testmate/testmate-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrIncorrectEmail    = errors.New("incorrect email")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrSignupRequired    = errors.New("user is not registered, please sign-up")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("token invalid")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID  `json:"user_id"`
	Role   model.Role `json:"role"`
}

// CredentialStore is the account-lookup contract for authentication.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error)
	DeleteByEmail(ctx context.Context, email string) error
}

// SessionTokenStore is the storage contract for per-user token lists.
type SessionTokenStore interface {
	ListTokens(ctx context.Context, userID uuid.UUID) ([]model.SessionToken, error)
	ReplaceTokens(ctx context.Context, userID uuid.UUID, tokens []model.SessionToken) error
	HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error)
}

// AuthService owns password hashing, authentication, and the session-token
// registry: signed JWTs plus a per-user bounded-lifetime token list that is
// rewritten on every login and logout.
type AuthService struct {
	cfg      *config.Config
	creds    CredentialStore
	sessions SessionTokenStore
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, creds CredentialStore, sessions SessionTokenStore) *AuthService {
	return &AuthService{cfg: cfg, creds: creds, sessions: sessions}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrIncorrectPassword
	}
	return nil
}

// Authenticate looks up an account by the (email, role) key and verifies the
// password. An account that exists but is unverified is provisional: it is
// deleted and the caller gets ErrSignupRequired instead of an authentication
// error. Authenticate therefore never returns an unverified account.
func (s *AuthService) Authenticate(ctx context.Context, email, password string, role model.Role) (*model.User, error) {
	existing, err := s.creds.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if existing != nil && !existing.Verified {
		if err := s.creds.DeleteByEmail(ctx, email); err != nil {
			return nil, fmt.Errorf("delete unverified user: %w", err)
		}
		return nil, ErrSignupRequired
	}

	user, err := s.creds.GetByEmailAndRole(ctx, email, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrIncorrectEmail
		}
		return nil, fmt.Errorf("lookup user by role: %w", err)
	}
	if err := s.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}

// IssueToken creates a signed session token binding the account identity,
// with a fixed expiry claim independent of the list-retention window.
func (s *AuthService) IssueToken(userID uuid.UUID, role model.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: userID,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// VerifyToken parses and validates a session token: signature and expiry
// only. It does not consult the stored list; the auth middleware does that
// separately so logout revokes immediately.
func (s *AuthService) VerifyToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// RecordAndPrune rewrites the user's token list on login: entries signed
// within the retention window are kept, the rest dropped, and the new token
// appended. The prune is eager: stale tokens are only purged when the user
// next logs in. Concurrent logins can race and one rewrite may clobber the
// other's fresh token; that only forces a re-login, never a security gap.
func (s *AuthService) RecordAndPrune(ctx context.Context, userID uuid.UUID, newToken string) error {
	tokens, err := s.sessions.ListTokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("list tokens: %w", err)
	}

	now := time.Now()
	kept := make([]model.SessionToken, 0, len(tokens)+1)
	for _, t := range tokens {
		if now.Sub(t.SignedAt) < s.cfg.SessionRetention {
			kept = append(kept, t)
		}
	}
	kept = append(kept, model.SessionToken{Token: newToken, SignedAt: now})

	if err := s.sessions.ReplaceTokens(ctx, userID, kept); err != nil {
		return fmt.Errorf("replace tokens: %w", err)
	}
	return nil
}

// Revoke removes exactly the matching token from the user's list on logout.
// A token not present is a silent no-op.
func (s *AuthService) Revoke(ctx context.Context, userID uuid.UUID, token string) error {
	tokens, err := s.sessions.ListTokens(ctx, userID)
	if err != nil {
		return fmt.Errorf("list tokens: %w", err)
	}

	kept := make([]model.SessionToken, 0, len(tokens))
	for _, t := range tokens {
		if t.Token != token {
			kept = append(kept, t)
		}
	}

	if err := s.sessions.ReplaceTokens(ctx, userID, kept); err != nil {
		return fmt.Errorf("replace tokens: %w", err)
	}
	return nil
}

// IsListed reports whether a token is present in the user's stored list.
func (s *AuthService) IsListed(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	return s.sessions.HasToken(ctx, userID, token)
}
