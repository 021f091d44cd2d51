package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/testmate/testmate-backend/internal/config"
	"github.com/testmate/testmate-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// One-time token errors.
var (
	ErrTokenNotFound = errors.New("token not found or expired")
	ErrInvalidToken  = errors.New("token does not match")
	ErrAlreadyIssued = errors.New("a live token already exists")
)

// OneTimeTokenStore is the storage contract for one-time tokens.
type OneTimeTokenStore interface {
	Upsert(ctx context.Context, t *model.OneTimeToken) error
	GetLive(ctx context.Context, userID uuid.UUID, purpose model.TokenPurpose, cutoff time.Time) (*model.OneTimeToken, error)
	Delete(ctx context.Context, userID uuid.UUID, purpose model.TokenPurpose) error
}

// TokenService issues and validates verification OTPs and reset tokens.
// Secrets are stored bcrypt-hashed. Expiry is passive: reads past the TTL
// treat the token as absent. Per (user, purpose) the lifecycle is
// NONE -> ISSUED -> consumed or expired.
type TokenService struct {
	cfg   *config.Config
	store OneTimeTokenStore
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg *config.Config, store OneTimeTokenStore) *TokenService {
	return &TokenService{cfg: cfg, store: store}
}

// ttl returns the liveness window for a purpose: verification OTPs expire
// after OTPTTL, reset tokens gate reissue for ResetCooldown.
func (s *TokenService) ttl(purpose model.TokenPurpose) time.Duration {
	if purpose == model.PurposeReset {
		return s.cfg.ResetCooldown
	}
	return s.cfg.OTPTTL
}

// Issue generates a fresh secret for (user, purpose), stores its hash, and
// returns the plaintext secret exactly once. Fails with ErrAlreadyIssued if
// a live token exists; expired leftovers are replaced.
func (s *TokenService) Issue(ctx context.Context, userID uuid.UUID, purpose model.TokenPurpose) (string, error) {
	cutoff := time.Now().Add(-s.ttl(purpose))
	if _, err := s.store.GetLive(ctx, userID, purpose, cutoff); err == nil {
		return "", ErrAlreadyIssued
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("check live token: %w", err)
	}

	var secret string
	var err error
	if purpose == model.PurposeReset {
		secret, err = randomHex(30)
	} else {
		secret, err = randomOTP()
	}
	if err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}

	t := &model.OneTimeToken{UserID: userID, Purpose: purpose, TokenHash: string(hash)}
	if err := s.store.Upsert(ctx, t); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return secret, nil
}

// Validate hash-compares candidate against the live token for (user,
// purpose). ErrTokenNotFound when no live token exists, ErrInvalidToken when
// the comparison fails. Validation alone does not consume the token; the
// reset flow gates the password change first and deletes only after the
// change commits via Consume.
func (s *TokenService) Validate(ctx context.Context, userID uuid.UUID, purpose model.TokenPurpose, candidate string) error {
	cutoff := time.Now().Add(-s.ttl(purpose))
	t, err := s.store.GetLive(ctx, userID, purpose, cutoff)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("get live token: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(t.TokenHash), []byte(candidate)) != nil {
		return ErrInvalidToken
	}
	return nil
}

// Consume deletes the token for (user, purpose). Missing rows are a no-op.
func (s *TokenService) Consume(ctx context.Context, userID uuid.UUID, purpose model.TokenPurpose) error {
	return s.store.Delete(ctx, userID, purpose)
}

// randomOTP returns a 6-digit numeric one-time code.
func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
