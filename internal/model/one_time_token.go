package model

import (
	"time"

	"github.com/google/uuid"
)

// TokenPurpose distinguishes the two one-time token flows.
type TokenPurpose string

const (
	PurposeVerify TokenPurpose = "verify"
	PurposeReset  TokenPurpose = "reset"
)

// OneTimeToken stores the bcrypt hash of a verification OTP or reset secret.
// At most one live token exists per (user, purpose). Expiry is passive: a
// read past the TTL treats the row as absent.
type OneTimeToken struct {
	ID        uuid.UUID    `json:"id"`
	UserID    uuid.UUID    `json:"user_id"`
	Purpose   TokenPurpose `json:"purpose"`
	TokenHash string       `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
}
