package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testmate/testmate-backend/internal/model"
)

// OneTimeTokenRepository handles verification-OTP and reset-token storage.
type OneTimeTokenRepository struct {
	pool *pgxpool.Pool
}

// NewOneTimeTokenRepository creates a new OneTimeTokenRepository.
func NewOneTimeTokenRepository(pool *pgxpool.Pool) *OneTimeTokenRepository {
	return &OneTimeTokenRepository{pool: pool}
}

// Upsert stores a token hash for (user, purpose), replacing any previous row.
// Liveness is the service's concern: it must check GetLive before issuing, so
// the only rows overwritten here are expired leftovers.
func (r *OneTimeTokenRepository) Upsert(ctx context.Context, t *model.OneTimeToken) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO one_time_tokens (user_id, purpose, token_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, purpose)
		 DO UPDATE SET token_hash = EXCLUDED.token_hash, created_at = NOW()
		 RETURNING id, created_at`,
		t.UserID, t.Purpose, t.TokenHash,
	).Scan(&t.ID, &t.CreatedAt)
}

// GetLive retrieves the token for (user, purpose) created after cutoff.
// Rows older than the cutoff are treated as absent (pgx.ErrNoRows).
func (r *OneTimeTokenRepository) GetLive(ctx context.Context, userID uuid.UUID, purpose model.TokenPurpose, cutoff time.Time) (*model.OneTimeToken, error) {
	t := &model.OneTimeToken{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, purpose, token_hash, created_at
		 FROM one_time_tokens
		 WHERE user_id = $1 AND purpose = $2 AND created_at > $3`,
		userID, purpose, cutoff,
	).Scan(&t.ID, &t.UserID, &t.Purpose, &t.TokenHash, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes the token for (user, purpose). Missing rows are a no-op.
func (r *OneTimeTokenRepository) Delete(ctx context.Context, userID uuid.UUID, purpose model.TokenPurpose) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM one_time_tokens WHERE user_id = $1 AND purpose = $2`, userID, purpose)
	return err
}
