package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testmate/testmate-backend/internal/model"
)

// UserRepository handles user and session-token data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, email, prn, stream, year_of_study, role, password_hash, verified, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PRN, &u.Stream, &u.YearOfStudy,
		&u.Role, &u.PasswordHash, &u.Verified, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user. Returns ErrDuplicate when the email is taken.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (name, email, prn, stream, year_of_study, role, password_hash, verified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		u.Name, u.Email, u.PRN, u.Stream, u.YearOfStudy, u.Role, u.PasswordHash, u.Verified,
	).Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert user: %w", ErrDuplicate)
	}
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByEmailAndRole retrieves a user by the (email, role) login key.
func (r *UserRepository) GetByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 AND role = $2`, email, role))
}

// ListTeachersByStream retrieves all teachers for a given stream.
func (r *UserRepository) ListTeachersByStream(ctx context.Context, stream string) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = $1 AND stream = $2`,
		model.RoleTeacher, stream)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// DeleteByEmail removes a user; session tokens and one-time tokens cascade.
func (r *UserRepository) DeleteByEmail(ctx context.Context, email string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE email = $1`, email)
	return err
}

// DeleteByID removes a user by ID.
func (r *UserRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// MarkVerified flips the verified flag.
func (r *UserRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET verified = TRUE WHERE id = $1`, id)
	return err
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	return err
}

// ListTokens returns a user's session-token list, oldest first.
func (r *UserRepository) ListTokens(ctx context.Context, userID uuid.UUID) ([]model.SessionToken, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT token, signed_at FROM session_tokens WHERE user_id = $1 ORDER BY signed_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []model.SessionToken
	for rows.Next() {
		var t model.SessionToken
		if err := rows.Scan(&t.Token, &t.SignedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

// ReplaceTokens rewrites a user's session-token list wholesale inside one
// transaction. Callers pass the already-filtered replacement list.
func (r *UserRepository) ReplaceTokens(ctx context.Context, userID uuid.UUID, tokens []model.SessionToken) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM session_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	for _, t := range tokens {
		if _, err := tx.Exec(ctx,
			`INSERT INTO session_tokens (user_id, token, signed_at) VALUES ($1, $2, $3)`,
			userID, t.Token, t.SignedAt); err != nil {
			return fmt.Errorf("insert token: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// HasToken reports whether the given token string is in the user's list.
func (r *UserRepository) HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM session_tokens WHERE user_id = $1 AND token = $2)`,
		userID, token).Scan(&exists)
	return exists, err
}
