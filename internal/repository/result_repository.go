package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testmate/testmate-backend/internal/model"
)

// ResultRepository handles the per-quiz result ledger.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// InsertPlaceholder atomically reserves a student's single attempt slot with
// a zero score. Returns pgx.ErrNoRows when an entry for (quiz, prn) already
// exists, so two concurrent opens cannot both succeed.
func (r *ResultRepository) InsertPlaceholder(ctx context.Context, quizID uuid.UUID, prn string) (*model.ResultEntry, error) {
	e := &model.ResultEntry{QuizID: quizID, PRN: prn}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO result_entries (quiz_id, prn, score)
		 VALUES ($1, $2, 0)
		 ON CONFLICT (quiz_id, prn) DO NOTHING
		 RETURNING score, started_at`,
		quizID, prn,
	).Scan(&e.Score, &e.StartedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// SetScore overwrites the score of the existing (quiz, prn) entry. Returns
// pgx.ErrNoRows when no placeholder exists to update.
func (r *ResultRepository) SetScore(ctx context.Context, quizID uuid.UUID, prn string, score int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE result_entries SET score = $1 WHERE quiz_id = $2 AND prn = $3`,
		score, quizID, prn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetEntry retrieves the ledger entry for (quiz, prn).
func (r *ResultRepository) GetEntry(ctx context.Context, quizID uuid.UUID, prn string) (*model.ResultEntry, error) {
	e := &model.ResultEntry{}
	err := r.pool.QueryRow(ctx,
		`SELECT quiz_id, prn, score, started_at
		 FROM result_entries WHERE quiz_id = $1 AND prn = $2`, quizID, prn,
	).Scan(&e.QuizID, &e.PRN, &e.Score, &e.StartedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListByQuiz retrieves all ledger entries for a quiz.
func (r *ResultRepository) ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.ResultEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT quiz_id, prn, score, started_at
		 FROM result_entries WHERE quiz_id = $1 ORDER BY prn`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ResultEntry
	for rows.Next() {
		var e model.ResultEntry
		if err := rows.Scan(&e.QuizID, &e.PRN, &e.Score, &e.StartedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LedgerExists reports whether a quiz's result ledger row is present.
func (r *ResultRepository) LedgerExists(ctx context.Context, quizID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM results WHERE quiz_id = $1)`, quizID).Scan(&exists)
	return exists, err
}
