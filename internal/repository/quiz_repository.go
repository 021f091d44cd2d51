package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testmate/testmate-backend/internal/model"
)

// QuizRepository handles quiz data access. A quiz and its result ledger are
// created and deleted together; the ledger delete always commits first in
// the transaction so a quiz can never outlive its ledger.
type QuizRepository struct {
	pool *pgxpool.Pool
}

// NewQuizRepository creates a new QuizRepository.
func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

const quizColumns = `id, title, subject_id, owner_id, year, passcode, opens_at, closes_at, duration_minutes, question_ids, created_at`

func scanQuiz(row pgx.Row) (*model.Quiz, error) {
	q := &model.Quiz{}
	err := row.Scan(&q.ID, &q.Title, &q.SubjectID, &q.OwnerID, &q.Year, &q.Passcode,
		&q.OpensAt, &q.ClosesAt, &q.DurationMinutes, &q.QuestionIDs, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// CreateWithLedger inserts a quiz and its empty result ledger in one
// transaction. Returns ErrDuplicate when (title, subject, owner) is taken.
func (r *QuizRepository) CreateWithLedger(ctx context.Context, q *model.Quiz) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO quizzes (title, subject_id, owner_id, year, passcode, opens_at, closes_at, duration_minutes, question_ids)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at`,
		q.Title, q.SubjectID, q.OwnerID, q.Year, q.Passcode,
		q.OpensAt, q.ClosesAt, q.DurationMinutes, q.QuestionIDs,
	).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert quiz: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert quiz: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO results (quiz_id) VALUES ($1)`, q.ID); err != nil {
		return fmt.Errorf("insert ledger: %w", err)
	}
	return tx.Commit(ctx)
}

// GetByID retrieves a quiz by ID.
func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error) {
	return scanQuiz(r.pool.QueryRow(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, id))
}

// ListByOwner retrieves all quizzes created by a teacher, newest first.
func (r *QuizRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE owner_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuizzes(rows)
}

// ListForStudent retrieves quizzes owned by any of the given teachers whose
// target year matches the student's year or "All Year".
func (r *QuizRepository) ListForStudent(ctx context.Context, ownerIDs []uuid.UUID, year string) ([]model.Quiz, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quizColumns+`
		 FROM quizzes
		 WHERE owner_id = ANY($1) AND year IN ($2, 'All Year')
		 ORDER BY opens_at`, ownerIDs, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuizzes(rows)
}

// ReplaceQuestionIDs rewrites a quiz's question-reference array in place.
func (r *QuizRepository) ReplaceQuestionIDs(ctx context.Context, quizID uuid.UUID, ids []uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE quizzes SET question_ids = $1 WHERE id = $2`, ids, quizID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteWithLedger removes the quiz's result entries and ledger, then the
// quiz itself, in one transaction. If the ledger delete fails the quiz row
// is left untouched.
func (r *QuizRepository) DeleteWithLedger(ctx context.Context, quizID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM result_entries WHERE quiz_id = $1`, quizID); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM results WHERE quiz_id = $1`, quizID)
	if err != nil {
		return fmt.Errorf("delete ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	if _, err := tx.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, quizID); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	return tx.Commit(ctx)
}

func collectQuizzes(rows pgx.Rows) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}
