package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testmate/testmate-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, subject_id, topic, question_text, question_image, choices, answer_text, answer_image, created_at`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	err := row.Scan(&q.ID, &q.SubjectID, &q.Topic, &q.Text, &q.Image,
		&q.Choices, &q.AnswerText, &q.AnswerImage, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (subject_id, topic, question_text, question_image, choices, answer_text, answer_image)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		q.SubjectID, q.Topic, q.Text, q.Image, q.Choices, q.AnswerText, q.AnswerImage,
	).Scan(&q.ID, &q.CreatedAt)
}

// GetByID retrieves a question by ID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// ListBySubject retrieves a subject's questions, newest first. An empty
// topic matches everything; otherwise topic is a substring filter.
func (r *QuestionRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID, topic string) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE subject_id = $1 AND ($2 = '' OR topic LIKE '%' || $2 || '%')
		 ORDER BY created_at DESC`, subjectID, topic)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// ListByIDs retrieves the questions referenced by ids. Missing IDs are
// silently absent from the result.
func (r *QuestionRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// SetAnswer updates the recorded correct answer of a question.
func (r *QuestionRepository) SetAnswer(ctx context.Context, id uuid.UUID, answerText, answerImage string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions SET answer_text = $1, answer_image = $2 WHERE id = $3`,
		answerText, answerImage, id)
	return err
}

// Delete removes a question. Quiz question lists keep their weak reference.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}
