package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/testmate/testmate-backend/internal/model"
)

// Question errors.
var (
	ErrQuestionNotFound = errors.New("question is not registered")
	ErrNoQuestionsFound = errors.New("no questions registered")
	ErrBadAnswerIndex   = errors.New("answer index does not address a choice")
)

// QuestionStore is the storage contract for the question bank.
type QuestionStore interface {
	Create(ctx context.Context, q *model.Question) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error)
	ListBySubject(ctx context.Context, subjectID uuid.UUID, topic string) ([]model.Question, error)
	SetAnswer(ctx context.Context, id uuid.UUID, answerText, answerImage string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QuestionService manages a subject's question bank.
type QuestionService struct {
	questions QuestionStore
	subjects  SubjectStore
	log       zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questions QuestionStore, subjects SubjectStore, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		subjects:  subjects,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// Create adds a question to the bank of the named subject. Topics are stored
// lowercased so listing filters stay case-insensitive.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	subject, err := s.subjects.GetByName(ctx, req.SubjectName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}

	q := &model.Question{
		SubjectID:  subject.ID,
		Topic:      strings.ToLower(req.Topic),
		Text:       req.Text,
		Image:      req.Image,
		Choices:    req.Choices,
		AnswerText: req.Answer,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// SetAnswer records the correct answer of a question. When the question's
// choices carry images, req.Answer is a 1-based choice index and the choice's
// image URL is stored; otherwise req.Answer is stored as literal text. The
// unused answer field is cleared so exactly one stays populated.
func (s *QuestionService) SetAnswer(ctx context.Context, req *model.SetAnswerRequest) (*model.Question, error) {
	q, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	answerText, answerImage := req.Answer, ""
	if hasImageChoices(q.Choices) {
		idx, err := strconv.Atoi(strings.TrimSpace(req.Answer))
		if err != nil || idx < 1 || idx > len(q.Choices) {
			return nil, ErrBadAnswerIndex
		}
		answerText, answerImage = "", q.Choices[idx-1].Image
	}

	if err := s.questions.SetAnswer(ctx, q.ID, answerText, answerImage); err != nil {
		return nil, fmt.Errorf("set answer: %w", err)
	}
	q.AnswerText, q.AnswerImage = answerText, answerImage
	return q, nil
}

// ListBySubject returns a subject's questions, optionally filtered by topic
// substring.
func (s *QuestionService) ListBySubject(ctx context.Context, req *model.ListQuestionsRequest) ([]model.Question, error) {
	subject, err := s.subjects.GetByName(ctx, req.SubjectName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}

	questions, err := s.questions.ListBySubject(ctx, subject.ID, strings.ToLower(req.Topic))
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestionsFound
	}
	return questions, nil
}

// Delete removes a question from the bank. Quizzes that reference it keep the
// stale ID; grading skips references it cannot resolve.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}

func hasImageChoices(choices []model.Choice) bool {
	for _, c := range choices {
		if c.Image != "" {
			return true
		}
	}
	return false
}
