package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/testmate/testmate-backend/internal/model"
)

// Attempt errors.
var (
	ErrQuizNotOpen      = errors.New("quiz is not currently available")
	ErrInvalidPasscode  = errors.New("quiz passcode is incorrect")
	ErrQuizEmpty        = errors.New("quiz has no questions")
	ErrAlreadyAttempted = errors.New("quiz was already attempted")
	ErrNoAttempt        = errors.New("no open attempt for this quiz")
)

// AttemptResultStore is the ledger-entry contract used by attempts.
type AttemptResultStore interface {
	InsertPlaceholder(ctx context.Context, quizID uuid.UUID, prn string) (*model.ResultEntry, error)
	SetScore(ctx context.Context, quizID uuid.UUID, prn string, score int) error
	GetEntry(ctx context.Context, quizID uuid.UUID, prn string) (*model.ResultEntry, error)
}

// QuestionReader resolves bank questions for paper assembly and grading.
type QuestionReader interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error)
}

// QuizReader resolves quizzes for attempts.
type QuizReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
}

// AttemptService coordinates a student's single attempt per quiz. The ledger
// placeholder is inserted before the paper is released, so a student who
// disconnects after seeing the questions has still spent the attempt.
type AttemptService struct {
	quizzes   QuizReader
	questions QuestionReader
	results   AttemptResultStore
	cache     PaperCache
	now       func() time.Time
	log       zerolog.Logger
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(quizzes QuizReader, questions QuestionReader, results AttemptResultStore, cache PaperCache, log zerolog.Logger) *AttemptService {
	return &AttemptService{
		quizzes:   quizzes,
		questions: questions,
		results:   results,
		cache:     cache,
		now:       time.Now,
		log:       log.With().Str("component", "attempt_service").Logger(),
	}
}

// Open validates the quiz window and passcode, reserves the student's attempt
// slot and only then serves the answer-stripped paper. Reservation is a
// conditional insert: of two concurrent opens for the same (quiz, student)
// exactly one wins and the other gets ErrAlreadyAttempted.
func (s *AttemptService) Open(ctx context.Context, quizID uuid.UUID, prn string, passcode string) (*model.QuizPaper, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	now := s.now()
	if now.Before(quiz.OpensAt) || now.After(quiz.ClosesAt) {
		return nil, ErrQuizNotOpen
	}
	if passcode != quiz.Passcode {
		return nil, ErrInvalidPasscode
	}
	if len(quiz.QuestionIDs) == 0 {
		return nil, ErrQuizEmpty
	}

	if _, err := s.results.InsertPlaceholder(ctx, quizID, prn); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyAttempted
		}
		return nil, fmt.Errorf("reserve attempt: %w", err)
	}

	paper, err := s.paper(ctx, quiz)
	if err != nil {
		// The slot stays spent. Refunding here would let a student retry
		// until an infrastructure hiccup hands out a second sight of the
		// paper.
		return nil, err
	}
	return paper, nil
}

// Submit grades a student's answer set against the quiz's question bank and
// overwrites the placeholder score. Requires that Open reserved the slot.
func (s *AttemptService) Submit(ctx context.Context, quizID uuid.UUID, prn string, answers []model.Answer) (*model.ResultEntry, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	entry, err := s.results.GetEntry(ctx, quizID, prn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoAttempt
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}

	bank, err := s.bank(ctx, quiz)
	if err != nil {
		return nil, err
	}
	score := Score(answers, bank)

	if err := s.results.SetScore(ctx, quizID, prn, score); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoAttempt
		}
		return nil, fmt.Errorf("set score: %w", err)
	}
	entry.Score = score
	return entry, nil
}

// paper serves the quiz's answer-stripped paper, cache first. Questions are
// ordered per the quiz's reference list; stale references are dropped.
func (s *AttemptService) paper(ctx context.Context, quiz *model.Quiz) (*model.QuizPaper, error) {
	if cached, ok := s.cache.Get(ctx, quiz.ID); ok {
		return cached, nil
	}

	bank, err := s.bank(ctx, quiz)
	if err != nil {
		return nil, err
	}
	paper := &model.QuizPaper{
		QuizID:          quiz.ID,
		Title:           quiz.Title,
		DurationMinutes: quiz.DurationMinutes,
		Questions:       make([]model.QuestionForStudent, 0, len(quiz.QuestionIDs)),
	}
	for _, id := range quiz.QuestionIDs {
		q, ok := bank[id]
		if !ok {
			continue
		}
		paper.Questions = append(paper.Questions, q.ForStudent())
	}
	if len(paper.Questions) == 0 {
		return nil, ErrQuizEmpty
	}

	s.cache.Set(ctx, paper)
	return paper, nil
}

// bank loads the quiz's referenced questions keyed by ID.
func (s *AttemptService) bank(ctx context.Context, quiz *model.Quiz) (map[uuid.UUID]model.Question, error) {
	questions, err := s.questions.ListByIDs(ctx, quiz.QuestionIDs)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	bank := make(map[uuid.UUID]model.Question, len(questions))
	for _, q := range questions {
		bank[q.ID] = q
	}
	return bank, nil
}
