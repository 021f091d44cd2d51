package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/testmate/testmate-backend/internal/model"
	"github.com/testmate/testmate-backend/internal/repository"
)

// Quiz errors.
var (
	ErrQuizNotFound   = errors.New("quiz is not registered")
	ErrQuizTitleTaken = errors.New("quiz title is already used for this subject")
	ErrNotQuizOwner   = errors.New("quiz belongs to another teacher")
	ErrNoQuizzes      = errors.New("no quizzes registered")
)

// QuizStore is the storage contract for quizzes and their result ledgers.
type QuizStore interface {
	CreateWithLedger(ctx context.Context, q *model.Quiz) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Quiz, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Quiz, error)
	ListForStudent(ctx context.Context, ownerIDs []uuid.UUID, year string) ([]model.Quiz, error)
	ReplaceQuestionIDs(ctx context.Context, quizID uuid.UUID, ids []uuid.UUID) error
	DeleteWithLedger(ctx context.Context, quizID uuid.UUID) error
}

// ResultReader reads the ledger entries of a quiz.
type ResultReader interface {
	ListByQuiz(ctx context.Context, quizID uuid.UUID) ([]model.ResultEntry, error)
}

// QuizService manages quiz lifecycle for teachers and quiz discovery for
// students. Every mutation of a quiz's question list invalidates its cached
// paper so students never see a stale question set.
type QuizService struct {
	quizzes  QuizStore
	results  ResultReader
	subjects SubjectStore
	teachers TeacherDirectory
	cache    PaperCache
	log      zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizzes QuizStore, results ResultReader, subjects SubjectStore, teachers TeacherDirectory, cache PaperCache, log zerolog.Logger) *QuizService {
	return &QuizService{
		quizzes:  quizzes,
		results:  results,
		subjects: subjects,
		teachers: teachers,
		cache:    cache,
		log:      log.With().Str("component", "quiz_service").Logger(),
	}
}

// Create registers a quiz with an empty question list and its result ledger
// in one transaction.
func (s *QuizService) Create(ctx context.Context, req *model.CreateQuizRequest, ownerID uuid.UUID) (*model.Quiz, error) {
	subject, err := s.subjects.GetByName(ctx, req.SubjectName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("get subject: %w", err)
	}

	quiz := &model.Quiz{
		Title:           req.Title,
		SubjectID:       subject.ID,
		OwnerID:         ownerID,
		Year:            req.Year,
		Passcode:        req.Passcode,
		OpensAt:         req.OpensAt,
		ClosesAt:        req.ClosesAt,
		DurationMinutes: req.DurationMinutes,
		QuestionIDs:     []uuid.UUID{},
	}
	if err := s.quizzes.CreateWithLedger(ctx, quiz); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrQuizTitleTaken
		}
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// ListByOwner returns the quizzes created by a teacher.
func (s *QuizService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Quiz, error) {
	quizzes, err := s.quizzes.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	if len(quizzes) == 0 {
		return nil, ErrNoQuizzes
	}
	return quizzes, nil
}

// ListForStudent returns the quizzes a student can see: those owned by the
// teachers of the student's stream and targeting the student's year.
func (s *QuizService) ListForStudent(ctx context.Context, stream, year string) ([]model.Quiz, error) {
	teachers, err := s.teachers.ListTeachersByStream(ctx, stream)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	if len(teachers) == 0 {
		return nil, ErrNoQuizzes
	}
	ownerIDs := make([]uuid.UUID, 0, len(teachers))
	for _, t := range teachers {
		ownerIDs = append(ownerIDs, t.ID)
	}

	quizzes, err := s.quizzes.ListForStudent(ctx, ownerIDs, year)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	if len(quizzes) == 0 {
		return nil, ErrNoQuizzes
	}
	return quizzes, nil
}

// AddQuestions appends bank references to a quiz's question list, skipping
// IDs already present.
func (s *QuizService) AddQuestions(ctx context.Context, quizID uuid.UUID, ownerID uuid.UUID, ids []uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, quizID, ownerID)
	if err != nil {
		return nil, err
	}

	present := make(map[uuid.UUID]struct{}, len(quiz.QuestionIDs))
	for _, id := range quiz.QuestionIDs {
		present[id] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := present[id]; ok {
			continue
		}
		present[id] = struct{}{}
		quiz.QuestionIDs = append(quiz.QuestionIDs, id)
	}

	if err := s.quizzes.ReplaceQuestionIDs(ctx, quiz.ID, quiz.QuestionIDs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("replace questions: %w", err)
	}
	s.cache.Invalidate(ctx, quiz.ID)
	return quiz, nil
}

// RemoveQuestion drops one bank reference from a quiz's question list.
func (s *QuizService) RemoveQuestion(ctx context.Context, quizID uuid.UUID, ownerID uuid.UUID, questionID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.ownedQuiz(ctx, quizID, ownerID)
	if err != nil {
		return nil, err
	}

	kept := quiz.QuestionIDs[:0]
	for _, id := range quiz.QuestionIDs {
		if id != questionID {
			kept = append(kept, id)
		}
	}
	quiz.QuestionIDs = kept

	if err := s.quizzes.ReplaceQuestionIDs(ctx, quiz.ID, quiz.QuestionIDs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("replace questions: %w", err)
	}
	s.cache.Invalidate(ctx, quiz.ID)
	return quiz, nil
}

// Delete removes a quiz, its ledger and all result entries. The ledger goes
// first so a half-finished delete leaves the quiz without an attempt surface
// rather than with orphaned scores.
func (s *QuizService) Delete(ctx context.Context, quizID uuid.UUID, ownerID uuid.UUID) error {
	if _, err := s.ownedQuiz(ctx, quizID, ownerID); err != nil {
		return err
	}
	if err := s.quizzes.DeleteWithLedger(ctx, quizID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("delete quiz: %w", err)
	}
	s.cache.Invalidate(ctx, quizID)
	return nil
}

// Results returns a quiz's ledger entries to its owner.
func (s *QuizService) Results(ctx context.Context, quizID uuid.UUID, ownerID uuid.UUID) ([]model.ResultEntry, error) {
	if _, err := s.ownedQuiz(ctx, quizID, ownerID); err != nil {
		return nil, err
	}
	entries, err := s.results.ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return entries, nil
}

func (s *QuizService) ownedQuiz(ctx context.Context, quizID, ownerID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if quiz.OwnerID != ownerID {
		return nil, ErrNotQuizOwner
	}
	return quiz, nil
}
