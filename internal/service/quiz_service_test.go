package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/testmate/testmate-backend/internal/model"
)

type quizFixture struct {
	svc      *QuizService
	quizzes  *fakeQuizStore
	results  *fakeResultStore
	subjects *fakeSubjectStore
	users    *fakeUserStore
	cache    *fakePaperCache
}

func newQuizFixture(t *testing.T) (*quizFixture, *model.Subject, *model.User) {
	t.Helper()
	ctx := context.Background()

	quizzes := newFakeQuizStore()
	results := newFakeResultStore()
	subjects := newFakeSubjectStore()
	users := newFakeUserStore()
	cache := newFakePaperCache()
	svc := NewQuizService(quizzes, results, subjects, users, cache, zerolog.Nop())

	teacher := &model.User{
		Name:     "Teach",
		Email:    "teach@example.com",
		PRN:      "T-001",
		Stream:   "Computer Science",
		Role:     model.RoleTeacher,
		Verified: true,
	}
	if err := users.Create(ctx, teacher); err != nil {
		t.Fatalf("create teacher: %v", err)
	}
	subject := &model.Subject{Name: "Algorithms", Code: "ALG", TeacherEmail: teacher.Email, Active: true}
	if err := subjects.Create(ctx, subject); err != nil {
		t.Fatalf("create subject: %v", err)
	}

	return &quizFixture{svc: svc, quizzes: quizzes, results: results, subjects: subjects, users: users, cache: cache}, subject, teacher
}

func quizRequest(subjectName string) *model.CreateQuizRequest {
	return &model.CreateQuizRequest{
		Title:           "Midterm",
		SubjectName:     subjectName,
		Year:            "Second Year",
		Passcode:        "opensesame",
		OpensAt:         time.Now().Add(-time.Hour),
		ClosesAt:        time.Now().Add(time.Hour),
		DurationMinutes: 30,
	}
}

func TestCreateQuiz(t *testing.T) {
	ctx := context.Background()
	fx, subject, teacher := newQuizFixture(t)

	quiz, err := fx.svc.Create(ctx, quizRequest(subject.Name), teacher.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(quiz.QuestionIDs) != 0 {
		t.Error("new quiz should start with no questions")
	}
	// The ledger row is born with the quiz.
	if !fx.quizzes.ledgers[quiz.ID] {
		t.Error("ledger missing")
	}

	// Duplicate (title, subject, owner) is rejected.
	if _, err := fx.svc.Create(ctx, quizRequest(subject.Name), teacher.ID); !errors.Is(err, ErrQuizTitleTaken) {
		t.Errorf("want ErrQuizTitleTaken, got %v", err)
	}

	if _, err := fx.svc.Create(ctx, quizRequest("No Such Subject"), teacher.ID); !errors.Is(err, ErrSubjectNotFound) {
		t.Errorf("want ErrSubjectNotFound, got %v", err)
	}
}

func TestQuizQuestionList(t *testing.T) {
	ctx := context.Background()
	fx, subject, teacher := newQuizFixture(t)

	quiz, err := fx.svc.Create(ctx, quizRequest(subject.Name), teacher.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	q1, q2 := uuid.New(), uuid.New()
	updated, err := fx.svc.AddQuestions(ctx, quiz.ID, teacher.ID, []uuid.UUID{q1, q2, q1})
	if err != nil {
		t.Fatalf("AddQuestions: %v", err)
	}
	if len(updated.QuestionIDs) != 2 {
		t.Fatalf("expected dedup to 2 questions, got %d", len(updated.QuestionIDs))
	}

	// Re-adding an existing ID is a no-op.
	updated, err = fx.svc.AddQuestions(ctx, quiz.ID, teacher.ID, []uuid.UUID{q2})
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if len(updated.QuestionIDs) != 2 {
		t.Errorf("re-add grew the list to %d", len(updated.QuestionIDs))
	}

	updated, err = fx.svc.RemoveQuestion(ctx, quiz.ID, teacher.ID, q1)
	if err != nil {
		t.Fatalf("RemoveQuestion: %v", err)
	}
	if len(updated.QuestionIDs) != 1 || updated.QuestionIDs[0] != q2 {
		t.Errorf("unexpected list after remove: %v", updated.QuestionIDs)
	}

	// Mutations invalidate the cached paper.
	fx.cache.Set(ctx, &model.QuizPaper{QuizID: quiz.ID})
	if _, err := fx.svc.AddQuestions(ctx, quiz.ID, teacher.ID, []uuid.UUID{uuid.New()}); err != nil {
		t.Fatalf("AddQuestions: %v", err)
	}
	if _, ok := fx.cache.papers[quiz.ID]; ok {
		t.Error("cached paper survived a question-list change")
	}
}

func TestQuizOwnership(t *testing.T) {
	ctx := context.Background()
	fx, subject, teacher := newQuizFixture(t)

	quiz, err := fx.svc.Create(ctx, quizRequest(subject.Name), teacher.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stranger := uuid.New()
	if _, err := fx.svc.AddQuestions(ctx, quiz.ID, stranger, []uuid.UUID{uuid.New()}); !errors.Is(err, ErrNotQuizOwner) {
		t.Errorf("AddQuestions: want ErrNotQuizOwner, got %v", err)
	}
	if err := fx.svc.Delete(ctx, quiz.ID, stranger); !errors.Is(err, ErrNotQuizOwner) {
		t.Errorf("Delete: want ErrNotQuizOwner, got %v", err)
	}
	if _, err := fx.svc.Results(ctx, quiz.ID, stranger); !errors.Is(err, ErrNotQuizOwner) {
		t.Errorf("Results: want ErrNotQuizOwner, got %v", err)
	}
}

func TestDeleteQuiz(t *testing.T) {
	ctx := context.Background()
	fx, subject, teacher := newQuizFixture(t)

	quiz, err := fx.svc.Create(ctx, quizRequest(subject.Name), teacher.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := fx.svc.Delete(ctx, quiz.ID, teacher.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := fx.quizzes.GetByID(ctx, quiz.ID); err == nil {
		t.Error("quiz survived delete")
	}
	if fx.quizzes.ledgers[quiz.ID] {
		t.Error("ledger survived delete")
	}

	if err := fx.svc.Delete(ctx, quiz.ID, teacher.ID); !errors.Is(err, ErrQuizNotFound) {
		t.Errorf("second delete: want ErrQuizNotFound, got %v", err)
	}
}

func TestListForStudent(t *testing.T) {
	ctx := context.Background()
	fx, subject, teacher := newQuizFixture(t)

	if _, err := fx.svc.Create(ctx, quizRequest(subject.Name), teacher.ID); err != nil {
		t.Fatalf("Create: %v", err)
	}
	allYear := quizRequest(subject.Name)
	allYear.Title = "Open To Everyone"
	allYear.Year = "All Year"
	if _, err := fx.svc.Create(ctx, allYear, teacher.ID); err != nil {
		t.Fatalf("Create: %v", err)
	}
	otherYear := quizRequest(subject.Name)
	otherYear.Title = "Final Year Only"
	otherYear.Year = "Final Year"
	if _, err := fx.svc.Create(ctx, otherYear, teacher.ID); err != nil {
		t.Fatalf("Create: %v", err)
	}

	quizzes, err := fx.svc.ListForStudent(ctx, "Computer Science", "Second Year")
	if err != nil {
		t.Fatalf("ListForStudent: %v", err)
	}
	if len(quizzes) != 2 {
		t.Errorf("expected 2 visible quizzes, got %d", len(quizzes))
	}

	if _, err := fx.svc.ListForStudent(ctx, "Mechanical", "Second Year"); !errors.Is(err, ErrNoQuizzes) {
		t.Errorf("foreign stream: want ErrNoQuizzes, got %v", err)
	}
}
