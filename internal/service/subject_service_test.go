package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/testmate/testmate-backend/internal/model"
)

func newSubjectFixture(t *testing.T) (*SubjectService, *fakeSubjectStore, *fakeUserStore) {
	t.Helper()
	subjects := newFakeSubjectStore()
	users := newFakeUserStore()
	svc := NewSubjectService(subjects, users, zerolog.Nop())
	return svc, subjects, users
}

func seedTeacher(t *testing.T, users *fakeUserStore, email, stream string) *model.User {
	t.Helper()
	u := &model.User{
		Name:     "Teach",
		Email:    email,
		PRN:      "PRN-" + email,
		Stream:   stream,
		Role:     model.RoleTeacher,
		Verified: true,
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create teacher: %v", err)
	}
	return u
}

func subjectRequest(name, email, code string) *model.CreateSubjectRequest {
	active := true
	return &model.CreateSubjectRequest{Name: name, Email: email, Code: code, Active: &active}
}

func TestCreateSubject(t *testing.T) {
	ctx := context.Background()
	svc, _, users := newSubjectFixture(t)
	teacher := seedTeacher(t, users, "teach@example.com", "Computer Science")

	subject, err := svc.Create(ctx, subjectRequest("Algorithms", teacher.Email, "ALG"), teacher.Email)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if subject.TeacherEmail != teacher.Email {
		t.Errorf("owner email = %q", subject.TeacherEmail)
	}

	t.Run("name taken", func(t *testing.T) {
		_, err := svc.Create(ctx, subjectRequest("Algorithms", teacher.Email, "ALG2"), teacher.Email)
		if !errors.Is(err, ErrSubjectNameTaken) {
			t.Errorf("want ErrSubjectNameTaken, got %v", err)
		}
	})

	t.Run("code taken", func(t *testing.T) {
		_, err := svc.Create(ctx, subjectRequest("Data Structures", teacher.Email, "ALG"), teacher.Email)
		if !errors.Is(err, ErrSubjectCodeTaken) {
			t.Errorf("want ErrSubjectCodeTaken, got %v", err)
		}
	})

	t.Run("payload email must match creator", func(t *testing.T) {
		_, err := svc.Create(ctx, subjectRequest("Networks", "someone-else@example.com", "NET"), teacher.Email)
		if !errors.Is(err, ErrEmailMismatch) {
			t.Errorf("want ErrEmailMismatch, got %v", err)
		}
	})

	t.Run("email not a registered teacher", func(t *testing.T) {
		_, err := svc.Create(ctx, subjectRequest("Networks", "ghost@example.com", "NET"), "ghost@example.com")
		if !errors.Is(err, ErrNotTeacher) {
			t.Errorf("want ErrNotTeacher, got %v", err)
		}
	})
}

func TestListSubjectsForStream(t *testing.T) {
	ctx := context.Background()
	svc, _, users := newSubjectFixture(t)

	csTeacher := seedTeacher(t, users, "cs@example.com", "Computer Science")
	meTeacher := seedTeacher(t, users, "me@example.com", "Mechanical")

	if _, err := svc.Create(ctx, subjectRequest("Algorithms", csTeacher.Email, "ALG"), csTeacher.Email); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, subjectRequest("Thermodynamics", meTeacher.Email, "THR"), meTeacher.Email); err != nil {
		t.Fatalf("create: %v", err)
	}

	subjects, err := svc.ListForStream(ctx, "Computer Science")
	if err != nil {
		t.Fatalf("ListForStream: %v", err)
	}
	if len(subjects) != 1 || subjects[0].Name != "Algorithms" {
		t.Errorf("unexpected subjects %v", subjects)
	}

	if _, err := svc.ListForStream(ctx, "Philosophy"); !errors.Is(err, ErrNoSubjects) {
		t.Errorf("want ErrNoSubjects, got %v", err)
	}
}
