package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/testmate/testmate-backend/internal/model"
	"github.com/testmate/testmate-backend/internal/repository"
)

// Subject errors.
var (
	ErrSubjectNameTaken = errors.New("subject name is already registered")
	ErrSubjectCodeTaken = errors.New("subject code is already registered")
	ErrSubjectNotFound  = errors.New("subject is not registered")
	ErrNotTeacher       = errors.New("email is not registered as teacher")
	ErrEmailMismatch    = errors.New("email does not match the authenticated user")
	ErrNoSubjects       = errors.New("no subjects registered")
)

// SubjectStore is the storage contract for subjects.
type SubjectStore interface {
	Create(ctx context.Context, s *model.Subject) error
	GetByName(ctx context.Context, name string) (*model.Subject, error)
	GetByCode(ctx context.Context, code string) (*model.Subject, error)
	ListByTeacherEmails(ctx context.Context, emails []string) ([]model.Subject, error)
}

// TeacherDirectory resolves teachers for ownership checks and stream lookups.
type TeacherDirectory interface {
	GetByEmailAndRole(ctx context.Context, email string, role model.Role) (*model.User, error)
	ListTeachersByStream(ctx context.Context, stream string) ([]model.User, error)
}

// SubjectService handles subject registration and listing.
type SubjectService struct {
	subjects SubjectStore
	teachers TeacherDirectory
	log      zerolog.Logger
}

// NewSubjectService creates a new SubjectService.
func NewSubjectService(subjects SubjectStore, teachers TeacherDirectory, log zerolog.Logger) *SubjectService {
	return &SubjectService{
		subjects: subjects,
		teachers: teachers,
		log:      log.With().Str("component", "subject_service").Logger(),
	}
}

// Create registers a subject for a teacher. The payload email must match the
// authenticated creator and be registered as a teacher.
func (s *SubjectService) Create(ctx context.Context, req *model.CreateSubjectRequest, creatorEmail string) (*model.Subject, error) {
	if req.Email != creatorEmail {
		return nil, ErrEmailMismatch
	}

	if _, err := s.subjects.GetByName(ctx, req.Name); err == nil {
		return nil, ErrSubjectNameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check name: %w", err)
	}
	if _, err := s.subjects.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrSubjectCodeTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check code: %w", err)
	}

	if _, err := s.teachers.GetByEmailAndRole(ctx, req.Email, model.RoleTeacher); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotTeacher
		}
		return nil, fmt.Errorf("check teacher: %w", err)
	}

	subject := &model.Subject{
		Name:         req.Name,
		Code:         req.Code,
		TeacherEmail: req.Email,
		Active:       *req.Active,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		// Pre-checks raced with a concurrent insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSubjectNameTaken
		}
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return subject, nil
}

// ListByTeacher returns the subjects owned by one teacher.
func (s *SubjectService) ListByTeacher(ctx context.Context, email string) ([]model.Subject, error) {
	subjects, err := s.subjects.ListByTeacherEmails(ctx, []string{email})
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil, ErrNoSubjects
	}
	return subjects, nil
}

// ListForStream returns every subject taught by the teachers of a student's
// stream.
func (s *SubjectService) ListForStream(ctx context.Context, stream string) ([]model.Subject, error) {
	teachers, err := s.teachers.ListTeachersByStream(ctx, stream)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	emails := make([]string, 0, len(teachers))
	for _, t := range teachers {
		emails = append(emails, t.Email)
	}
	if len(emails) == 0 {
		return nil, ErrNoSubjects
	}

	subjects, err := s.subjects.ListByTeacherEmails(ctx, emails)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil, ErrNoSubjects
	}
	return subjects, nil
}
