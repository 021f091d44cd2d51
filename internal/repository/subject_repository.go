package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testmate/testmate-backend/internal/model"
)

// SubjectRepository handles subject data access.
type SubjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(pool *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{pool: pool}
}

// Create inserts a new subject. Returns ErrDuplicate when the name or code
// is already registered.
func (r *SubjectRepository) Create(ctx context.Context, s *model.Subject) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (name, code, teacher_email, active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		s.Name, s.Code, s.TeacherEmail, s.Active,
	).Scan(&s.ID, &s.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("insert subject: %w", ErrDuplicate)
	}
	return err
}

// GetByName retrieves a subject by its unique name.
func (r *SubjectRepository) GetByName(ctx context.Context, name string) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, code, teacher_email, active, created_at
		 FROM subjects WHERE name = $1`, name,
	).Scan(&s.ID, &s.Name, &s.Code, &s.TeacherEmail, &s.Active, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetByCode retrieves a subject by its unique code.
func (r *SubjectRepository) GetByCode(ctx context.Context, code string) (*model.Subject, error) {
	s := &model.Subject{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, code, teacher_email, active, created_at
		 FROM subjects WHERE code = $1`, code,
	).Scan(&s.ID, &s.Name, &s.Code, &s.TeacherEmail, &s.Active, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByTeacherEmails retrieves all subjects owned by any of the given
// teacher emails, ordered by name.
func (r *SubjectRepository) ListByTeacherEmails(ctx context.Context, emails []string) ([]model.Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, code, teacher_email, active, created_at
		 FROM subjects WHERE teacher_email = ANY($1)
		 ORDER BY name`, emails)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []model.Subject
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name, &s.Code, &s.TeacherEmail, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		subjects = append(subjects, s)
	}
	return subjects, rows.Err()
}
