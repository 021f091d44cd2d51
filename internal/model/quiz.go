package model

import (
	"time"

	"github.com/google/uuid"
)

// Quiz represents a timed multiple-choice quiz. The (Title, SubjectID,
// OwnerID) triple is unique. QuestionIDs are weak references into the
// question bank: deleting a question does not cascade here.
type Quiz struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	SubjectID       uuid.UUID   `json:"subject_id"`
	OwnerID         uuid.UUID   `json:"owner_id"`
	Year            string      `json:"year"`
	Passcode        string      `json:"-"`
	OpensAt         time.Time   `json:"opens_at"`
	ClosesAt        time.Time   `json:"closes_at"`
	DurationMinutes int         `json:"duration_minutes"`
	QuestionIDs     []uuid.UUID `json:"question_ids"`
	CreatedAt       time.Time   `json:"created_at"`
}

// CreateQuizRequest is the payload for creating a quiz. Its result ledger is
// created in the same transaction.
type CreateQuizRequest struct {
	Title           string    `json:"title" binding:"required,min=2,max=200"`
	SubjectName     string    `json:"subject_name" binding:"required,min=2,max=100"`
	Year            string    `json:"year" binding:"required,max=30"`
	Passcode        string    `json:"passcode" binding:"required,min=4,max=30"`
	OpensAt         time.Time `json:"opens_at" binding:"required"`
	ClosesAt        time.Time `json:"closes_at" binding:"required,gtfield=OpensAt"`
	DurationMinutes int       `json:"duration_minutes" binding:"required,min=1,max=480"`
}

// AddQuizQuestionsRequest appends bank question references to a quiz.
type AddQuizQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1"`
}

// QuizPaper is the answer-stripped payload served to a student when an
// attempt opens. It is cached in Redis keyed by quiz.
type QuizPaper struct {
	QuizID          uuid.UUID            `json:"quiz_id"`
	Title           string               `json:"title"`
	DurationMinutes int                  `json:"duration_minutes"`
	Questions       []QuestionForStudent `json:"questions"`
}
