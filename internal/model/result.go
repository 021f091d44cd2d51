package model

import (
	"time"

	"github.com/google/uuid"
)

// ResultEntry is one (student, score) row in a quiz's result ledger. The row
// is inserted with a zero score when the attempt opens and the score is
// overwritten on submission; its presence alone gates retakes.
type ResultEntry struct {
	QuizID    uuid.UUID `json:"quiz_id"`
	PRN       string    `json:"prn"`
	Score     int       `json:"score"`
	StartedAt time.Time `json:"started_at"`
}

// Answer is one entry of a submitted answer set. Chosen holds either the
// choice text or the choice image URL.
type Answer struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Chosen     string    `json:"chosen" binding:"omitempty,max=2000"`
}

// OpenAttemptRequest carries the quiz passcode a student must present before
// the paper is released.
type OpenAttemptRequest struct {
	Passcode string `json:"passcode" binding:"required,min=4,max=30"`
}

// SubmitAttemptRequest carries a student's answer set. Duplicate entries for
// the same question are permitted; the last one wins.
type SubmitAttemptRequest struct {
	Answers []Answer `json:"answers" binding:"required,dive"`
}
