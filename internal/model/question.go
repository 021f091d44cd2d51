package model

import (
	"time"

	"github.com/google/uuid"
)

// Choice is one option of a multiple-choice question. Either or both of
// Text and Image may be set.
type Choice struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// Question represents a bank question. Exactly one of AnswerText and
// AnswerImage is populated: when choices carry images, the correct choice's
// image URL is resolved and stored at write time so grading never touches
// the choice list again.
type Question struct {
	ID          uuid.UUID `json:"id"`
	SubjectID   uuid.UUID `json:"subject_id"`
	Topic       string    `json:"topic"`
	Text        string    `json:"text"`
	Image       string    `json:"image,omitempty"`
	Choices     []Choice  `json:"choices"`
	AnswerText  string    `json:"answer_text,omitempty"`
	AnswerImage string    `json:"answer_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// QuestionForStudent is a question with the answer fields removed, as served
// to a student inside a quiz paper.
type QuestionForStudent struct {
	ID      uuid.UUID `json:"id"`
	Topic   string    `json:"topic"`
	Text    string    `json:"text"`
	Image   string    `json:"image,omitempty"`
	Choices []Choice  `json:"choices"`
}

// ForStudent strips the answer from a question.
func (q *Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:      q.ID,
		Topic:   q.Topic,
		Text:    q.Text,
		Image:   q.Image,
		Choices: q.Choices,
	}
}

// CreateQuestionRequest is the payload for adding a question to a subject's
// bank. Answer is the correct answer text; image answers are set afterwards
// through SetAnswerRequest once choices carry images.
type CreateQuestionRequest struct {
	SubjectName string   `json:"subject_name" binding:"required,min=2,max=100"`
	Topic       string   `json:"topic" binding:"required,min=1,max=100"`
	Text        string   `json:"text" binding:"required,min=1,max=2000"`
	Image       string   `json:"image" binding:"omitempty,url"`
	Choices     []Choice `json:"choices" binding:"required,min=2,max=5"`
	Answer      string   `json:"answer" binding:"omitempty,max=2000"`
}

// SetAnswerRequest records the correct answer for a question. When the
// question's choices carry images, Answer must be the 1-based index of the
// correct choice; otherwise it is the literal answer text.
type SetAnswerRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	Answer     string    `json:"answer" binding:"required,max=2000"`
}

// ListQuestionsRequest filters the bank by subject and optional topic.
type ListQuestionsRequest struct {
	SubjectName string `json:"subject_name" binding:"required,min=2,max=100"`
	Topic       string `json:"topic" binding:"omitempty,max=100"`
}
