package model

import (
	"time"

	"github.com/google/uuid"
)

// Subject represents a course owned by a teacher. Name and Code are each
// globally unique.
type Subject struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	TeacherEmail string    `json:"teacher_email"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateSubjectRequest is the payload for registering a subject.
type CreateSubjectRequest struct {
	Name   string `json:"name" binding:"required,min=2,max=100"`
	Email  string `json:"email" binding:"required,email"`
	Code   string `json:"code" binding:"required,min=2,max=30"`
	Active *bool  `json:"active" binding:"required"`
}
