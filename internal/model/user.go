package model

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role within the platform.
type Role string

const (
	RoleStudent Role = "Student"
	RoleTeacher Role = "Teacher"
	RoleAdmin   Role = "Admin"
)

// User represents a registered account. PRN doubles as the exam identity for
// students; Stream groups students with the teachers of their department.
// An unverified user is provisional: it is deleted on conflicting re-signup
// and on any authentication attempt.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PRN          string    `json:"prn"`
	Stream       string    `json:"stream"`
	YearOfStudy  string    `json:"year_of_study,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
}

// SessionToken is one entry of a user's active-token list. The list is
// rewritten wholesale on every login and logout.
type SessionToken struct {
	Token    string    `json:"token"`
	SignedAt time.Time `json:"signed_at"`
}

// SignupRequest is the payload for registering a new account.
type SignupRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Email       string `json:"email" binding:"required,email"`
	PRN         string `json:"prn" binding:"required,min=2,max=30"`
	Stream      string `json:"stream" binding:"required,min=2,max=100"`
	YearOfStudy string `json:"year_of_study" binding:"omitempty,max=30"`
	Role        Role   `json:"role" binding:"required,oneof=Student Teacher Admin"`
	Password    string `json:"password" binding:"required,min=7,max=16"`
}

// LoginRequest is the payload for authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=7,max=128"`
	Role     Role   `json:"role" binding:"required,oneof=Student Teacher Admin"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// VerifyEmailRequest carries the OTP sent to a freshly registered account.
type VerifyEmailRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	OTP    string    `json:"otp" binding:"required,min=4,max=10"`
}

// ForgotPasswordRequest starts the password-reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest carries the new password. The reset token itself
// travels in the query string and is checked by middleware before this
// payload is ever read.
type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=7,max=16"`
}
