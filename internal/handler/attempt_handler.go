package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/testmate/testmate-backend/internal/middleware"
	"github.com/testmate/testmate-backend/internal/model"
	"github.com/testmate/testmate-backend/internal/response"
	"github.com/testmate/testmate-backend/internal/service"
	"github.com/testmate/testmate-backend/internal/validator"
)

// AttemptHandler handles a student's quiz attempts.
type AttemptHandler struct {
	attemptService *service.AttemptService
}

// NewAttemptHandler creates a new AttemptHandler.
func NewAttemptHandler(attemptService *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// Open godoc
// POST /api/v1/student/quizzes/:id/attempt
// Checks the quiz window and passcode, burns the student's single attempt
// slot and returns the answer-stripped paper.
func (h *AttemptHandler) Open(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.OpenAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	paper, err := h.attemptService.Open(c.Request.Context(), quizID, user.PRN, req.Passcode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrQuizNotOpen):
			response.Fail(c, http.StatusForbidden, response.ErrQuizNotAvailable)
		case errors.Is(err, service.ErrInvalidPasscode):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidPasscode)
		case errors.Is(err, service.ErrQuizEmpty):
			response.Fail(c, http.StatusConflict, response.ErrNoQuestions)
		case errors.Is(err, service.ErrAlreadyAttempted):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyAttempted)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"paper": paper})
}

// Submit godoc
// POST /api/v1/student/quizzes/:id/submit
// Grades the answer set and overwrites the placeholder score.
func (h *AttemptHandler) Submit(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAttemptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	entry, err := h.attemptService.Submit(c.Request.Context(), quizID, user.PRN, req.Answers)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuizNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNoAttempt):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": entry})
}
