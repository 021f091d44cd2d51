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

// QuizHandler handles quiz lifecycle for teachers and quiz discovery for
// students.
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new QuizHandler.
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

// Create godoc
// POST /api/v1/teacher/quizzes
// Creates a quiz with an empty question list and its result ledger.
func (h *QuizHandler) Create(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubjectNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrQuizTitleTaken):
			response.Fail(c, http.StatusConflict, response.ErrQuizTitleTaken)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"quiz": quiz})
}

// ListMine godoc
// GET /api/v1/teacher/quizzes
// Returns the quizzes created by the authenticated teacher.
func (h *QuizHandler) ListMine(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizzes, err := h.quizService.ListByOwner(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrNoQuizzes) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// ListForStudent godoc
// GET /api/v1/student/quizzes
// Returns the quizzes visible to the student's stream and year.
func (h *QuizHandler) ListForStudent(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	quizzes, err := h.quizService.ListForStudent(c.Request.Context(), user.Stream, user.YearOfStudy)
	if err != nil {
		if errors.Is(err, service.ErrNoQuizzes) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quizzes": quizzes})
}

// AddQuestions godoc
// PATCH /api/v1/teacher/quizzes/:id/questions
// Appends bank question references to the quiz.
func (h *QuizHandler) AddQuestions(c *gin.Context) {
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

	var req model.AddQuizQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	quiz, err := h.quizService.AddQuestions(c.Request.Context(), quizID, user.ID, req.QuestionIDs)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// RemoveQuestion godoc
// DELETE /api/v1/teacher/quizzes/:id/questions/:questionId
// Drops one question reference from the quiz.
func (h *QuizHandler) RemoveQuestion(c *gin.Context) {
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
	questionID, err := uuid.Parse(c.Param("questionId"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	quiz, err := h.quizService.RemoveQuestion(c.Request.Context(), quizID, user.ID, questionID)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quiz": quiz})
}

// Delete godoc
// DELETE /api/v1/teacher/quizzes/:id
// Removes the quiz, its ledger and all result entries.
func (h *QuizHandler) Delete(c *gin.Context) {
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

	if err := h.quizService.Delete(c.Request.Context(), quizID, user.ID); err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Results godoc
// GET /api/v1/teacher/quizzes/:id/results
// Returns the quiz's result ledger entries.
func (h *QuizHandler) Results(c *gin.Context) {
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

	entries, err := h.quizService.Results(c.Request.Context(), quizID, user.ID)
	if err != nil {
		h.failQuizError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"results": entries})
}

func (h *QuizHandler) failQuizError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNotQuizOwner):
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
