package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/testmate/testmate-backend/internal/middleware"
	"github.com/testmate/testmate-backend/internal/model"
	"github.com/testmate/testmate-backend/internal/response"
	"github.com/testmate/testmate-backend/internal/service"
	"github.com/testmate/testmate-backend/internal/validator"
)

// SubjectHandler handles subject registration and listing.
type SubjectHandler struct {
	subjectService *service.SubjectService
}

// NewSubjectHandler creates a new SubjectHandler.
func NewSubjectHandler(subjectService *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// Create godoc
// POST /api/v1/teacher/subjects
// Registers a subject owned by the authenticated teacher.
func (h *SubjectHandler) Create(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.CreateSubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	subject, err := h.subjectService.Create(c.Request.Context(), &req, user.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailMismatch):
			response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		case errors.Is(err, service.ErrSubjectNameTaken):
			response.Fail(c, http.StatusConflict, response.ErrSubjectNameTaken)
		case errors.Is(err, service.ErrSubjectCodeTaken):
			response.Fail(c, http.StatusConflict, response.ErrSubjectCodeTaken)
		case errors.Is(err, service.ErrNotTeacher):
			response.Fail(c, http.StatusForbidden, response.ErrNotTeacherEmail)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"subject": subject})
}

// ListMine godoc
// GET /api/v1/teacher/subjects
// Returns the subjects owned by the authenticated teacher.
func (h *SubjectHandler) ListMine(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	subjects, err := h.subjectService.ListByTeacher(c.Request.Context(), user.Email)
	if err != nil {
		if errors.Is(err, service.ErrNoSubjects) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// ListForStream godoc
// GET /api/v1/student/subjects
// Returns the subjects taught by the teachers of the student's stream.
func (h *SubjectHandler) ListForStream(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	subjects, err := h.subjectService.ListForStream(c.Request.Context(), user.Stream)
	if err != nil {
		if errors.Is(err, service.ErrNoSubjects) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}
