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

// AuthHandler handles signup, email verification, login, logout and the
// password-reset flow.
type AuthHandler struct {
	accountService *service.AccountService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountService *service.AccountService) *AuthHandler {
	return &AuthHandler{accountService: accountService}
}

// Signup godoc
// POST /api/v1/auth/signup
// Registers an account and mails a verification OTP. A conflicting
// unverified account is silently replaced.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.accountService.Signup(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Fail(c, http.StatusConflict, response.ErrEmailTaken)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user_id": user.ID,
		"email":   user.Email,
	})
}

// VerifyEmail godoc
// POST /api/v1/auth/verify-email
// Confirms the OTP and activates the account. An expired OTP deletes the
// abandoned account so the email can sign up again.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req model.VerifyEmailRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.accountService.VerifyEmail(c.Request.Context(), req.UserID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyVerified):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyVerified)
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusGone, response.ErrSignupRequired)
		case errors.Is(err, service.ErrTokenNotFound):
			response.Fail(c, http.StatusUnauthorized, response.ErrOTPNotFound)
		case errors.Is(err, service.ErrInvalidToken):
			response.Fail(c, http.StatusUnauthorized, response.ErrOTPInvalid)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Login godoc
// POST /api/v1/auth/login
// Authenticates by (email, role) and returns a signed session token. The
// token is appended to the user's stored session list.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, user, err := h.accountService.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignupRequired):
			response.Fail(c, http.StatusUnauthorized, response.ErrSignupRequired)
		case errors.Is(err, service.ErrIncorrectEmail):
			response.Fail(c, http.StatusUnauthorized, response.ErrIncorrectEmail)
		case errors.Is(err, service.ErrIncorrectPassword):
			response.Fail(c, http.StatusUnauthorized, response.ErrIncorrectPassword)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, model.LoginResponse{Token: token, User: *user})
}

// Logout godoc
// POST /api/v1/auth/logout
// Removes the presented token from the user's session list, revoking it
// immediately even though its signature stays valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.GetUser(c)
	token := middleware.GetToken(c)
	if user == nil || token == "" {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.accountService.Logout(c.Request.Context(), user.ID, token); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ForgotPassword godoc
// POST /api/v1/auth/forgot-password
// Mails a single-use reset link. Re-requesting within the cooldown window
// is rejected while the first link is still live.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.accountService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrSignupRequired):
			response.Fail(c, http.StatusUnauthorized, response.ErrSignupRequired)
		case errors.Is(err, service.ErrResetCooldown):
			response.Fail(c, http.StatusTooManyRequests, response.ErrResetCooldown)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// ResetPassword godoc
// PATCH /api/v1/auth/reset-password?token=...&id=...
// Replaces the password. The reset secret is checked by middleware and
// consumed only after the change succeeds.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	user := middleware.GetUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrResetTokenNeeded)
		return
	}

	var req model.ResetPasswordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.accountService.ResetPassword(c.Request.Context(), user.ID, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrSamePassword):
			response.Fail(c, http.StatusConflict, response.ErrSamePassword)
		case errors.Is(err, service.ErrUserNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}
