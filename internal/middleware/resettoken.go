package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/testmate/testmate-backend/internal/response"
	"github.com/testmate/testmate-backend/internal/service"
)

// RequireResetToken gates the password-change endpoint behind the one-time
// reset secret carried in the ?token and ?id query params. The secret is
// only compared here; it is consumed after the password change succeeds.
func RequireResetToken(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := c.Query("token")
		rawID := c.Query("id")
		if secret == "" || rawID == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrResetTokenNeeded)
			return
		}
		userID, err := uuid.Parse(rawID)
		if err != nil {
			response.AbortFail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}

		user, err := accounts.ValidateResetToken(c.Request.Context(), userID, secret)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrUserNotFound):
				response.AbortFail(c, http.StatusNotFound, response.ErrNotFound)
			case errors.Is(err, service.ErrTokenNotFound):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenExpired)
			case errors.Is(err, service.ErrInvalidToken):
				response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			default:
				response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
			}
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}
