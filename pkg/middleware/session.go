package middleware

import (
	"errors"
	"net/http"
	"strings"

	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewSessionMiddleware resolves the Authorization bearer token through the
// session ledger and stores the user snapshot on the context as "user"
// (and the raw token as "sessionToken" for logout).
func NewSessionMiddleware(l *session.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Authentication required",
				"requestID": requestID,
			})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")

		user, err := l.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, fail.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Session invalid or expired",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to validate session", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("sessionToken", token)
		c.Next()
	}
}

// NewAdminMiddleware gates privileged routes behind the authorization
// policy. Must run after the session middleware.
func NewAdminMiddleware(p *session.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)
		user := c.MustGet("user").(session.UserSnapshot)

		if !p.IsAdmin(c.Request.Context(), user) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Admin privileges required",
				"requestID": requestID,
			})
			return
		}

		c.Next()
	}
}
