package user

import (
	"errors"
	"net/http"

	"firemail/mail-api/internal"
	"firemail/mail-api/internal/fail"
	"firemail/mail-api/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// UserLogout revokes the current session. Logging out an already-dead
// session still reports success.
func UserLogout(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	token := c.MustGet("sessionToken").(string)

	if err := d.Sessions.Revoke(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to revoke session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UserValidate reports whether the presented session is still good
func UserValidate(c *gin.Context, _ *internal.Deps) {
	user := c.MustGet("user").(session.UserSnapshot)

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"user":  user,
	})
}

type refreshBody struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UserRefresh exchanges a refresh token for a fresh session pair. Refresh
// tokens are single-use; a second exchange with the same token fails.
func UserRefresh(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data refreshBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Refresh token is required",
			"requestID": requestID,
		})
		return
	}

	pair, err := d.Sessions.Rotate(c.Request.Context(), data.RefreshToken)
	if err != nil {
		if errors.Is(err, fail.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid refresh token",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to rotate session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":        pair.Token,
		"refreshToken": pair.RefreshToken,
		"expiresIn":    viper.GetInt("session.ttl_seconds"),
	})
}

// UserFetch returns the session's user snapshot
func UserFetch(c *gin.Context, _ *internal.Deps) {
	user := c.MustGet("user").(session.UserSnapshot)

	c.JSON(http.StatusOK, gin.H{"user": user})
}
