package user

import (
	"errors"
	"net/http"
	"time"

	"firemail/mail-api/internal"
	"firemail/mail-api/internal/model"
	"firemail/mail-api/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func UserLogin(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Username and password are required",
			"requestID": requestID,
		})
		return
	}

	var u model.User

	if err := d.DB.Where("username = ?", data.Username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid username or password",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to load user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := d.Argon.VerifyPasswd(data.Password, u.PasswordHash)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "Invalid username or password",
			"requestID": requestID,
		})
		return
	}

	if u.Status != 1 {
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "Account is disabled",
			"requestID": requestID,
		})
		return
	}

	pair, err := d.Sessions.Issue(c.Request.Context(), session.Snapshot(&u))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to issue session", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	now := time.Now()
	err = d.DB.
		Model(model.User{}).
		Where("id = ?", u.ID).
		Update("last_login", now).
		Error
	if err != nil {
		// Login still succeeds
		zap.L().Warn("Failed to update last login", zap.Error(err), zap.String("requestID", requestID))
	}

	c.JSON(http.StatusOK, gin.H{
		"token":        pair.Token,
		"refreshToken": pair.RefreshToken,
		"expiresIn":    viper.GetInt("session.ttl_seconds"),
		"user":         session.Snapshot(&u),
	})
}
