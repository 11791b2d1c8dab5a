// Package user holds the authentication and account endpoints
package user

import (
	"net/http"
	"time"

	"firemail/mail-api/internal"
	"firemail/mail-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

func UserRegister(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Username and password are required",
			"requestID": requestID,
		})
		return
	}

	var count int64

	err := d.DB.
		Model(model.User{}).
		Where("username = ?", data.Username).
		Count(&count).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check username", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Username already exists",
			"requestID": requestID,
		})
		return
	}

	if data.Email != "" {
		err := d.DB.
			Model(model.User{}).
			Where("email = ?", data.Email).
			Count(&count).
			Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check email", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{
				"error":     "Email already in use",
				"requestID": requestID,
			})
			return
		}
	}

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	displayName := data.DisplayName
	if displayName == "" {
		displayName = data.Username
	}

	u := model.User{
		Username:     data.Username,
		PasswordHash: hash,
		DisplayName:  displayName,
		Status:       1,
		CreatedAt:    time.Now(),
	}
	if data.Email != "" {
		u.Email = &data.Email
	}

	if err := d.DB.Create(&u).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"userId":  u.ID,
	})
}
