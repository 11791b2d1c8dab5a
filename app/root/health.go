// Package root holds the unauthenticated service endpoints
package root

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// AppConfig returns the public configuration the frontend needs
func AppConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": "1.0.0",
		"features": gin.H{
			"attachments": true,
			"search":      true,
			"labels":      true,
		},
		"storage_type":     viper.GetString("storage.type"),
		"backup_retention": viper.GetInt("backup.retention"),
	})
}
