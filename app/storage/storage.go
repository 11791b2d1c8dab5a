// Package storage holds the usage stats, backup and restore endpoints
package storage

import (
	"errors"
	"net/http"

	"firemail/mail-api/internal/fail"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondErr(c *gin.Context, requestID string, err error) {
	switch {
	case errors.Is(err, fail.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "Not found",
			"requestID": requestID,
		})
	case errors.Is(err, fail.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
	case errors.Is(err, fail.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":     "You don't have access to this resource",
			"requestID": requestID,
		})
	case errors.Is(err, fail.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":     "Storage temporarily unavailable. Please try again",
			"requestID": requestID,
		})

		zap.L().Error("Store unavailable", zap.Error(err), zap.String("requestID", requestID))
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Request failed", zap.Error(err), zap.String("requestID", requestID))
	}
}
