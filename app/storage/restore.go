package storage

import (
	"net/http"

	"firemail/mail-api/internal"
	"firemail/mail-api/internal/backup"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type restoreBody struct {
	BackupPath string `json:"backup_path" binding:"required"`
	Type       string `json:"type" binding:"required"`
}

// RestoreRun replays a snapshot. Admin-only: a user restore wipes the
// target tenant's mail state before re-inserting, and a failed restore is
// not rolled back — the type must be named explicitly so a malformed
// request can't trigger the destructive path by omission.
func RestoreRun(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data restoreBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "backup_path and type are required",
			"requestID": requestID,
		})
		return
	}

	var (
		res *backup.RestoreResult
		err error
	)

	switch data.Type {
	case "system":
		res, err = d.Restorer.RestoreSystem(c.Request.Context(), data.BackupPath)
	case "user":
		res, err = d.Restorer.RestoreUser(c.Request.Context(), data.BackupPath)
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "type must be 'user' or 'system'",
			"requestID": requestID,
		})
		return
	}

	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	zap.L().Info("Restore completed",
		zap.String("path", data.BackupPath),
		zap.String("type", data.Type),
		zap.String("requestID", requestID))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  res,
	})
}
