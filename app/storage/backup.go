package storage

import (
	"net/http"

	"firemail/mail-api/internal"
	"firemail/mail-api/internal/backup"
	"firemail/mail-api/internal/session"

	"github.com/gin-gonic/gin"
)

func BackupCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	rec, err := d.Snapshots.BuildUserSnapshot(c.Request.Context(), user)
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"backup":  rec,
	})
}

func BackupList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	backups, err := d.Registry.List(c.Request.Context(), backup.UserKey(user.ID))
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"backups": backups})
}

func BackupCreateSystem(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	rec, err := d.Snapshots.BuildSystemSnapshot(c.Request.Context())
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"backup":  rec,
	})
}

func BackupListSystem(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	backups, err := d.Registry.List(c.Request.Context(), backup.SystemKey)
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"backups": backups})
}
