package mail

import (
	"net/http"

	"firemail/mail-api/internal"
	"firemail/mail-api/internal/mailstore"
	"firemail/mail-api/internal/session"

	"github.com/gin-gonic/gin"
)

func MailStatus(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	var upd mailstore.StatusUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	rec, err := d.Mail.SetStatus(c.Request.Context(), user, c.Param("id"), upd)
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"id":         rec.ID,
		"is_read":    rec.IsRead,
		"is_starred": rec.IsStarred,
	})
}

type moveBody struct {
	Folder string `json:"folder" binding:"required"`
}

func MailMove(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	var data moveBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Target folder is required",
			"requestID": requestID,
		})
		return
	}

	rec, err := d.Mail.Move(c.Request.Context(), user, c.Param("id"), data.Folder)
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      rec.ID,
		"folder":  rec.Folder,
	})
}
