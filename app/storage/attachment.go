package storage

import (
	"fmt"
	"net/http"

	"firemail/mail-api/internal"
	"firemail/mail-api/internal/session"

	"github.com/gin-gonic/gin"
)

func AttachmentFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	isAdmin := d.Policy.IsAdmin(c.Request.Context(), user)

	att, err := d.Mail.Attachment(c.Request.Context(), user, c.Param("id"), isAdmin)
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.Filename))
	c.Data(http.StatusOK, att.ContentType, att.Data)
}
