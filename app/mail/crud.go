package mail

import (
	"net/http"

	"firemail/mail-api/internal"
	"firemail/mail-api/internal/mailstore"
	"firemail/mail-api/internal/session"

	"github.com/gin-gonic/gin"
)

func MailList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	var req mailstore.ListMailRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid query parameters",
			"requestID": requestID,
		})
		return
	}

	page, err := d.Mail.List(c.Request.Context(), user, req)
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func MailFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	m, err := d.Mail.Get(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

func MailCreate(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	var req mailstore.CreateMailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Subject and sender are required",
			"requestID": requestID,
		})
		return
	}

	rec, err := d.Mail.Create(c.Request.Context(), user, req)
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"id":       rec.ID,
		"email_id": rec.EmailID,
	})
}

func MailDelete(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	if err := d.Mail.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
