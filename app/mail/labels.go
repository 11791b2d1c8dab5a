package mail

import (
	"net/http"

	"firemail/mail-api/internal"
	"firemail/mail-api/internal/session"

	"github.com/gin-gonic/gin"
)

type labelBody struct {
	Label string `json:"label" binding:"required"`
}

func LabelAdd(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	var data labelBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Label is required",
			"requestID": requestID,
		})
		return
	}

	if err := d.Mail.AddLabel(c.Request.Context(), user, c.Param("id"), data.Label); err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"label":   data.Label,
	})
}

func LabelRemove(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	label := c.Param("label")

	if err := d.Mail.RemoveLabel(c.Request.Context(), user, c.Param("id"), label); err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"label":   label,
	})
}

func LabelList(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	labels, err := d.Mail.Labels(c.Request.Context(), user)
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, labels)
}
