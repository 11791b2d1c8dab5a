package storage

import (
	"net/http"

	"firemail/mail-api/internal"
	"firemail/mail-api/internal/session"

	"github.com/gin-gonic/gin"
)

func StatsFetch(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(session.UserSnapshot)

	stats, err := d.Accountant.UserStats(c.Request.Context(), user.ID)
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func StatsFetchAll(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	stats, err := d.Accountant.SystemStats(c.Request.Context())
	if err != nil {
		respondErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
