package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EscalationStatus reports the last sweep and when the next one is due.
func (h *Handler) EscalationStatus(c *gin.Context) {
	if h.Escalation == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "lastRun": nil, "nextRun": nil})
		return
	}

	last, err := h.Escalation.LastRun(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	body := gin.H{"enabled": true, "lastRun": last, "nextRun": nil}
	if next := h.Escalation.NextRun(); !next.IsZero() {
		body["nextRun"] = next
	}
	c.JSON(http.StatusOK, body)
}
