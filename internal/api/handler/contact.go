package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type findContactRequest struct {
	Department string `json:"department"`
	Location   string `json:"location"`
}

// FindContact searches the web for a department's phone and email. A
// contact with "Not found" fields is a normal 200.
func (h *Handler) FindContact(c *gin.Context) {
	if h.Contacts == nil {
		unavailable(c, "contact search is not configured")
		return
	}
	var req findContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Department) == "" || strings.TrimSpace(req.Location) == "" {
		badRequest(c, "department and location are required")
		return
	}

	found, err := h.Contacts.FindDepartmentContact(c.Request.Context(), req.Department, req.Location)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}
