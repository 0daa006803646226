package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"civicvoice/backend/internal/auth"
	"civicvoice/backend/internal/complaint"
	"civicvoice/backend/internal/notify"
	"civicvoice/backend/internal/petition"
	"civicvoice/backend/internal/wiki"

	"github.com/gin-gonic/gin"
)

// Error codes returned in the "error" field.
const (
	codeValidation   = "validation_error"
	codeNotFound     = "not_found"
	codeUnauthorized = "unauthorized"
	codeUnavailable  = "unavailable"
	codeInternal     = "internal_error"
)

var validationErrors = []error{
	wiki.ErrTitleRequired,
	wiki.ErrQueryRequired,
	notify.ErrNoPetition,
	notify.ErrInvalidRecipient,
	auth.ErrInvalidPhone,
	ErrUnsupportedImage,
}

// respondError maps a service error onto a status code and JSON body.
// Anything unrecognised is a 500 whose detail is shown outside production.
func (h *Handler) respondError(c *gin.Context, err error) {
	var verr *complaint.ValidationError
	if errors.As(err, &verr) {
		badRequest(c, verr.Error())
		return
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			badRequest(c, err.Error())
			return
		}
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCode), errors.Is(err, auth.ErrTooManyAttempts):
		c.JSON(http.StatusUnauthorized, gin.H{"error": codeUnauthorized, "message": err.Error()})
		return
	case errors.Is(err, notify.ErrNotConfigured), errors.Is(err, wiki.ErrSearchUnavailable):
		unavailable(c, err.Error())
		return
	}

	message := "internal server error"
	if errors.Is(err, petition.ErrParse) {
		message = "failed to parse model response"
	}
	slog.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)

	body := gin.H{"error": codeInternal, "message": message}
	if !h.Production {
		body["detail"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": codeValidation, "message": message})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": codeNotFound, "message": what + " not found"})
}

func unavailable(c *gin.Context, message string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": codeUnavailable, "message": message})
}
