package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type sendOTPRequest struct {
	Phone    string `json:"phone"`
	Language string `json:"language"`
}

type verifyOTPRequest struct {
	Phone    string `json:"phone"`
	Code     string `json:"code"`
	Language string `json:"language"`
}

// SendOTP texts a one-time code to the phone number.
func (h *Handler) SendOTP(c *gin.Context) {
	if h.OTP == nil {
		unavailable(c, "phone verification is not configured")
		return
	}
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" {
		badRequest(c, "phone is required")
		return
	}

	if err := h.OTP.SendOTP(c.Request.Context(), req.Phone, req.Language); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
}

// VerifyOTP exchanges a valid code for an access token.
func (h *Handler) VerifyOTP(c *gin.Context) {
	if h.OTP == nil {
		unavailable(c, "phone verification is not configured")
		return
	}
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Phone == "" || req.Code == "" {
		badRequest(c, "phone and code are required")
		return
	}

	session, err := h.OTP.VerifyOTP(c.Request.Context(), req.Phone, req.Code, req.Language)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
