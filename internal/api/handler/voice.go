package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
}

// Transcribe turns an uploaded "audio" file into text.
func (h *Handler) Transcribe(c *gin.Context) {
	if h.Speech == nil {
		unavailable(c, "speech service is not configured")
		return
	}
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}

	file, err := c.FormFile("audio")
	if err != nil {
		badRequest(c, "audio file is required")
		return
	}
	f, err := file.Open()
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer f.Close()

	transcript, err := h.Speech.Transcribe(c.Request.Context(), f, file.Filename, c.PostForm("language"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transcript)
}

func (h *Handler) Translate(c *gin.Context) {
	if h.Speech == nil {
		unavailable(c, "speech service is not configured")
		return
	}
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" || req.TargetLanguage == "" {
		badRequest(c, "text and targetLanguage are required")
		return
	}

	translated, err := h.Speech.Translate(c.Request.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"translatedText": translated})
}
