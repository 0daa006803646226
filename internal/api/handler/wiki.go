package handler

import (
	"net/http"
	"strconv"

	"civicvoice/backend/internal/auth"
	"civicvoice/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type createWikiRequest struct {
	Title              string   `json:"title"`
	Category           string   `json:"category"`
	Tags               []string `json:"tags"`
	Description        string   `json:"description"`
	Transcription      string   `json:"transcription"`
	TranslationEnglish string   `json:"translationEnglish"`
	TranslationHindi   string   `json:"translationHindi"`
	ElderName          string   `json:"elderName"`
	Village            string   `json:"village"`
	AudioURL           string   `json:"audioUrl"`
}

func (h *Handler) CreateWikiEntry(c *gin.Context) {
	var req createWikiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	entry := &models.WikiEntry{
		UserID:             auth.UserID(c),
		Title:              req.Title,
		Category:           req.Category,
		Tags:               models.StringList(req.Tags),
		Description:        req.Description,
		Transcription:      req.Transcription,
		TranslationEnglish: req.TranslationEnglish,
		TranslationHindi:   req.TranslationHindi,
		ElderName:          req.ElderName,
		Village:            req.Village,
		AudioURL:           req.AudioURL,
	}
	if err := h.Wiki.Create(c.Request.Context(), entry); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) GetWikiEntry(c *gin.Context) {
	entry, err := h.Wiki.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if entry == nil {
		notFound(c, "wiki entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) ListWikiEntries(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	entries, err := h.Wiki.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "count": len(entries)})
}

func (h *Handler) SearchWiki(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	hits, err := h.Wiki.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": hits, "count": len(hits)})
}

func (h *Handler) DeleteWikiEntry(c *gin.Context) {
	deleted, err := h.Wiki.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !deleted {
		notFound(c, "wiki entry")
		return
	}
	c.Status(http.StatusNoContent)
}
