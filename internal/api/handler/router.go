package handler

import (
	"net/http"

	"civicvoice/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

// Router builds the gin engine with every route. Complaint and wiki writes
// require a Bearer token; reads are public.
func (h *Handler) Router() *gin.Engine {
	r := gin.Default()
	r.Use(h.metricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Metrics != nil {
		r.GET(h.Metrics.Path(), gin.WrapH(h.Metrics.Handler()))
	}
	if h.UploadDir != "" {
		r.Static("/uploads", h.UploadDir)
	}
	r.GET("/ws/feed", h.ServeFeed)

	api := r.Group("/api")
	requireAuth := auth.Middleware(h.JWT)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/otp/send", h.SendOTP)
		authGroup.POST("/otp/verify", h.VerifyOTP)
	}

	complaints := api.Group("/complaints")
	{
		complaints.GET("", h.ListComplaints)
		complaints.GET("/cluster-count", h.ClusterCount)
		complaints.GET("/cluster/:clusterId", h.ClusterMembers)
		complaints.POST("/categorize", h.Categorize)
		complaints.GET("/:id", h.GetComplaint)

		complaints.POST("", requireAuth, h.CreateComplaint)
		complaints.PATCH("/:id", requireAuth, h.UpdateComplaint)
		complaints.PATCH("/:id/status", requireAuth, h.UpdateStatus)
		complaints.DELETE("/:id", requireAuth, h.DeleteComplaint)
		complaints.POST("/:id/petition", requireAuth, h.DraftPetition)
		complaints.POST("/:id/email", requireAuth, h.EmailPetition)
	}

	voice := api.Group("/voice")
	{
		voice.POST("/transcribe", h.Transcribe)
		voice.POST("/translate", h.Translate)
	}

	api.POST("/contacts/find", h.FindContact)

	wikiGroup := api.Group("/wiki")
	{
		wikiGroup.GET("", h.ListWikiEntries)
		wikiGroup.GET("/search", h.SearchWiki)
		wikiGroup.GET("/:id", h.GetWikiEntry)
		wikiGroup.POST("", requireAuth, h.CreateWikiEntry)
		wikiGroup.DELETE("/:id", requireAuth, h.DeleteWikiEntry)
	}

	api.GET("/escalation/status", h.EscalationStatus)

	return r
}
