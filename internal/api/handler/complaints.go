package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"civicvoice/backend/internal/auth"
	"civicvoice/backend/internal/cluster"
	"civicvoice/backend/internal/complaint"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// createComplaintRequest is the client-suppliable part of a complaint.
// Cluster fields are always computed server-side.
type createComplaintRequest struct {
	Text         string          `json:"text"`
	Language     string          `json:"language"`
	Category     string          `json:"category"`
	Department   string          `json:"department"`
	Location     models.Location `json:"location"`
	Keywords     []string        `json:"keywords"`
	PetitionText string          `json:"petitionText"`
	AudioURL     string          `json:"audioUrl"`
}

type updateComplaintRequest struct {
	Text         *string          `json:"text"`
	Language     *string          `json:"language"`
	Category     *string          `json:"category"`
	Keywords     *[]string        `json:"keywords"`
	Department   *string          `json:"department"`
	Location     *models.Location `json:"location"`
	Status       *string          `json:"status"`
	PetitionText *string          `json:"petitionText"`
	AudioURL     *string          `json:"audioUrl"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type categorizeRequest struct {
	Text string `json:"text"`
}

type emailPetitionRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
}

// CreateComplaint accepts JSON, or multipart form fields with an optional
// "image" file.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var (
		req      createComplaintRequest
		imageURL string
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if h.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
		}
		if err := c.Request.ParseMultipartForm(8 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": codeValidation, "message": "upload too large"})
				return
			}
			badRequest(c, "invalid multipart form")
			return
		}
		req = complaintFromForm(c)

		url, err := h.saveImage(c)
		if err != nil {
			h.respondError(c, err)
			return
		}
		imageURL = url
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.Complaints.CreateComplaint(c.Request.Context(), complaint.CreateInput{
		UserID:       auth.UserID(c),
		Text:         req.Text,
		Language:     req.Language,
		Category:     req.Category,
		Keywords:     req.Keywords,
		Department:   req.Department,
		Location:     req.Location,
		PetitionText: req.PetitionText,
		AudioURL:     req.AudioURL,
		ImageURL:     imageURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func complaintFromForm(c *gin.Context) createComplaintRequest {
	var keywords []string
	for _, raw := range c.PostFormArray("keywords") {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
	}
	return createComplaintRequest{
		Text:       c.PostForm("text"),
		Language:   c.PostForm("language"),
		Category:   c.PostForm("category"),
		Department: c.PostForm("department"),
		Location: models.Location{
			Village:  c.PostForm("village"),
			District: c.PostForm("district"),
			State:    c.PostForm("state"),
		},
		Keywords:     keywords,
		PetitionText: c.PostForm("petitionText"),
		AudioURL:     c.PostForm("audioUrl"),
	}
}

// saveImage stores the optional "image" part and returns its URL, or "".
func (h *Handler) saveImage(c *gin.Context) (string, error) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if h.Images == nil {
		return "", nil
	}

	f, err := file.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return h.Images.Save(c.Request.Context(), file.Filename, f)
}

func (h *Handler) GetComplaint(c *gin.Context) {
	found, err := h.Complaints.GetComplaint(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if found == nil {
		notFound(c, "complaint")
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) ListComplaints(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	list, err := h.Complaints.ListComplaints(c.Request.Context(), storage.ComplaintFilter{
		Status:    c.Query("status"),
		Category:  c.Query("category"),
		District:  c.Query("district"),
		ClusterID: c.Query("clusterId"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"complaints": list, "count": len(list)})
}

// ClusterCount reports how many complaints already share the cluster a new
// complaint with these fields would join.
func (h *Handler) ClusterCount(c *gin.Context) {
	category := c.Query("category")
	if strings.TrimSpace(category) == "" {
		badRequest(c, "category is required")
		return
	}
	loc := models.Location{
		Village:  c.Query("village"),
		District: c.Query("district"),
		State:    c.Query("state"),
	}

	count := h.Complaints.CountCluster(c.Request.Context(), category, loc)
	c.JSON(http.StatusOK, gin.H{
		"clusterId": cluster.DeriveKey(category, loc),
		"count":     count,
	})
}

func (h *Handler) ClusterMembers(c *gin.Context) {
	members, err := h.Complaints.ClusterMembers(c.Request.Context(), c.Param("clusterId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clusterId": c.Param("clusterId"), "complaints": members, "count": len(members)})
}

func (h *Handler) UpdateComplaint(c *gin.Context) {
	var req updateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	updated, err := h.Complaints.UpdateComplaint(c.Request.Context(), c.Param("id"), complaint.UpdateInput{
		Text:         req.Text,
		Language:     req.Language,
		Category:     req.Category,
		Keywords:     req.Keywords,
		Department:   req.Department,
		Location:     req.Location,
		Status:       req.Status,
		PetitionText: req.PetitionText,
		AudioURL:     req.AudioURL,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if updated == nil {
		notFound(c, "complaint")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	updated, err := h.Complaints.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Notes)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if updated == nil {
		notFound(c, "complaint")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	deleted, err := h.Complaints.DeleteComplaint(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if !deleted {
		notFound(c, "complaint")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Categorize(c *gin.Context) {
	if h.Petitions == nil {
		unavailable(c, "language model is not configured")
		return
	}
	var req categorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		badRequest(c, "text is required")
		return
	}

	out, err := h.Petitions.Categorize(c.Request.Context(), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DraftPetition asks the model for a petition and saves it on the complaint.
func (h *Handler) DraftPetition(c *gin.Context) {
	if h.Petitions == nil {
		unavailable(c, "language model is not configured")
		return
	}
	ctx := c.Request.Context()

	found, err := h.Complaints.GetComplaint(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if found == nil {
		notFound(c, "complaint")
		return
	}

	text, err := h.Petitions.DraftPetition(ctx, found)
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.Complaints.UpdateComplaint(ctx, found.ID, complaint.UpdateInput{PetitionText: &text})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if updated == nil {
		notFound(c, "complaint")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) EmailPetition(c *gin.Context) {
	if h.Mailer == nil {
		unavailable(c, "email is not configured")
		return
	}
	var req emailPetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.To) == "" {
		badRequest(c, "to is required")
		return
	}
	ctx := c.Request.Context()

	found, err := h.Complaints.GetComplaint(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if found == nil {
		notFound(c, "complaint")
		return
	}

	updated, err := h.Mailer.SendPetition(ctx, found, req.To, req.Subject)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if updated == nil {
		notFound(c, "complaint")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// pagination parses limit and offset. It writes a 400 and returns false on
// bad input.
func pagination(c *gin.Context) (limit, offset int, ok bool) {
	var err error
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return 0, 0, false
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			badRequest(c, "offset must be a non-negative integer")
			return 0, 0, false
		}
	}
	return limit, offset, true
}
