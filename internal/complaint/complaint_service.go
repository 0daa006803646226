// Package complaint creates, updates and clusters citizen complaints.
package complaint

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"civicvoice/backend/internal/cluster"
	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/metrics"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/storage"
)

// EventPublisher pushes complaint events to the live feed.
type EventPublisher interface {
	PublishEvent(ctx context.Context, ev models.ComplaintEvent) error
}

// Service handles the business logic for complaints.
type Service struct {
	Storage storage.ComplaintStore
	Events  EventPublisher
	Metrics *metrics.Collector

	now func() time.Time
}

// NewService creates a new complaint service. events and m may be nil.
func NewService(s storage.ComplaintStore, events EventPublisher, m *metrics.Collector) *Service {
	return &Service{Storage: s, Events: events, Metrics: m, now: time.Now}
}

// CreateInput is what a client may supply for a new complaint. Cluster
// fields are always computed here.
type CreateInput struct {
	UserID       string
	Text         string
	Language     string
	Category     string
	Keywords     []string
	Department   string
	Location     models.Location
	Status       string
	PetitionText string
	AudioURL     string
	ImageURL     string
}

// UpdateInput is a partial update; nil fields are left alone. Category and
// Location are accepted only to be rejected with a ValidationError.
type UpdateInput struct {
	Text         *string
	Language     *string
	Category     *string
	Keywords     *[]string
	Department   *string
	Location     *models.Location
	Status       *string
	PetitionText *string
	AudioURL     *string
	ImageURL     *string
}

// CountCluster returns how many complaints already share the cluster key of
// category and loc. A datastore failure is logged and counted as zero.
func (s *Service) CountCluster(ctx context.Context, category string, loc models.Location) int {
	key := cluster.DeriveKey(category, loc)
	n, err := s.Storage.CountComplaintsByCluster(ctx, key)
	if err != nil {
		slog.Warn("cluster count failed, assuming empty cluster", "cluster_id", key, "error", err)
		s.Metrics.RecordClusterCountFailure()
		return 0
	}
	return int(n)
}

// CreateComplaint stamps the cluster key and a snapshot of the cluster size,
// then inserts the complaint. The count and the insert are not atomic, so two
// concurrent submissions may both see the same count.
func (s *Service) CreateComplaint(ctx context.Context, in CreateInput) (*models.Complaint, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, &ValidationError{Field: "text", Message: "is required"}
	}
	category := cluster.NormalizeCategory(in.Category)
	if !config.IsValidCategory(category) {
		return nil, &ValidationError{Field: "category", Message: "must be one of " + strings.Join(config.Categories, ", ")}
	}
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	if !models.IsValidStatus(status) {
		return nil, &ValidationError{Field: "status", Message: "unknown status " + status}
	}

	existing := s.CountCluster(ctx, category, in.Location)

	keywords := models.StringList(in.Keywords)
	if keywords == nil {
		keywords = models.StringList{}
	}

	c := &models.Complaint{
		UserID:       in.UserID,
		Text:         in.Text,
		Language:     in.Language,
		Category:     category,
		Keywords:     keywords,
		Department:   in.Department,
		Location:     in.Location,
		Status:       status,
		ClusterID:    cluster.DeriveKey(category, in.Location),
		ClusterCount: existing + 1,
		PetitionText: in.PetitionText,
		AudioURL:     in.AudioURL,
		ImageURL:     in.ImageURL,
	}

	if err := s.Storage.CreateComplaint(ctx, c); err != nil {
		return nil, &RepositoryError{Op: "create", Err: err}
	}

	s.Metrics.RecordComplaintCreated(category)
	s.publish(ctx, models.EventComplaintCreated, c)
	return c, nil
}

// GetComplaint returns (nil, nil) for an unknown id.
func (s *Service) GetComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	c, err := s.Storage.GetComplaintByID(ctx, id)
	if err != nil {
		return nil, &RepositoryError{Op: "get", Err: err}
	}
	return c, nil
}

func (s *Service) ListComplaints(ctx context.Context, f storage.ComplaintFilter) ([]models.Complaint, error) {
	if f.Status != "" && !models.IsValidStatus(f.Status) {
		return nil, &ValidationError{Field: "status", Message: "unknown status " + f.Status}
	}
	out, err := s.Storage.ListComplaints(ctx, f)
	if err != nil {
		return nil, &RepositoryError{Op: "list", Err: err}
	}
	return out, nil
}

// ClusterMembers lists every complaint sharing clusterID, oldest first.
func (s *Service) ClusterMembers(ctx context.Context, clusterID string) ([]models.Complaint, error) {
	out, err := s.Storage.ListClusterMembers(ctx, clusterID)
	if err != nil {
		return nil, &RepositoryError{Op: "list cluster", Err: err}
	}
	return out, nil
}

// UpdateComplaint changes only the fields set in in and always refreshes
// updatedAt. Category and location make up the cluster key, which is fixed
// at creation, so changing either is rejected. Returns (nil, nil) for an
// unknown id.
func (s *Service) UpdateComplaint(ctx context.Context, id string, in UpdateInput) (*models.Complaint, error) {
	if in.Category != nil {
		return nil, &ValidationError{Field: "category", Message: "cannot change after creation"}
	}
	if in.Location != nil {
		return nil, &ValidationError{Field: "location", Message: "cannot change after creation"}
	}

	fields := make(map[string]any)

	if in.Text != nil {
		if strings.TrimSpace(*in.Text) == "" {
			return nil, &ValidationError{Field: "text", Message: "must not be empty"}
		}
		fields["text"] = *in.Text
	}
	if in.Language != nil {
		fields["language"] = *in.Language
	}
	if in.Keywords != nil {
		kw := models.StringList(*in.Keywords)
		if kw == nil {
			kw = models.StringList{}
		}
		fields["keywords"] = kw
	}
	if in.Department != nil {
		fields["department"] = *in.Department
	}
	if in.Status != nil {
		if !models.IsValidStatus(*in.Status) {
			return nil, &ValidationError{Field: "status", Message: "unknown status " + *in.Status}
		}
		fields["status"] = *in.Status
	}
	if in.PetitionText != nil {
		fields["petition_text"] = *in.PetitionText
	}
	if in.AudioURL != nil {
		fields["audio_url"] = *in.AudioURL
	}
	if in.ImageURL != nil {
		fields["image_url"] = *in.ImageURL
	}

	c, err := s.Storage.UpdateComplaint(ctx, id, fields)
	if err != nil {
		return nil, &RepositoryError{Op: "update", Err: err}
	}
	if c != nil && in.Status != nil {
		s.publish(ctx, models.EventStatusChanged, c)
	}
	return c, nil
}

// UpdateStatus is a partial update restricted to status. notes is accepted
// but not written to the status history.
func (s *Service) UpdateStatus(ctx context.Context, id, status, notes string) (*models.Complaint, error) {
	if status == "" {
		return nil, &ValidationError{Field: "status", Message: "is required"}
	}
	if notes != "" {
		slog.Debug("status notes received", "complaint_id", id, "status", status, "notes", notes)
	}
	return s.UpdateComplaint(ctx, id, UpdateInput{Status: &status})
}

// DeleteComplaint reports false for an unknown id.
func (s *Service) DeleteComplaint(ctx context.Context, id string) (bool, error) {
	ok, err := s.Storage.DeleteComplaint(ctx, id)
	if err != nil {
		return false, &RepositoryError{Op: "delete", Err: err}
	}
	return ok, nil
}

func (s *Service) publish(ctx context.Context, eventType string, c *models.Complaint) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishEvent(ctx, models.NewComplaintEvent(eventType, c, s.now())); err != nil {
		slog.Warn("failed to publish complaint event", "type", eventType, "complaint_id", c.ID, "error", err)
	}
}
