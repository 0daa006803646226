package storage

import (
	"context"
	"log/slog"
	"time"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/models"

	"gorm.io/gorm"
)

// CreateComplaint inserts c in a single statement.
func (s *Service) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	if err := s.DB.WithContext(ctx).Create(c).Error; err != nil {
		slog.Error("failed to save complaint", "cluster_id", c.ClusterID, "error", err)
		return err
	}
	return nil
}

// CountComplaintsByCluster returns the exact number of complaints with the
// given cluster key.
func (s *Service) CountComplaintsByCluster(ctx context.Context, clusterID string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Model(&models.Complaint{}).
		Where("cluster_id = ?", clusterID).
		Count(&n).Error
	return n, err
}

// GetComplaintByID returns (nil, nil) when the complaint does not exist.
func (s *Service) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComplaints returns complaints newest first.
func (s *Service) ListComplaints(ctx context.Context, f ComplaintFilter) ([]models.Complaint, error) {
	q := s.DB.WithContext(ctx).Model(&models.Complaint{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.District != "" {
		q = q.Where("location->>'district' = ?", f.District)
	}
	if f.ClusterID != "" {
		q = q.Where("cluster_id = ?", f.ClusterID)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = config.DefaultListLimit
	}
	if limit > config.MaxListLimit {
		limit = config.MaxListLimit
	}
	offset := max(f.Offset, 0)

	var out []models.Complaint
	if err := q.Order("created_at desc").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListComplaintsByStatus returns every complaint whose status is one of
// statuses, oldest first.
func (s *Service) ListComplaintsByStatus(ctx context.Context, statuses ...string) ([]models.Complaint, error) {
	var out []models.Complaint
	if len(statuses) == 0 {
		return out, nil
	}
	err := s.DB.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListClusterMembers returns every complaint in a cluster, oldest first.
func (s *Service) ListClusterMembers(ctx context.Context, clusterID string) ([]models.Complaint, error) {
	var out []models.Complaint
	err := s.DB.WithContext(ctx).
		Where("cluster_id = ?", clusterID).
		Order("created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateComplaint applies a partial update keyed by column name and returns
// the reloaded row. updated_at is always refreshed, so an empty map is a
// touch. Returns (nil, nil) for an unknown id.
func (s *Service) UpdateComplaint(ctx context.Context, id string, fields map[string]any) (*models.Complaint, error) {
	updates := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = time.Now()

	result := s.DB.WithContext(ctx).
		Model(&models.Complaint{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		slog.Error("failed to update complaint", "complaint_id", id, "error", result.Error)
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return s.GetComplaintByID(ctx, id)
}

// AppendEmailLog adds entry to the complaint's email log. Returns (nil, nil)
// for an unknown id.
func (s *Service) AppendEmailLog(ctx context.Context, id string, entry models.EmailLogEntry) (*models.Complaint, error) {
	var found bool
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Complaint
		err := tx.Where("id = ?", id).First(&c).Error
		if notFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		entries := append(c.EmailLog, entry)
		return tx.Model(&models.Complaint{}).
			Where("id = ?", id).
			Updates(map[string]any{"email_log": entries, "updated_at": time.Now()}).Error
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return s.GetComplaintByID(ctx, id)
}

// DeleteComplaint reports false when nothing was deleted.
func (s *Service) DeleteComplaint(ctx context.Context, id string) (bool, error) {
	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Complaint{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
