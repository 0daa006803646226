package storage

import (
	"context"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/models"
)

func (s *Service) CreateWikiEntry(ctx context.Context, e *models.WikiEntry) error {
	return s.DB.WithContext(ctx).Create(e).Error
}

// GetWikiEntryByID returns (nil, nil) when the entry does not exist.
func (s *Service) GetWikiEntryByID(ctx context.Context, id string) (*models.WikiEntry, error) {
	var e models.WikiEntry
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetWikiEntriesByIDs loads the entries that still exist. Order is not
// guaranteed; callers re-rank.
func (s *Service) GetWikiEntriesByIDs(ctx context.Context, ids []string) ([]models.WikiEntry, error) {
	var out []models.WikiEntry
	if len(ids) == 0 {
		return out, nil
	}
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ListWikiEntries(ctx context.Context, limit, offset int) ([]models.WikiEntry, error) {
	if limit <= 0 {
		limit = config.DefaultListLimit
	}
	if limit > config.MaxListLimit {
		limit = config.MaxListLimit
	}
	var out []models.WikiEntry
	err := s.DB.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(max(offset, 0)).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) DeleteWikiEntry(ctx context.Context, id string) (bool, error) {
	result := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.WikiEntry{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
