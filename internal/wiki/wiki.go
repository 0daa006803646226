// Package wiki stores indigenous-knowledge entries and indexes them for
// semantic search.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/llm"
	"civicvoice/backend/internal/models"
	"civicvoice/backend/internal/storage"
	"civicvoice/backend/internal/vector"

	"github.com/google/uuid"
)

var (
	ErrTitleRequired     = errors.New("title is required")
	ErrQueryRequired     = errors.New("query is required")
	ErrSearchUnavailable = errors.New("semantic search is not configured")
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// Index is the vector store the wiki writes embeddings to.
type Index interface {
	Upsert(ctx context.Context, entries ...vector.Entry) error
	Query(ctx context.Context, embedding []float32, topK int) ([]vector.SearchResult, error)
	Delete(ctx context.Context, ids ...string) error
}

// Hit is one search result with its similarity score.
type Hit struct {
	Entry models.WikiEntry `json:"entry"`
	Score float32          `json:"score"`
}

type Service struct {
	Storage  storage.WikiStore
	Embedder llm.EmbedderClient
	Index    Index
}

// NewService creates the wiki service. Without an embedder or index, entries
// are stored but not searchable.
func NewService(s storage.WikiStore, embedder llm.EmbedderClient, index Index) *Service {
	return &Service{Storage: s, Embedder: embedder, Index: index}
}

func (s *Service) searchable() bool {
	return s.Embedder != nil && s.Index != nil
}

// Create indexes the entry's text and then stores the row. The id is
// assigned up front so the vector and the row share it; if the insert fails
// the vector is removed again.
func (s *Service) Create(ctx context.Context, e *models.WikiEntry) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return ErrTitleRequired
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Tags == nil {
		e.Tags = models.StringList{}
	}

	if s.searchable() {
		if err := s.index(ctx, e); err != nil {
			return err
		}
	} else {
		slog.Warn("wiki entry stored without a vector, search is not configured", "wiki_id", e.ID)
	}

	if err := s.Storage.CreateWikiEntry(ctx, e); err != nil {
		if s.searchable() {
			if derr := s.Index.Delete(ctx, e.ID); derr != nil {
				slog.Warn("failed to remove vector after insert failure", "wiki_id", e.ID, "error", derr)
			}
		}
		return fmt.Errorf("failed to store wiki entry: %w", err)
	}
	return nil
}

func (s *Service) index(ctx context.Context, e *models.WikiEntry) error {
	embedding, err := s.Embedder.Embed(ctx, e.EmbeddingText())
	if err != nil {
		return fmt.Errorf("failed to embed wiki entry: %w", err)
	}
	entry := vector.Entry{
		ID:        e.ID,
		Embedding: embedding,
		Metadata: map[string]any{
			"title":    e.Title,
			"category": e.Category,
		},
	}
	if err := s.Index.Upsert(ctx, entry); err != nil {
		return fmt.Errorf("failed to index wiki entry: %w", err)
	}
	return nil
}

// Get returns (nil, nil) when the entry does not exist.
func (s *Service) Get(ctx context.Context, id string) (*models.WikiEntry, error) {
	return s.Storage.GetWikiEntryByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]models.WikiEntry, error) {
	if limit <= 0 {
		limit = config.DefaultListLimit
	}
	if limit > config.MaxListLimit {
		limit = config.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Storage.ListWikiEntries(ctx, limit, offset)
}

// Search embeds query and returns the matching entries best first. Vectors
// whose rows have been deleted are skipped.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	if !s.searchable() {
		return nil, ErrSearchUnavailable
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	embedding, err := s.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	matches, err := s.Index.Query(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	if len(matches) == 0 {
		return []Hit{}, nil
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	rows, err := s.Storage.GetWikiEntriesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load wiki entries: %w", err)
	}
	byID := make(map[string]models.WikiEntry, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}

	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		row, ok := byID[m.ID]
		if !ok {
			slog.Debug("skipping orphan vector", "wiki_id", m.ID)
			continue
		}
		hits = append(hits, Hit{Entry: row, Score: m.Score})
	}
	return hits, nil
}

// Delete removes the vector before the row, so a failure can leave an
// orphan vector (skipped by Search) but never an unsearchable row. It
// returns false when the entry does not exist.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	existing, err := s.Storage.GetWikiEntryByID(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			return false, fmt.Errorf("failed to delete vector: %w", err)
		}
	}
	return s.Storage.DeleteWikiEntry(ctx, id)
}
