// Package vector stores and queries embeddings in a Pinecone index.
package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/restclient"
)

// Entry is one vector with its metadata.
type Entry struct {
	ID        string         `json:"id"`
	Embedding []float32      `json:"values"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SearchResult is a query match, best first.
type SearchResult struct {
	ID       string         `json:"id"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type upsertRequest struct {
	Vectors   []Entry `json:"vectors"`
	Namespace string  `json:"namespace,omitempty"`
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	IncludeMetadata bool      `json:"includeMetadata"`
	Namespace       string    `json:"namespace,omitempty"`
}

type queryResponse struct {
	Matches []SearchResult `json:"matches"`
}

type deleteRequest struct {
	IDs       []string `json:"ids"`
	Namespace string   `json:"namespace,omitempty"`
}

// Client talks to a single Pinecone index host within one namespace.
type Client struct {
	apiKey     string
	host       string
	namespace  string
	httpClient *http.Client
}

func NewClient(cfg config.VectorConfig) *Client {
	host := strings.TrimSuffix(cfg.IndexHost, "/")
	if host != "" && !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return &Client{
		apiKey:     cfg.APIKey,
		host:       host,
		namespace:  cfg.Namespace,
		httpClient: restclient.New(cfg.Timeout),
	}
}

func (c *Client) Upsert(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return c.post(ctx, "/vectors/upsert", upsertRequest{Vectors: entries, Namespace: c.namespace}, nil)
}

func (c *Client) Query(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	var out queryResponse
	err := c.post(ctx, "/query", queryRequest{
		Vector:          embedding,
		TopK:            topK,
		IncludeMetadata: true,
		Namespace:       c.namespace,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.Matches, nil
}

// Delete removes vectors by id. Unknown ids are not an error.
func (c *Client) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.post(ctx, "/vectors/delete", deleteRequest{IDs: ids, Namespace: c.namespace}, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)

	if err := restclient.DoJSON(c.httpClient, req, out); err != nil {
		return fmt.Errorf("pinecone %s: %w", path, err)
	}
	return nil
}
