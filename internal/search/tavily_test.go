package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civicvoice/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))

		var req searchRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "jal board agra phone", req.Query)
		assert.Equal(t, 5, req.MaxResults)
		assert.True(t, req.IncludeAnswer)

		_, _ = w.Write([]byte(`{"query":"q","answer":"Call 1800-180-5678","results":[{"title":"Jal Board","url":"https://jal.up.gov.in","content":"Helpline 1800-180-5678","score":0.91}]}`))
	}))
	defer srv.Close()

	c := NewClient(config.SearchConfig{APIKey: "tvly-test", BaseURL: srv.URL + "/", Timeout: time.Second})

	resp, err := c.Search(context.Background(), "jal board agra phone", 5)

	require.NoError(t, err)
	assert.Equal(t, "Call 1800-180-5678", resp.Answer)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "https://jal.up.gov.in", resp.Results[0].URL)
	assert.InDelta(t, 0.91, resp.Results[0].Score, 1e-9)
}

func TestClient_Search_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"invalid query"}`))
	}))
	defer srv.Close()

	c := NewClient(config.SearchConfig{BaseURL: srv.URL, Timeout: time.Second})

	_, err := c.Search(context.Background(), "", 5)

	assert.ErrorContains(t, err, "status 400")
}
