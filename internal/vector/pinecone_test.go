package vector

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

type recorded struct {
	path string
	body map[string]any
}

func newTestServer(t *testing.T, reply string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pc-key", r.Header.Get("Api-Key"))
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, recorded{path: r.URL.Path, body: body})
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(url string) *Client {
	return NewClient(config.VectorConfig{APIKey: "pc-key", IndexHost: url, Namespace: "wiki", Timeout: time.Second})
}

func TestClient_Upsert(t *testing.T) {
	srv, calls := newTestServer(t, `{"upsertedCount":1}`)

	err := newTestClient(srv.URL).Upsert(context.Background(), Entry{ID: "w1", Embedding: []float32{0.1}, Metadata: map[string]any{"title": "Rain"}})

	require.NoError(t, err)
	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, "/vectors/upsert", got.path)
	assert.Equal(t, "wiki", got.body["namespace"])
	vectors := got.body["vectors"].([]any)
	assert.Equal(t, "w1", vectors[0].(map[string]any)["id"])
}

func TestClient_Query(t *testing.T) {
	srv, calls := newTestServer(t, `{"matches":[{"id":"w2","score":0.93,"metadata":{"title":"Seeds"}},{"id":"w1","score":0.71}]}`)

	matches, err := newTestClient(srv.URL).Query(context.Background(), []float32{0.2, 0.3}, 5)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "w2", matches[0].ID)
	assert.InDelta(t, 0.93, matches[0].Score, 1e-6)
	assert.Equal(t, "Seeds", matches[0].Metadata["title"])
	assert.Equal(t, float64(5), (*calls)[0].body["topK"])
	assert.Equal(t, true, (*calls)[0].body["includeMetadata"])
}

func TestClient_Delete(t *testing.T) {
	srv, calls := newTestServer(t, `{}`)
	c := newTestClient(srv.URL)

	require.NoError(t, c.Delete(context.Background(), "w1"))
	require.NoError(t, c.Delete(context.Background()))

	require.Len(t, *calls, 1, "empty delete makes no request")
	assert.Equal(t, "/vectors/delete", (*calls)[0].path)
	assert.Equal(t, []any{"w1"}, (*calls)[0].body["ids"])
}

func TestNewClient_HostScheme(t *testing.T) {
	c := NewClient(config.VectorConfig{IndexHost: "wiki-abc.svc.pinecone.io/"})
	assert.Equal(t, "https://wiki-abc.svc.pinecone.io", c.host)
}
