package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"civicvoice/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Providers(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name         string
		cfg          config.LLMConfig
		wantEmbedder bool
	}{
		{name: "openai", cfg: config.LLMConfig{Provider: "openai", APIKey: "k"}, wantEmbedder: true},
		{name: "sarvam without embedding key", cfg: config.LLMConfig{Provider: "sarvam", APIKey: "k"}},
		{name: "sarvam with embedding key", cfg: config.LLMConfig{Provider: "Sarvam", APIKey: "k", EmbeddingKey: "e"}, wantEmbedder: true},
		{name: "ollama", cfg: config.LLMConfig{Provider: "ollama", BaseURL: "http://localhost:11434"}, wantEmbedder: true},
		{name: "claude", cfg: config.LLMConfig{Provider: "claude", APIKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat, embed, err := NewClient(ctx, tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, chat)
			if tt.wantEmbedder {
				assert.NotNil(t, embed)
			} else {
				assert.Nil(t, embed)
			}
		})
	}
}

func TestNewClient_Unsupported(t *testing.T) {
	_, _, err := NewClient(context.Background(), config.LLMConfig{Provider: "palm"})
	assert.ErrorContains(t, err, "unsupported llm provider")
}

func TestOpenAIClient_GenerateAndEmbed(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel, _ = body["model"].(string)

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/chat/completions":
			_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"namaste"}}]}`))
		case "/v1/embeddings":
			_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25]}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewOpenAIClient("key", "sarvam-m", "", srv.URL+"/v1")

	out, err := c.Generate(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "namaste", out)
	assert.Equal(t, "sarvam-m", gotModel)

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
	assert.Equal(t, "text-embedding-3-small", gotModel)
}

func TestClaudeClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude","content":[{"type":"text","text":"petition text"}],"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`))
	}))
	defer srv.Close()

	c := NewClaudeClient("key", "claude", srv.URL)

	out, err := c.Generate(context.Background(), "draft")
	require.NoError(t, err)
	assert.Equal(t, "petition text", out)
}

type contactJSON struct {
	Phone string `json:"phone"`
	Email string `json:"email"`
}

func TestDecodeStrict(t *testing.T) {
	got, err := DecodeStrict[contactJSON]("  {\"phone\":\"1800 180 5678\",\"email\":\"a@b.gov.in\"}\n")
	require.NoError(t, err)
	assert.Equal(t, "1800 180 5678", got.Phone)

	_, err = DecodeStrict[contactJSON]("Here you go: {\"phone\":\"1\"}")
	assert.Error(t, err)
}

func TestDecodeLenient(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "fenced", in: "```json\n{\"phone\":\"011-2345678\"}\n```", want: "011-2345678"},
		{name: "fenced without tag", in: "```\n{\"phone\":\"x\"}\n```", want: "x"},
		{name: "prose", in: "Sure! {\"phone\":\"9876543210\"} hope this helps", want: "9876543210"},
		{name: "no object", in: "I could not find it", wantErr: true},
		{name: "broken", in: "{\"phone\": }", wantErr: true},
		{name: "reversed braces", in: "} {", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeLenient[contactJSON](tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Phone)
		})
	}
}

func TestMockLLM_Queue(t *testing.T) {
	m := &MockLLM{Response: "default", ResponseQueue: []string{"first"}}

	a, _ := m.Generate(context.Background(), "p1")
	b, _ := m.Generate(context.Background(), "p2")

	assert.Equal(t, "first", a)
	assert.Equal(t, "default", b)
	assert.Equal(t, 2, m.Calls())

	m.Err = errors.New("boom")
	_, err := m.Generate(context.Background(), "p3")
	assert.Error(t, err)
}
