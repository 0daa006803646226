package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"civicvoice/backend/internal/config"
)

const sarvamBaseURL = "https://api.sarvam.ai/v1"

// NewClient builds the chat client and, when the provider supports it, the
// embedder. Providers without embeddings fall back to OpenAI embeddings if
// an embedding key is configured; otherwise the embedder is nil.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, EmbedderClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		return c, c, nil

	case "sarvam":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = sarvamBaseURL
		}
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		return c, fallbackEmbedder(cfg), nil

	case "ollama":
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		slog.Info("initializing ollama via openai-compatible api", "base_url", baseURL)

		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		return c, c, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil

	case "claude":
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		return c, fallbackEmbedder(cfg), nil

	default:
		return nil, nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

func fallbackEmbedder(cfg config.LLMConfig) EmbedderClient {
	if cfg.EmbeddingKey == "" {
		return nil
	}
	return NewOpenAIClient(cfg.EmbeddingKey, "", cfg.EmbeddingModel, "")
}
