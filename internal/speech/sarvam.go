// Package speech transcribes and translates Indian-language audio and text
// through the Sarvam API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/restclient"
)

type Transcript struct {
	Transcript   string `json:"transcript"`
	LanguageCode string `json:"languageCode"`
}

type sttResponse struct {
	RequestID    string `json:"request_id"`
	Transcript   string `json:"transcript"`
	LanguageCode string `json:"language_code"`
}

type translateRequest struct {
	Input              string `json:"input"`
	SourceLanguageCode string `json:"source_language_code"`
	TargetLanguageCode string `json:"target_language_code"`
}

type translateResponse struct {
	TranslatedText     string `json:"translated_text"`
	SourceLanguageCode string `json:"source_language_code"`
}

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(cfg config.SarvamConfig) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		model:      cfg.STTModel,
		httpClient: restclient.New(cfg.Timeout),
	}
}

// Transcribe sends audio for speech-to-text. languageCode may be empty or
// "unknown" to let the service detect it.
func (c *Client) Transcribe(ctx context.Context, audio io.Reader, filename, languageCode string) (*Transcript, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}
	if err := w.WriteField("model", c.model); err != nil {
		return nil, err
	}
	if languageCode == "" {
		languageCode = "unknown"
	}
	if err := w.WriteField("language_code", languageCode); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/speech-to-text", &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("api-subscription-key", c.apiKey)

	var out sttResponse
	if err := restclient.DoJSON(c.httpClient, req, &out); err != nil {
		return nil, fmt.Errorf("sarvam speech-to-text: %w", err)
	}
	return &Transcript{Transcript: out.Transcript, LanguageCode: out.LanguageCode}, nil
}

// Translate converts text between Sarvam language codes such as "hi-IN" and
// "en-IN". A blank source lets the service detect it.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" {
		source = "auto"
	}
	payload, err := json.Marshal(translateRequest{
		Input:              text,
		SourceLanguageCode: source,
		TargetLanguageCode: target,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", c.apiKey)

	var out translateResponse
	if err := restclient.DoJSON(c.httpClient, req, &out); err != nil {
		return "", fmt.Errorf("sarvam translate: %w", err)
	}
	return out.TranslatedText, nil
}
