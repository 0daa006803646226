package speech

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"civicvoice/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.SarvamConfig{APIKey: "sk-test", BaseURL: url, STTModel: "saarika:v2.5", Timeout: time.Second})
}

func TestClient_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/speech-to-text", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("api-subscription-key"))

		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "saarika:v2.5", r.FormValue("model"))
		assert.Equal(t, "hi-IN", r.FormValue("language_code"))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "voice.wav", hdr.Filename)
		assert.Equal(t, "RIFF", string(data))

		_, _ = w.Write([]byte(`{"request_id":"r1","transcript":"नल टूटा है","language_code":"hi-IN"}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Transcribe(context.Background(), strings.NewReader("RIFF"), "voice.wav", "hi-IN")

	require.NoError(t, err)
	assert.Equal(t, "नल टूटा है", out.Transcript)
	assert.Equal(t, "hi-IN", out.LanguageCode)
}

func TestClient_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		var req translateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "auto", req.SourceLanguageCode)
		assert.Equal(t, "en-IN", req.TargetLanguageCode)

		_, _ = w.Write([]byte(`{"translated_text":"The tap is broken","source_language_code":"hi-IN"}`))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Translate(context.Background(), "नल टूटा है", "", "en-IN")

	require.NoError(t, err)
	assert.Equal(t, "The tap is broken", out)
}

func TestClient_Translate_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Translate(context.Background(), "x", "hi-IN", "en-IN")

	assert.ErrorContains(t, err, "status 403")
}
