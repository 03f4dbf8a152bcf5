package odia

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicegate/internal/config"
	"voicegate/internal/models"
	"voicegate/internal/normalize"
	"voicegate/internal/provider"
)

func newTestProvider(t *testing.T, upstream *httptest.Server, path string) *Provider {
	t.Helper()
	p, err := New("odia-test", config.ProviderConfig{
		BaseURL: upstream.URL,
		Path:    path,
		APIKey:  "tts-key",
	}, upstream.Client())
	require.NoError(t, err)
	return p
}

func TestSpeakJSONResponse(t *testing.T) {
	clip := []byte("synthesized-audio")

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tts", r.URL.Path)
		assert.Equal(t, "Bearer tts-key", r.Header.Get("Authorization"))

		var req struct {
			Text    string `json:"text"`
			VoiceID string `json:"voice_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Hello", req.Text)
		assert.Equal(t, "naija_female_warm", req.VoiceID)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"audio": base64.StdEncoding.EncodeToString(clip),
		})
	}))
	defer upstream.Close()

	p := newTestProvider(t, upstream, "/v1/tts")
	speech, err := p.Speak(context.Background(), models.SpeakRequest{
		Text:    "Hello",
		VoiceID: "naija_female_warm",
		Format:  "mp3",
	})

	require.NoError(t, err)
	assert.Equal(t, clip, speech.Audio)
	assert.Equal(t, "audio/mpeg", speech.MimeType)
}

func TestSpeakBinaryResponse(t *testing.T) {
	clip := []byte{0xFF, 0xFB, 0x01, 0x02}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(clip)
	}))
	defer upstream.Close()

	p := newTestProvider(t, upstream, "/synthesize")
	speech, err := p.Speak(context.Background(), models.SpeakRequest{Text: "Hello", Format: "mp3"})

	require.NoError(t, err)
	assert.Equal(t, clip, speech.Audio)
}

func TestSpeakBadStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "synthesis backend offline", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	p := newTestProvider(t, upstream, "/v1/tts")
	_, err := p.Speak(context.Background(), models.SpeakRequest{Text: "Hello"})

	var statusErr *provider.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
}

func TestSpeakEmptyOKBodyIsMalformed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	p := newTestProvider(t, upstream, "/v1/tts")
	_, err := p.Speak(context.Background(), models.SpeakRequest{Text: "Hello"})

	assert.ErrorIs(t, err, normalize.ErrNoShape)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New("odia", config.ProviderConfig{}, http.DefaultClient)
	assert.Error(t, err)
}
