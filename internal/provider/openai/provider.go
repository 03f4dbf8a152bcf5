// Package openai implements the fallback provider for all three
// capabilities against OpenAI-compatible APIs: chat completions for
// conversation, audio/speech for synthesis and audio/transcriptions
// (Whisper) for transcription.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"voicegate/internal/config"
	"voicegate/internal/models"
	"voicegate/internal/normalize"
	"voicegate/internal/provider"
)

const (
	contentTypeJSON  = "application/json"
	userAgent        = "voicegate/0.1"
	maxResponseBytes = 8 << 20
	maxErrorBytes    = 64 * 1024

	defaultChatModel   = "gpt-4o-mini"
	defaultSpeechModel = "tts-1"
	defaultSTTModel    = "whisper-1"
	defaultSpeechVoice = "alloy"
)

// voiceAliases maps widget voice IDs onto the closest OpenAI voices so the
// fallback keeps a comparable timbre.
var voiceAliases = map[string]string{
	"naija_female_warm": "nova",
	"naija_male_clear":  "onyx",
	"us_female_crisp":   "shimmer",
	"us_male_calm":      "echo",
}

// Provider implements Speak, Transcribe and Converse against one
// OpenAI-compatible base URL.
type Provider struct {
	name      string
	apiKey    string
	baseURL   string
	chatModel string
	headers   map[string]string
	client    *http.Client
}

// New creates a new OpenAI provider.
func New(name string, cfg config.ProviderConfig, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}

	chatModel := cfg.Model
	if chatModel == "" {
		chatModel = defaultChatModel
	}

	return &Provider{
		name:      name,
		apiKey:    cfg.APIKey,
		baseURL:   baseURL,
		chatModel: chatModel,
		headers:   cfg.Headers,
		client:    client,
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

// Converse sends the history to chat/completions and normalizes the reply.
func (p *Provider) Converse(ctx context.Context, req models.ConverseRequest) (*models.Reply, error) {
	payload := struct {
		Model    string           `json:"model"`
		Messages []models.Message `json:"messages"`
	}{
		Model:    p.chatModel,
		Messages: req.Messages,
	}

	raw, contentType, err := p.postJSON(ctx, p.baseURL+"/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	return normalize.Reply(raw, contentType)
}

// Speak synthesizes audio via audio/speech; the endpoint streams raw audio
// bytes which the normalizer passes through.
func (p *Provider) Speak(ctx context.Context, req models.SpeakRequest) (*models.Speech, error) {
	format := req.Format
	if format == "" {
		format = "mp3"
	}

	payload := struct {
		Model          string `json:"model"`
		Input          string `json:"input"`
		Voice          string `json:"voice"`
		ResponseFormat string `json:"response_format"`
	}{
		Model:          defaultSpeechModel,
		Input:          req.Text,
		Voice:          speechVoice(req.VoiceID),
		ResponseFormat: format,
	}

	raw, contentType, err := p.postJSON(ctx, p.baseURL+"/audio/speech", payload)
	if err != nil {
		return nil, err
	}
	return normalize.Speech(raw, contentType, format)
}

// Transcribe uploads the clip to audio/transcriptions as multipart form data.
func (p *Provider) Transcribe(ctx context.Context, req models.TranscribeRequest) (*models.Transcript, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", clipFilename(req.MimeType))
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, fmt.Errorf("write audio part: %w", err)
	}
	if err := writer.WriteField("model", defaultSTTModel); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return nil, fmt.Errorf("write response_format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	p.setCommonHeaders(httpReq)

	raw, contentType, err := p.send(httpReq)
	if err != nil {
		return nil, err
	}
	return normalize.Transcript(raw, contentType)
}

func (p *Provider) postJSON(ctx context.Context, url string, payload any) ([]byte, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("construct request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	p.setCommonHeaders(httpReq)

	return p.send(httpReq)
}

func (p *Provider) setCommonHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	for k, v := range p.headers {
		req.Header.Set(k, v)
	}
}

func (p *Provider) send(req *http.Request) ([]byte, string, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", parseAPIError(resp)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read response body: %w", err)
	}
	return raw, resp.Header.Get("Content-Type"), nil
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
	if err != nil {
		return &provider.StatusError{Code: resp.StatusCode, Body: "failed to read error body"}
	}

	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return &provider.StatusError{
			Code: resp.StatusCode,
			Body: fmt.Sprintf("%s: %s", apiErr.Error.Type, apiErr.Error.Message),
		}
	}

	return &provider.StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

func speechVoice(voiceID string) string {
	if alias, ok := voiceAliases[voiceID]; ok {
		return alias
	}
	return defaultSpeechVoice
}

func clipFilename(mimeType string) string {
	switch {
	case strings.Contains(mimeType, "wav"):
		return "audio.wav"
	case strings.Contains(mimeType, "ogg"):
		return "audio.ogg"
	case strings.Contains(mimeType, "mp4"):
		return "audio.mp4"
	case strings.Contains(mimeType, "mpeg"), strings.Contains(mimeType, "mp3"):
		return "audio.mp3"
	default:
		return "audio.webm"
	}
}
