// Package odia implements the ODIADEV text-to-speech provider. The service
// has grown several endpoint generations that answer with different bodies
// (JSON with a data URI, JSON with bare base64, or a raw audio stream), so
// each configured path is registered as its own entry in the fallback chain
// and responses go through the shared shape normalizer.
package odia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
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
	maxResponseBytes = 8 << 20 // audio clips for widget-sized text stay well under this
	maxErrorBytes    = 64 * 1024
)

// Provider calls one ODIADEV TTS endpoint.
type Provider struct {
	name    string
	url     string
	apiKey  string
	headers map[string]string
	client  *http.Client
}

// New constructs an ODIADEV speech provider.
func New(name string, cfg config.ProviderConfig, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}

	return &Provider{
		name:    name,
		url:     baseURL + "/" + strings.TrimLeft(cfg.Path, "/"),
		apiKey:  cfg.APIKey,
		headers: cfg.Headers,
		client:  client,
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

// Speak posts the synthesis request and normalizes whatever shape the
// endpoint answers with.
func (p *Provider) Speak(ctx context.Context, req models.SpeakRequest) (*models.Speech, error) {
	payload := struct {
		Text    string `json:"text"`
		VoiceID string `json:"voice_id,omitempty"`
		Format  string `json:"format,omitempty"`
	}{
		Text:    req.Text,
		VoiceID: req.VoiceID,
		Format:  req.Format,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal synthesis payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("User-Agent", userAgent)
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	for k, v := range p.headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("odia synthesis request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBytes))
		return nil, &provider.StatusError{Code: httpResp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read synthesis response: %w", err)
	}

	return normalize.Speech(raw, httpResp.Header.Get("Content-Type"), req.Format)
}
