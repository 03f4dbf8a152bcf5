// Package brain implements the primary conversation provider: the
// workflow-automation backend that answers widget messages. Its response
// field naming varies between flows, so replies go through the shared shape
// normalizer rather than a fixed schema.
package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"voicegate/internal/config"
	"voicegate/internal/models"
	"voicegate/internal/normalize"
	"voicegate/internal/provider"
)

const (
	contentTypeJSON  = "application/json"
	userAgent        = "voicegate/0.1"
	eventSource      = "adaqua-chat-widget"
	maxResponseBytes = 1 << 20
	maxErrorBytes    = 64 * 1024
)

// Provider posts the latest user message to the automation backend.
type Provider struct {
	name    string
	url     string
	apiKey  string
	headers map[string]string
	client  *http.Client
	now     func() time.Time
}

// New constructs a brain conversation provider.
func New(name string, cfg config.ProviderConfig, client *http.Client) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}

	url := baseURL
	if path := strings.TrimLeft(cfg.Path, "/"); path != "" {
		url += "/" + path
	}

	return &Provider{
		name:    name,
		url:     url,
		apiKey:  cfg.APIKey,
		headers: cfg.Headers,
		client:  client,
		now:     time.Now,
	}, nil
}

func (p *Provider) Name() string {
	return p.name
}

// Converse forwards the latest user message with session metadata. The
// backend is a stateless flow that only consumes the newest turn.
func (p *Provider) Converse(ctx context.Context, req models.ConverseRequest) (*models.Reply, error) {
	payload := struct {
		Message   string `json:"message"`
		SessionID string `json:"sessionId"`
		Timestamp string `json:"timestamp"`
		Source    string `json:"source"`
	}{
		Message:   latestUserMessage(req.Messages),
		SessionID: req.SessionID,
		Timestamp: p.now().UTC().Format(time.RFC3339),
		Source:    eventSource,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal conversation payload: %w", err)
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
		return nil, fmt.Errorf("brain conversation request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBytes))
		return nil, &provider.StatusError{Code: httpResp.StatusCode, Body: strings.TrimSpace(string(detail))}
	}

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read conversation response: %w", err)
	}

	return normalize.Reply(raw, httpResp.Header.Get("Content-Type"))
}

func latestUserMessage(messages []models.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}
