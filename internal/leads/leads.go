// Package leads scores captured leads and summarizes call transcripts. Both
// operations prefer the configured brain service and fall back to local
// heuristics when it is unconfigured or unreachable, mirroring the
// availability-first stance of the rest of the gateway.
package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const (
	contentTypeJSON  = "application/json"
	userAgent        = "voicegate/0.1"
	maxResponseBytes = 1 << 20

	qualifyThreshold = 40
	summaryWordCap   = 60
)

// Lead is a captured contact from the marketing site.
type Lead struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Message   string `json:"message,omitempty"`
	Source    string `json:"source,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// QualifyResult is the scoring outcome for a lead.
type QualifyResult struct {
	Qualified bool   `json:"qualified"`
	Score     int    `json:"score"`
	Notes     string `json:"notes"`
}

// SummaryResult condenses a call transcript.
type SummaryResult struct {
	Summary string   `json:"summary"`
	Topics  []string `json:"topics"`
}

// Service calls the brain backend when configured.
type Service struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New constructs a lead service. An empty baseURL keeps everything local.
func New(baseURL, apiKey string, client *http.Client) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Qualify scores a lead, preferring the brain service.
func (s *Service) Qualify(ctx context.Context, lead Lead) QualifyResult {
	if s.baseURL != "" {
		var result QualifyResult
		err := s.post(ctx, "/api/qualify", lead, &result)
		if err == nil {
			return result
		}
		slog.Warn("brain qualify failed, using heuristic", "err", err)
	}
	return heuristicQualify(lead)
}

// Summarize condenses a transcript, preferring the brain service.
func (s *Service) Summarize(ctx context.Context, transcript string) SummaryResult {
	if s.baseURL != "" {
		payload := struct {
			Transcript string `json:"transcript"`
		}{Transcript: transcript}

		var result SummaryResult
		err := s.post(ctx, "/api/summarize", payload, &result)
		if err == nil {
			return result
		}
		slog.Warn("brain summarize failed, using heuristic", "err", err)
	}
	return heuristicSummarize(transcript)
}

func (s *Service) post(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("construct request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("User-Agent", userAgent)
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("brain request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("brain status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read brain response: %w", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode brain response: %w", err)
	}
	return nil
}

// heuristicQualify scores message length plus a bonus for website leads,
// capped at 100. Deliberately simple: a warm default when no brain exists.
func heuristicQualify(lead Lead) QualifyResult {
	score := len(lead.Message)
	if score == 0 {
		score = 10
	}
	if lead.Source == "website" {
		score += 20
	}
	if score > 100 {
		score = 100
	}
	return QualifyResult{
		Qualified: score >= qualifyThreshold,
		Score:     score,
		Notes:     "Heuristic score (brain unavailable)",
	}
}

func heuristicSummarize(transcript string) SummaryResult {
	words := strings.Fields(transcript)
	summary := strings.Join(words, " ")
	if len(words) > summaryWordCap {
		summary = strings.Join(words[:summaryWordCap], " ") + "…"
	}
	return SummaryResult{Summary: summary, Topics: []string{}}
}
