package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"voicegate/internal/leads"
	"voicegate/internal/models"
	"voicegate/internal/orchestrator"
)

const (
	maxTextLength      = 1000
	defaultVoiceID     = "naija_female_warm"
	defaultAudioFormat = "mp3"
	serviceName        = "voicegate"
)

// voiceCatalogue is the fixed set of synthesis voices the widget offers.
// voice_id values outside this list silently map to the default.
var voiceCatalogue = []models.Voice{
	{ID: "naija_female_warm", Name: "Amina", Accent: "nigerian", Gender: "female"},
	{ID: "naija_male_clear", Name: "Chinedu", Accent: "nigerian", Gender: "male"},
	{ID: "us_female_crisp", Name: "Sarah", Accent: "us", Gender: "female"},
	{ID: "us_male_calm", Name: "David", Accent: "us", Gender: "male"},
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "service": serviceName})
}

func (s *Server) handleVoices(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]models.Voice{"voices": voiceCatalogue})
}

func (s *Server) handleTTS(c echo.Context) error {
	var req struct {
		Text    string `json:"text"`
		VoiceID string `json:"voice_id"`
		Format  string `json:"format"`
	}
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	if strings.TrimSpace(req.Text) == "" {
		return requestError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "Missing text"}
	}
	if len(req.Text) > maxTextLength {
		return requestError{
			Status:  http.StatusBadRequest,
			Code:    "invalid_request",
			Message: fmt.Sprintf("text must not exceed %d characters", maxTextLength),
		}
	}

	format := req.Format
	if format == "" {
		format = defaultAudioFormat
	}

	speech, err := s.orch.Speak(c.Request().Context(), models.SpeakRequest{
		Text:    req.Text,
		VoiceID: validVoiceID(req.VoiceID),
		Format:  format,
	})
	if err != nil {
		return upstreamError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"audioUrl": dataURI(speech),
	})
}

func (s *Server) handleSTT(c echo.Context) error {
	var req struct {
		AudioBase64 string `json:"audioBase64"`
		MimeType    string `json:"mimeType"`
	}
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	if req.AudioBase64 == "" {
		return requestError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "Audio data is required"}
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil || len(audio) == 0 {
		return requestError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "audioBase64 must be valid base64 audio"}
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	transcript, err := s.orch.Transcribe(c.Request().Context(), models.TranscribeRequest{
		Audio:    audio,
		MimeType: mimeType,
	})
	if err != nil {
		return upstreamError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{"text": transcript.Text})
}

// chatRequest accepts the canonical messages array plus the legacy
// single-message alias still used by older widget builds; the alias is
// folded into a one-message history before dispatch.
type chatRequest struct {
	Messages  []models.Message `json:"messages"`
	Message   string           `json:"message"`
	SessionID string           `json:"sessionId"`
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	messages := req.Messages
	if len(messages) == 0 {
		if strings.TrimSpace(req.Message) == "" {
			return requestError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "Message is required"}
		}
		messages = []models.Message{{Role: "user", Content: req.Message}}
	}

	for _, msg := range messages {
		if msg.Role != "user" && msg.Role != "assistant" {
			return requestError{
				Status:  http.StatusBadRequest,
				Code:    "invalid_request",
				Message: fmt.Sprintf("message role %q must be user or assistant", msg.Role),
			}
		}
		if msg.Content == "" {
			return requestError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "message content must not be empty"}
		}
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "adaqua-" + uuid.NewString()
	}

	reply, err := s.orch.Converse(c.Request().Context(), models.ConverseRequest{
		Messages:  messages,
		SessionID: sessionID,
	})
	if err != nil {
		return upstreamError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"reply":     reply.Text,
		"sessionId": sessionID,
	})
}

func (s *Server) handleEvents(c echo.Context) error {
	var event map[string]any
	if err := decodeRequestBody(c, &event); err != nil {
		return err
	}

	eventType, _ := event["type"].(string)
	if eventType == "" {
		return requestError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "Missing required field: type"}
	}

	if err := s.relay.Forward(c.Request().Context(), event); err != nil {
		return requestError{Status: http.StatusInternalServerError, Code: "upstream_error", Message: "Failed to process event"}
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleQualify(c echo.Context) error {
	var lead leads.Lead
	if err := decodeRequestBody(c, &lead); err != nil {
		return err
	}

	if strings.TrimSpace(lead.Name) == "" || strings.TrimSpace(lead.Email) == "" {
		return requestError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "Missing required fields: name, email"}
	}

	return c.JSON(http.StatusOK, s.leads.Qualify(c.Request().Context(), lead))
}

func (s *Server) handleSummarize(c echo.Context) error {
	var req struct {
		Transcript string `json:"transcript"`
	}
	if err := decodeRequestBody(c, &req); err != nil {
		return err
	}

	if strings.TrimSpace(req.Transcript) == "" {
		return requestError{Status: http.StatusBadRequest, Code: "invalid_request", Message: "Missing required field: transcript"}
	}

	return c.JSON(http.StatusOK, s.leads.Summarize(c.Request().Context(), req.Transcript))
}

func validVoiceID(voiceID string) string {
	for _, voice := range voiceCatalogue {
		if voice.ID == voiceID {
			return voiceID
		}
	}
	return defaultVoiceID
}

func dataURI(speech *models.Speech) string {
	return "data:" + speech.MimeType + ";base64," + base64.StdEncoding.EncodeToString(speech.Audio)
}

func upstreamError(err error) error {
	if errors.Is(err, orchestrator.ErrAllProvidersExhausted) {
		return requestError{Status: http.StatusBadGateway, Code: "upstream_error", Message: "All providers failed"}
	}
	return requestError{Status: http.StatusBadGateway, Code: "upstream_error", Message: "upstream provider error"}
}
