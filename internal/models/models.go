package models

import "fmt"

// Capability identifies one of the proxied AI capabilities.
type Capability string

const (
	CapabilitySpeak      Capability = "speak"
	CapabilityTranscribe Capability = "transcribe"
	CapabilityConverse   Capability = "converse"
)

// Message represents a single conversational message in the unified schema.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SpeakRequest asks a provider to synthesize speech for a piece of text.
type SpeakRequest struct {
	Text    string
	VoiceID string
	Format  string
}

// TranscribeRequest asks a provider to transcribe captured audio.
type TranscribeRequest struct {
	Audio    []byte
	MimeType string
}

// ConverseRequest carries an ordered chat history, oldest message first.
type ConverseRequest struct {
	Messages  []Message
	SessionID string
}

// Speech is the canonical text-to-speech payload.
type Speech struct {
	Audio    []byte
	MimeType string
}

// Transcript is the canonical speech-to-text payload. An empty Text is a
// valid transcription of silence, not an error.
type Transcript struct {
	Text string
}

// Reply is the canonical chat payload.
type Reply struct {
	Text string
}

// FailureKind classifies why a provider attempt did not produce a payload.
type FailureKind int

const (
	FailureUnreachable FailureKind = iota
	FailureTimeout
	FailureBadStatus
	FailureMalformedBody
)

func (k FailureKind) String() string {
	switch k {
	case FailureUnreachable:
		return "unreachable"
	case FailureTimeout:
		return "timeout"
	case FailureBadStatus:
		return "bad_status"
	case FailureMalformedBody:
		return "malformed_body"
	default:
		return "unknown"
	}
}

// ProviderFailure records a single failed provider attempt.
type ProviderFailure struct {
	Provider string
	Kind     FailureKind
	Status   int
	Detail   string
}

func (f ProviderFailure) Error() string {
	if f.Kind == FailureBadStatus {
		return fmt.Sprintf("provider %s: %s %d: %s", f.Provider, f.Kind, f.Status, f.Detail)
	}
	return fmt.Sprintf("provider %s: %s: %s", f.Provider, f.Kind, f.Detail)
}

// Voice describes an entry in the synthesis voice catalogue.
type Voice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Accent string `json:"accent"`
	Gender string `json:"gender"`
}
