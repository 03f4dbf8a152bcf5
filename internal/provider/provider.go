package provider

import (
	"context"
	"errors"

	"voicegate/internal/models"
)

// ErrUnsupportedOperation indicates the provider cannot fulfill the requested action.
var ErrUnsupportedOperation = errors.New("unsupported provider operation")

// SpeechProvider synthesizes audio for a piece of text.
type SpeechProvider interface {
	Name() string
	Speak(ctx context.Context, req models.SpeakRequest) (*models.Speech, error)
}

// TranscriptionProvider converts captured audio into text.
type TranscriptionProvider interface {
	Name() string
	Transcribe(ctx context.Context, req models.TranscribeRequest) (*models.Transcript, error)
}

// ChatProvider produces an assistant reply for a conversation history.
type ChatProvider interface {
	Name() string
	Converse(ctx context.Context, req models.ConverseRequest) (*models.Reply, error)
}
