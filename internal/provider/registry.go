package provider

import (
	"errors"
	"fmt"
)

// ErrDuplicateProvider indicates an attempt to register the same provider
// twice for one capability.
var ErrDuplicateProvider = errors.New("provider already registered")

// Registry holds the ordered provider chain for each capability. Chains are
// assembled once at startup and immutable afterwards; list position is
// fallback priority.
type Registry struct {
	speech        []SpeechProvider
	transcription []TranscriptionProvider
	chat          []ChatProvider
}

// NewRegistry constructs an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterSpeech appends a speech provider to the synthesis fallback chain.
func (r *Registry) RegisterSpeech(p SpeechProvider) error {
	if p == nil {
		return errors.New("speech provider must not be nil")
	}
	for _, existing := range r.speech {
		if existing.Name() == p.Name() {
			return fmt.Errorf("%w: speech provider %q", ErrDuplicateProvider, p.Name())
		}
	}
	r.speech = append(r.speech, p)
	return nil
}

// RegisterTranscription appends a transcription provider to the chain.
func (r *Registry) RegisterTranscription(p TranscriptionProvider) error {
	if p == nil {
		return errors.New("transcription provider must not be nil")
	}
	for _, existing := range r.transcription {
		if existing.Name() == p.Name() {
			return fmt.Errorf("%w: transcription provider %q", ErrDuplicateProvider, p.Name())
		}
	}
	r.transcription = append(r.transcription, p)
	return nil
}

// RegisterChat appends a chat provider to the conversation fallback chain.
func (r *Registry) RegisterChat(p ChatProvider) error {
	if p == nil {
		return errors.New("chat provider must not be nil")
	}
	for _, existing := range r.chat {
		if existing.Name() == p.Name() {
			return fmt.Errorf("%w: chat provider %q", ErrDuplicateProvider, p.Name())
		}
	}
	r.chat = append(r.chat, p)
	return nil
}

// SpeechChain returns the ordered synthesis providers, highest priority first.
func (r *Registry) SpeechChain() []SpeechProvider {
	out := make([]SpeechProvider, len(r.speech))
	copy(out, r.speech)
	return out
}

// TranscriptionChain returns the ordered transcription providers.
func (r *Registry) TranscriptionChain() []TranscriptionProvider {
	out := make([]TranscriptionProvider, len(r.transcription))
	copy(out, r.transcription)
	return out
}

// ChatChain returns the ordered chat providers.
func (r *Registry) ChatChain() []ChatProvider {
	out := make([]ChatProvider, len(r.chat))
	copy(out, r.chat)
	return out
}
