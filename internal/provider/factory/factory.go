package factory

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"voicegate/internal/config"
	"voicegate/internal/provider"
	brainProvider "voicegate/internal/provider/brain"
	odiaProvider "voicegate/internal/provider/odia"
	openaiProvider "voicegate/internal/provider/openai"
)

const (
	defaultHTTPTimeout     = 60 * time.Second
	defaultDialTimeout     = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
)

// BuildRegistry constructs the per-capability provider chains from
// configuration. Chain order in the config file is fallback priority.
func BuildRegistry(cfg config.Config) (*provider.Registry, error) {
	registry := provider.NewRegistry()
	client := newHTTPClient(defaultHTTPTimeout)

	for _, pc := range cfg.Speak.Providers {
		p, err := newSpeechProvider(pc, client)
		if err != nil {
			return nil, fmt.Errorf("initialise speech provider %q: %w", pc.Name, err)
		}
		if err := registry.RegisterSpeech(p); err != nil {
			return nil, fmt.Errorf("register speech provider %q: %w", pc.Name, err)
		}
	}

	for _, pc := range cfg.Transcribe.Providers {
		p, err := newTranscriptionProvider(pc, client)
		if err != nil {
			return nil, fmt.Errorf("initialise transcription provider %q: %w", pc.Name, err)
		}
		if err := registry.RegisterTranscription(p); err != nil {
			return nil, fmt.Errorf("register transcription provider %q: %w", pc.Name, err)
		}
	}

	for _, pc := range cfg.Converse.Providers {
		p, err := newChatProvider(pc, client)
		if err != nil {
			return nil, fmt.Errorf("initialise chat provider %q: %w", pc.Name, err)
		}
		if err := registry.RegisterChat(p); err != nil {
			return nil, fmt.Errorf("register chat provider %q: %w", pc.Name, err)
		}
	}

	return registry, nil
}

func newSpeechProvider(pc config.ProviderConfig, client *http.Client) (provider.SpeechProvider, error) {
	switch pc.Kind {
	case "odia":
		return odiaProvider.New(pc.Name, pc, client)
	case "openai":
		return openaiProvider.New(pc.Name, pc, client)
	default:
		return nil, fmt.Errorf("kind %q cannot synthesize speech", pc.Kind)
	}
}

func newTranscriptionProvider(pc config.ProviderConfig, client *http.Client) (provider.TranscriptionProvider, error) {
	switch pc.Kind {
	case "openai":
		return openaiProvider.New(pc.Name, pc, client)
	default:
		return nil, fmt.Errorf("kind %q cannot transcribe audio", pc.Kind)
	}
}

func newChatProvider(pc config.ProviderConfig, client *http.Client) (provider.ChatProvider, error) {
	switch pc.Kind {
	case "brain":
		return brainProvider.New(pc.Name, pc, client)
	case "openai":
		return openaiProvider.New(pc.Name, pc, client)
	default:
		return nil, fmt.Errorf("kind %q cannot hold a conversation", pc.Kind)
	}
}

// NewRelayClient builds the HTTP client used by the event relay.
func NewRelayClient() *http.Client {
	return newHTTPClient(15 * time.Second)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
