// Package orchestrator runs the per-capability provider fallback loop.
// Providers are tried strictly in registry order with an independent timeout
// per attempt; the first success short-circuits the chain. When every
// provider fails the orchestrator answers from the local degradation policy
// where the capability allows it, so AI failures never surface to the
// widget as errors.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"voicegate/internal/degrade"
	"voicegate/internal/models"
	"voicegate/internal/normalize"
	"voicegate/internal/provider"
)

// ErrAllProvidersExhausted indicates every provider in a chain failed and
// degradation is disabled for the capability.
var ErrAllProvidersExhausted = errors.New("all providers exhausted")

// Options tunes per-capability behaviour.
type Options struct {
	SpeakTimeout      time.Duration
	TranscribeTimeout time.Duration
	ConverseTimeout   time.Duration

	SpeakDegrade      bool
	TranscribeDegrade bool
	ConverseDegrade   bool
}

// DefaultOptions enables degradation everywhere with a 10s attempt budget.
func DefaultOptions() Options {
	return Options{
		SpeakTimeout:      10 * time.Second,
		TranscribeTimeout: 10 * time.Second,
		ConverseTimeout:   10 * time.Second,
		SpeakDegrade:      true,
		TranscribeDegrade: true,
		ConverseDegrade:   true,
	}
}

// Orchestrator dispatches capability requests across provider chains.
type Orchestrator struct {
	registry *provider.Registry
	policy   *degrade.Policy
	opts     Options
}

// New constructs an orchestrator over the given registry and degradation policy.
func New(registry *provider.Registry, policy *degrade.Policy, opts Options) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		policy:   policy,
		opts:     opts,
	}
}

// Speak resolves a synthesis request through the speech chain.
func (o *Orchestrator) Speak(ctx context.Context, req models.SpeakRequest) (*models.Speech, error) {
	for _, p := range o.registry.SpeechChain() {
		attemptCtx, cancel := context.WithTimeout(ctx, o.opts.SpeakTimeout)
		speech, err := p.Speak(attemptCtx, req)
		cancel()
		if err != nil {
			logFailure(models.CapabilitySpeak, classify(p.Name(), err))
			continue
		}
		return speech, nil
	}

	if o.opts.SpeakDegrade {
		slog.Info("speech chain exhausted, serving placeholder clip")
		return o.policy.Speak(req), nil
	}
	return nil, ErrAllProvidersExhausted
}

// Transcribe resolves a transcription request through the transcription chain.
func (o *Orchestrator) Transcribe(ctx context.Context, req models.TranscribeRequest) (*models.Transcript, error) {
	for _, p := range o.registry.TranscriptionChain() {
		attemptCtx, cancel := context.WithTimeout(ctx, o.opts.TranscribeTimeout)
		transcript, err := p.Transcribe(attemptCtx, req)
		cancel()
		if err != nil {
			logFailure(models.CapabilityTranscribe, classify(p.Name(), err))
			continue
		}
		return transcript, nil
	}

	if o.opts.TranscribeDegrade {
		slog.Info("transcription chain exhausted, serving placeholder transcript")
		return o.policy.Transcribe(req), nil
	}
	return nil, ErrAllProvidersExhausted
}

// Converse resolves a chat request through the conversation chain.
func (o *Orchestrator) Converse(ctx context.Context, req models.ConverseRequest) (*models.Reply, error) {
	for _, p := range o.registry.ChatChain() {
		attemptCtx, cancel := context.WithTimeout(ctx, o.opts.ConverseTimeout)
		reply, err := p.Converse(attemptCtx, req)
		cancel()
		if err != nil {
			logFailure(models.CapabilityConverse, classify(p.Name(), err))
			continue
		}
		return reply, nil
	}

	if o.opts.ConverseDegrade {
		slog.Info("conversation chain exhausted, serving canned reply")
		return o.policy.Converse(req), nil
	}
	return nil, ErrAllProvidersExhausted
}

// classify folds a provider error into the failure taxonomy. Timeouts and
// transport errors are distinguished so the logs show whether an upstream
// is slow or gone.
func classify(providerName string, err error) models.ProviderFailure {
	var statusErr *provider.StatusError
	switch {
	case errors.As(err, &statusErr):
		return models.ProviderFailure{
			Provider: providerName,
			Kind:     models.FailureBadStatus,
			Status:   statusErr.Code,
			Detail:   statusErr.Body,
		}
	case errors.Is(err, normalize.ErrNoShape):
		return models.ProviderFailure{Provider: providerName, Kind: models.FailureMalformedBody, Detail: err.Error()}
	case errors.Is(err, context.DeadlineExceeded), isTimeout(err):
		return models.ProviderFailure{Provider: providerName, Kind: models.FailureTimeout, Detail: err.Error()}
	default:
		return models.ProviderFailure{Provider: providerName, Kind: models.FailureUnreachable, Detail: err.Error()}
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func logFailure(capability models.Capability, failure models.ProviderFailure) {
	slog.Warn("provider attempt failed",
		"capability", string(capability),
		"provider", failure.Provider,
		"kind", failure.Kind.String(),
		"status", failure.Status,
		"detail", failure.Detail,
	)
}
