package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicegate/internal/models"
)

type stubChat struct{ name string }

func (s stubChat) Name() string { return s.name }

func (s stubChat) Converse(ctx context.Context, req models.ConverseRequest) (*models.Reply, error) {
	return &models.Reply{}, nil
}

func TestRegistryPreservesOrder(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterChat(stubChat{name: "primary"}))
	require.NoError(t, registry.RegisterChat(stubChat{name: "fallback"}))

	chain := registry.ChatChain()
	require.Len(t, chain, 2)
	assert.Equal(t, "primary", chain[0].Name())
	assert.Equal(t, "fallback", chain[1].Name())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterChat(stubChat{name: "primary"}))

	err := registry.RegisterChat(stubChat{name: "primary"})
	assert.ErrorIs(t, err, ErrDuplicateProvider)
}

func TestRegistryRejectsNil(t *testing.T) {
	registry := NewRegistry()
	assert.Error(t, registry.RegisterChat(nil))
	assert.Error(t, registry.RegisterSpeech(nil))
	assert.Error(t, registry.RegisterTranscription(nil))
}

func TestChainCopiesAreIndependent(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterChat(stubChat{name: "primary"}))

	chain := registry.ChatChain()
	chain[0] = stubChat{name: "mutated"}

	assert.Equal(t, "primary", registry.ChatChain()[0].Name())
}
