package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicegate/internal/config"
)

func chainProvider(name, kind string) config.ProviderConfig {
	return config.ProviderConfig{
		Name:    name,
		Kind:    kind,
		BaseURL: "https://example.com",
		APIKey:  "key",
	}
}

func TestBuildRegistryWiresChains(t *testing.T) {
	cfg := config.Config{
		Server: config.ServerConfig{Port: 8090},
		Speak: config.ChainConfig{Providers: []config.ProviderConfig{
			chainProvider("odia-v1", "odia"),
			chainProvider("openai-tts", "openai"),
		}},
		Transcribe: config.ChainConfig{Providers: []config.ProviderConfig{
			chainProvider("whisper", "openai"),
		}},
		Converse: config.ChainConfig{Providers: []config.ProviderConfig{
			chainProvider("brain", "brain"),
			chainProvider("openai-chat", "openai"),
		}},
	}

	registry, err := BuildRegistry(cfg)
	require.NoError(t, err)

	speech := registry.SpeechChain()
	require.Len(t, speech, 2)
	assert.Equal(t, "odia-v1", speech[0].Name())
	assert.Equal(t, "openai-tts", speech[1].Name())

	require.Len(t, registry.TranscriptionChain(), 1)

	chat := registry.ChatChain()
	require.Len(t, chat, 2)
	assert.Equal(t, "brain", chat[0].Name())
}

func TestBuildRegistryRejectsMismatchedKind(t *testing.T) {
	cfg := config.Config{
		Server: config.ServerConfig{Port: 8090},
		Speak: config.ChainConfig{Providers: []config.ProviderConfig{
			chainProvider("brain", "brain"),
		}},
	}

	_, err := BuildRegistry(cfg)
	assert.Error(t, err)
}

func TestBuildRegistryRejectsDuplicateNames(t *testing.T) {
	cfg := config.Config{
		Server: config.ServerConfig{Port: 8090},
		Converse: config.ChainConfig{Providers: []config.ProviderConfig{
			chainProvider("same", "brain"),
			chainProvider("same", "openai"),
		}},
	}

	_, err := BuildRegistry(cfg)
	assert.Error(t, err)
}

func TestBuildRegistryEmptyConfigYieldsEmptyChains(t *testing.T) {
	registry, err := BuildRegistry(config.Config{Server: config.ServerConfig{Port: 8090}})
	require.NoError(t, err)
	assert.Empty(t, registry.SpeechChain())
	assert.Empty(t, registry.TranscriptionChain())
	assert.Empty(t, registry.ChatChain())
}
