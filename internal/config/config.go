package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	providerKindOdia   = "odia"
	providerKindOpenAI = "openai"
	providerKindBrain  = "brain"
)

// Config represents the application configuration parsed from YAML.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	CORS       CORSConfig      `yaml:"cors"`
	RateLimit  RateLimitConfig `yaml:"rate_limit"`
	Speak      ChainConfig     `yaml:"speak"`
	Transcribe ChainConfig     `yaml:"transcribe"`
	Converse   ChainConfig     `yaml:"converse"`
	Webhook    WebhookConfig   `yaml:"webhook"`
	Brain      BrainConfig     `yaml:"brain"`
}

// ServerConfig defines listener configuration.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// CORSConfig lists origins allowed to call the widget endpoints. Entries are
// exact origins or wildcard patterns such as "https://*.odia.dev".
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// RateLimitConfig tunes the fixed-window limiter applied to AI endpoints.
type RateLimitConfig struct {
	WindowMs     int `yaml:"window_ms"`
	MaxPerWindow int `yaml:"max_per_window"`
}

// ChainConfig is the ordered provider chain for one capability. List position
// is priority: the first entry is tried first.
type ChainConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
	Degrade   *bool            `yaml:"degrade"`
	TimeoutMs int              `yaml:"timeout_ms"`
}

// ProviderConfig captures authentication and routing info for one upstream.
type ProviderConfig struct {
	Name    string            `yaml:"name"`
	Kind    string            `yaml:"kind"`
	BaseURL string            `yaml:"base_url"`
	Path    string            `yaml:"path"`
	APIKey  string            `yaml:"api_key"`
	Model   string            `yaml:"model"`
	Headers map[string]string `yaml:"headers"`
}

// WebhookConfig configures the signed event relay. An empty URL disables
// forwarding; relayed events then succeed as no-ops.
type WebhookConfig struct {
	URL              string `yaml:"url"`
	SigningSecret    string `yaml:"signing_secret"`
	ToleranceSeconds int    `yaml:"tolerance_seconds"`
}

// BrainConfig points at the lead-qualification service. Optional; the
// qualify and summarize endpoints fall back to local heuristics without it.
type BrainConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// DegradeEnabled reports whether local degradation applies to the chain.
// Unset means enabled, matching the widget's availability-over-correctness bias.
func (c ChainConfig) DegradeEnabled() bool {
	return c.Degrade == nil || *c.Degrade
}

// Timeout returns the per-attempt provider timeout for the chain.
func (c ChainConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Window returns the rate limit window duration.
func (c RateLimitConfig) Window() time.Duration {
	if c.WindowMs <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowMs) * time.Millisecond
}

// Limit returns the maximum number of requests per window.
func (c RateLimitConfig) Limit() int {
	if c.MaxPerWindow <= 0 {
		return 3
	}
	return c.MaxPerWindow
}

// Tolerance returns the replay window accepted by signature verification.
func (c WebhookConfig) Tolerance() time.Duration {
	if c.ToleranceSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.ToleranceSeconds) * time.Second
}

// Load reads YAML configuration from disk, expands ${ENV} references and
// validates the result.
func Load(path string) (Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, fmt.Errorf("resolve config path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate performs strict sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}

	for _, origin := range c.CORS.AllowedOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("cors.allowed_origins must not contain empty entries")
		}
	}

	chains := map[string]ChainConfig{
		"speak":      c.Speak,
		"transcribe": c.Transcribe,
		"converse":   c.Converse,
	}
	for name, chain := range chains {
		for i, provider := range chain.Providers {
			if err := validateProvider(name, i, provider); err != nil {
				return err
			}
		}
	}

	if c.Webhook.URL != "" {
		if err := validateURL("webhook.url", c.Webhook.URL); err != nil {
			return err
		}
	}
	if c.Brain.BaseURL != "" {
		if err := validateURL("brain.base_url", c.Brain.BaseURL); err != nil {
			return err
		}
	}

	return nil
}

func validateProvider(chain string, index int, provider ProviderConfig) error {
	if strings.TrimSpace(provider.Name) == "" {
		return fmt.Errorf("%s provider %d: name must be provided", chain, index)
	}
	switch provider.Kind {
	case providerKindOdia, providerKindOpenAI, providerKindBrain:
	default:
		return fmt.Errorf("%s provider %q: kind %q must be one of %q, %q or %q",
			chain, provider.Name, provider.Kind, providerKindOdia, providerKindOpenAI, providerKindBrain)
	}
	if err := validateURL(fmt.Sprintf("%s provider %q base_url", chain, provider.Name), provider.BaseURL); err != nil {
		return err
	}
	for headerKey := range provider.Headers {
		if !isCanonicalHTTPHeader(headerKey) {
			return fmt.Errorf("%s provider %q: header %q is not a valid canonical HTTP header", chain, provider.Name, headerKey)
		}
	}
	return nil
}

func validateURL(field, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}

func isCanonicalHTTPHeader(header string) bool {
	if header == "" {
		return false
	}

	for _, r := range header {
		if !(r == '-' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return true
}
