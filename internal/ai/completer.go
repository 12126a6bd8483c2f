package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Completer is the single surface every LLM backend implements. The backend
// is chosen once at startup and injected everywhere; nothing downstream knows
// which provider answers.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"

	DefaultTemperature = 0.2
	DefaultMaxRetries  = 3
)

// Environment variables probed when no provider flag is given. Later entries
// win, so a local Ollama endpoint overrides hosted keys.
const (
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOllamaBaseURL   = "OLLAMA_BASE_URL"
)

// Options selects and configures the backend. Flag values take precedence
// over environment probing.
type Options struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxRetries  int
}

// Resolve fills the provider and credential from the environment when flags
// left them empty, and applies defaults. It returns an error when no backend
// can be determined or its credential is missing.
func Resolve(opts Options) (Options, error) {
	opts.Provider = strings.TrimSpace(strings.ToLower(opts.Provider))

	if opts.Provider == "" {
		if os.Getenv(EnvGeminiAPIKey) != "" {
			opts.Provider = ProviderGemini
		}
		if os.Getenv(EnvAnthropicAPIKey) != "" {
			opts.Provider = ProviderAnthropic
		}
		if os.Getenv(EnvOllamaBaseURL) != "" {
			opts.Provider = ProviderOllama
		}
	}

	switch opts.Provider {
	case ProviderGemini:
		if opts.APIKey == "" {
			opts.APIKey = os.Getenv(EnvGeminiAPIKey)
		}
		if opts.APIKey == "" {
			return opts, fmt.Errorf("gemini api key is not configured (set %s or --llm-api-key)", EnvGeminiAPIKey)
		}
	case ProviderAnthropic:
		if opts.APIKey == "" {
			opts.APIKey = os.Getenv(EnvAnthropicAPIKey)
		}
		if opts.APIKey == "" {
			return opts, fmt.Errorf("anthropic api key is not configured (set %s or --llm-api-key)", EnvAnthropicAPIKey)
		}
	case ProviderOllama:
		if opts.BaseURL == "" {
			opts.BaseURL = os.Getenv(EnvOllamaBaseURL)
		}
		if opts.BaseURL == "" {
			return opts, fmt.Errorf("ollama base url is not configured (set %s or --llm-base-url)", EnvOllamaBaseURL)
		}
	case "":
		return opts, fmt.Errorf("no llm backend configured: set --llm-provider or one of %s, %s, %s",
			EnvGeminiAPIKey, EnvAnthropicAPIKey, EnvOllamaBaseURL)
	default:
		return opts, fmt.Errorf("unsupported llm provider: %s", opts.Provider)
	}

	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}

	return opts, nil
}
