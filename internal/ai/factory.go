package ai

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"li-responder/internal/ai/anthropic"
	"li-responder/internal/ai/gemini"
	"li-responder/internal/ai/ollama"
)

// New builds the Completer for resolved options. Call Resolve first.
func New(ctx context.Context, opts Options, logger *zap.Logger) (Completer, error) {
	clientLogger := logger.With(
		zap.String("provider", opts.Provider),
		zap.String("model", opts.Model),
	)

	switch opts.Provider {
	case ProviderGemini:
		return gemini.New(ctx, opts.APIKey, opts.Model, opts.Temperature, opts.MaxRetries, clientLogger)
	case ProviderAnthropic:
		return anthropic.New(opts.APIKey, opts.Model, opts.Temperature, opts.MaxRetries, clientLogger)
	case ProviderOllama:
		return ollama.New(opts.BaseURL, opts.Model, opts.Temperature, opts.MaxRetries, clientLogger)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", opts.Provider)
	}
}
