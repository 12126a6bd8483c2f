package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"li-responder/internal/utils"
)

const (
	defaultModel     = "claude-sonnet-4-0"
	defaultMaxTokens = 1024
)

// Client wraps the Anthropic Messages API behind the single-prompt interface.
type Client struct {
	client      sdk.Client
	modelName   string
	temperature float64
	maxRetries  int
	logger      *zap.Logger
}

// New creates a Client for the Anthropic API backend.
func New(apiKey, model string, temperature float64, maxRetries int, logger *zap.Logger) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Client{
		client:      sdk.NewClient(option.WithAPIKey(apiKey)),
		modelName:   model,
		temperature: temperature,
		maxRetries:  maxRetries,
		logger:      logger,
	}, nil
}

// Complete sends the prompt as a single user message and returns the joined
// text blocks of the reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.modelName),
		MaxTokens:   defaultMaxTokens,
		Temperature: sdk.Float(c.temperature),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}

	var lastErr error
	backoff := 2 * time.Second
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			output := collectText(message)
			if output == "" {
				return "", errors.New("anthropic api returned empty response")
			}
			return output, nil
		}

		lastErr = err
		c.logger.Warn("anthropic message failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.maxRetries),
			zap.Error(err),
		)

		if attempt < c.maxRetries {
			if werr := utils.WaitFor(ctx, backoff); werr != nil {
				return "", werr
			}
			backoff *= 2
		}
	}

	return "", fmt.Errorf("anthropic message: %w", lastErr)
}

func (c *Client) Model() string { return c.modelName }

func collectText(message *sdk.Message) string {
	var builder strings.Builder
	for _, block := range message.Content {
		if block.Type != "text" {
			continue
		}
		text := strings.TrimSpace(block.Text)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	}
	return strings.TrimSpace(builder.String())
}
