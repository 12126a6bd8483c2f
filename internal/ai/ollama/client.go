package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"li-responder/internal/utils"
)

const defaultModel = "llama3.1"

// Client talks to a local Ollama endpoint via its /api/generate API.
type Client struct {
	baseURL     string
	modelName   string
	temperature float64
	maxRetries  int
	httpClient  *http.Client
	logger      *zap.Logger
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// New creates a Client for a local Ollama endpoint.
func New(baseURL, model string, temperature float64, maxRetries int, logger *zap.Logger) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("ollama base url is required")
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &Client{
		baseURL:     baseURL,
		modelName:   model,
		temperature: temperature,
		maxRetries:  maxRetries,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		logger:      logger,
	}, nil
}

// Complete sends the prompt to the local model and returns the full response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	payload, err := json.Marshal(generateRequest{
		Model:   c.modelName,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"temperature": c.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	var lastErr error
	backoff := 2 * time.Second
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		output, err := c.generate(ctx, payload)
		if err == nil {
			return output, nil
		}

		lastErr = err
		c.logger.Warn("ollama generate failed",
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

	return "", fmt.Errorf("ollama generate: %w", lastErr)
}

func (c *Client) Model() string { return c.modelName }

func (c *Client) generate(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("ollama error: %s", parsed.Error)
	}

	output := strings.TrimSpace(parsed.Response)
	if output == "" {
		return "", errors.New("ollama returned empty response")
	}

	return output, nil
}
