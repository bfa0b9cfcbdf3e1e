// Package ollama implements the generation boundary against a local or
// remote Ollama server.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/converselab/converse-api/internal/config"
	"github.com/converselab/converse-api/internal/generation"
	"github.com/ollama/ollama/api"
)

// pingTimeout bounds the liveness probe; the probe endpoint is cheap and a
// slow answer is as good as no answer for health reporting.
const pingTimeout = 5 * time.Second

// Client implements generation.Generator and generation.HealthChecker using
// the Ollama chat API. Each generation is one non-streaming request with a
// long timeout; generation latency is unbounded and the call runs off the
// request path.
type Client struct {
	api    *api.Client
	model  string
	logger *slog.Logger
}

// Interface checks
var (
	_ generation.Generator     = (*Client)(nil)
	_ generation.HealthChecker = (*Client)(nil)
)

// NewClient creates a Client for the configured Ollama server.
func NewClient(cfg config.LLMConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.OllamaURL == "" {
		return nil, fmt.Errorf("%w: ollama URL cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	base, err := url.Parse(cfg.OllamaURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama URL %q: %v",
			generation.ErrInvalidConfig, cfg.OllamaURL, err)
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	httpClient := &http.Client{Timeout: timeout}

	return &Client{
		api:    api.NewClient(base, httpClient),
		model:  cfg.ModelName,
		logger: logger.With("component", "ollama_client", "model", cfg.ModelName),
	}, nil
}

// GenerateReply implements generation.Generator. The outbound message list is
// the history (oldest first) followed by the new message.
func (c *Client) GenerateReply(
	ctx context.Context,
	message generation.Message,
	history []generation.Message,
) (string, error) {
	if message.Content == "" {
		return "", generation.ErrEmptyMessage
	}

	messages := make([]api.Message, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, api.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, api.Message{Role: message.Role, Content: message.Content})

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   &stream,
	}

	c.logger.InfoContext(ctx, "calling ollama chat API", "turns", len(messages))

	var reply string
	err := c.api.Chat(ctx, req, func(resp api.ChatResponse) error {
		// Stream is disabled, so this fires once with the complete response.
		reply = resp.Message.Content
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			c.logger.ErrorContext(ctx, "ollama chat API returned error status",
				"status_code", statusErr.StatusCode,
				"error", statusErr.ErrorMessage)
			return "", fmt.Errorf("%w: status %d", generation.ErrModelUnavailable, statusErr.StatusCode)
		}

		c.logger.ErrorContext(ctx, "ollama chat API call failed", "error", err)
		return "", fmt.Errorf("%w: %v", generation.ErrModelUnavailable, err)
	}

	c.logger.InfoContext(ctx, "ollama reply received", "reply_length", len(reply))
	return reply, nil
}

// Ping implements generation.HealthChecker with a best-effort probe of the
// model listing endpoint.
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.api.List(ctx); err != nil {
		c.logger.WarnContext(ctx, "ollama liveness probe failed", "error", err)
		return false
	}

	return true
}
