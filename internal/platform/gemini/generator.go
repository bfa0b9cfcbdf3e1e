// Package gemini implements the generation boundary against Google's Gemini
// API, as an alternative to the default Ollama backend.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/converselab/converse-api/internal/config"
	"github.com/converselab/converse-api/internal/generation"
	"google.golang.org/genai"
)

// Generator implements generation.Generator using the Gemini API. Gemini has
// no drop-in equivalent of the Ollama chat message list, so prior turns are
// rendered into a single transcript-style prompt.
type Generator struct {
	logger *slog.Logger
	client *genai.Client
	model  string
}

var (
	_ generation.Generator     = (*Generator)(nil)
	_ generation.HealthChecker = (*Generator)(nil)
)

// NewGenerator creates a Gemini-backed Generator.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With("component", "gemini_generator", "model", cfg.ModelName),
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// GenerateReply implements generation.Generator.
func (g *Generator) GenerateReply(
	ctx context.Context,
	message generation.Message,
	history []generation.Message,
) (string, error) {
	if message.Content == "" {
		return "", generation.ErrEmptyMessage
	}

	prompt := buildPrompt(message, history)

	g.logger.InfoContext(ctx, "calling Gemini API", "turns", len(history)+1)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini API call failed", "error", err)
		return "", fmt.Errorf("%w: %v", generation.ErrModelUnavailable, err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		g.logger.ErrorContext(ctx, "Gemini API returned no content")
		return "", fmt.Errorf("%w: empty response", generation.ErrModelUnavailable)
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			reply.WriteString(part.Text)
		}
	}

	g.logger.InfoContext(ctx, "gemini reply received", "reply_length", reply.Len())
	return reply.String(), nil
}

// Ping implements generation.HealthChecker. The hosted API has no cheap
// liveness endpoint, so a configured client reports healthy.
func (g *Generator) Ping(ctx context.Context) bool {
	return g.client != nil
}

// buildPrompt flattens the history and new message into one transcript,
// oldest turn first, matching the order the chat backends receive.
func buildPrompt(message generation.Message, history []generation.Message) string {
	var b strings.Builder
	for _, turn := range history {
		b.WriteString(turn.Role)
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString(message.Role)
	b.WriteString(": ")
	b.WriteString(message.Content)
	return b.String()
}
