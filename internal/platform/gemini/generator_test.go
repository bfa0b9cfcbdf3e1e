package gemini

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/converselab/converse-api/internal/config"
	"github.com/converselab/converse-api/internal/generation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testGenerator builds a Generator whose client talks to the given server
// instead of the hosted API.
func testGenerator(t *testing.T, serverURL string) *Generator {
	t.Helper()
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  "test-key",
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: serverURL,
		},
	})
	require.NoError(t, err)

	return &Generator{
		logger: testLogger(),
		client: client,
		model:  "gemini-2.0-flash",
	}
}

func TestNewGenerator(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("valid config", func(t *testing.T) {
		g, err := NewGenerator(ctx, config.LLMConfig{
			GeminiAPIKey: "test-key",
			ModelName:    "gemini-2.0-flash",
		}, testLogger())
		require.NoError(t, err)
		assert.NotNil(t, g)
		assert.True(t, g.Ping(ctx))
	})

	t.Run("missing API key", func(t *testing.T) {
		_, err := NewGenerator(ctx, config.LLMConfig{
			ModelName: "gemini-2.0-flash",
		}, testLogger())
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("missing model name", func(t *testing.T) {
		_, err := NewGenerator(ctx, config.LLMConfig{
			GeminiAPIKey: "test-key",
		}, testLogger())
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewGenerator(ctx, config.LLMConfig{
			GeminiAPIKey: "test-key",
			ModelName:    "gemini-2.0-flash",
		}, nil)
		assert.Error(t, err)
	})
}

func TestGeminiGenerateReply(t *testing.T) {
	t.Parallel()

	t.Run("renders the transcript and returns the candidate text", func(t *testing.T) {
		var captured struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Contains(t, r.URL.Path, ":generateContent")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"General Kenobi."}]}}]}`))
		}))
		defer server.Close()

		g := testGenerator(t, server.URL)
		reply, err := g.GenerateReply(
			context.Background(),
			generation.Message{Role: "user", Content: "Hello there"},
			[]generation.Message{
				{Role: "user", Content: "Hello"},
				{Role: "assistant", Content: "Hi"},
			},
		)
		require.NoError(t, err)
		assert.Equal(t, "General Kenobi.", reply)

		require.Len(t, captured.Contents, 1)
		require.Len(t, captured.Contents[0].Parts, 1)
		prompt := captured.Contents[0].Parts[0].Text
		assert.Equal(t, "user: Hello\nassistant: Hi\nuser: Hello there", prompt)
	})

	t.Run("rejects empty message without calling the backend", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request to the backend")
		}))
		defer server.Close()

		g := testGenerator(t, server.URL)
		_, err := g.GenerateReply(context.Background(), generation.Message{Role: "user"}, nil)
		assert.ErrorIs(t, err, generation.ErrEmptyMessage)
	})

	t.Run("error status maps to model unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded"}}`))
		}))
		defer server.Close()

		g := testGenerator(t, server.URL)
		_, err := g.GenerateReply(
			context.Background(),
			generation.Message{Role: "user", Content: "Hello"},
			nil,
		)
		assert.ErrorIs(t, err, generation.ErrModelUnavailable)
	})

	t.Run("response without candidates maps to model unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}))
		defer server.Close()

		g := testGenerator(t, server.URL)
		_, err := g.GenerateReply(
			context.Background(),
			generation.Message{Role: "user", Content: "Hello"},
			nil,
		)
		assert.ErrorIs(t, err, generation.ErrModelUnavailable)
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt := buildPrompt(
		generation.Message{Role: "user", Content: "third"},
		[]generation.Message{
			{Role: "user", Content: "first"},
			{Role: "assistant", Content: "second"},
		},
	)
	lines := strings.Split(prompt, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "user: first", lines[0])
	assert.Equal(t, "assistant: second", lines[1])
	assert.Equal(t, "user: third", lines[2])
}
