package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/wardrobe/internal/textgen"
)

func TestClaudeGenerate(t *testing.T) {
	var got struct {
		Model     string `json:"model"`
		MaxTokens int    `json:"max_tokens"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       got.Model,
			"stop_reason": "end_turn",
			"content": []map[string]any{
				{"type": "text", "text": "Rain jacket over a knit sweater, waterproof boots."},
			},
			"usage": map[string]any{"input_tokens": 12, "output_tokens": 14},
		})
	}))
	defer server.Close()

	gen := NewClaudeGenerator("sk-test", "claude-3-5-haiku-latest", anthropic.WithBaseURL(server.URL))
	text, err := gen.Generate(context.Background(), "Recommend an outfit for rainy weather", textgen.Options{MaxTokens: 150})

	require.NoError(t, err)
	assert.Equal(t, "Rain jacket over a knit sweater, waterproof boots.", text)
	assert.Equal(t, "claude-3-5-haiku-latest", got.Model)
	assert.Equal(t, 150, got.MaxTokens)
}

func TestClaudeGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "rate_limit_error", "message": "rate limited"},
		})
	}))
	defer server.Close()

	gen := NewClaudeGenerator("sk-test", "m", anthropic.WithBaseURL(server.URL))
	_, err := gen.Generate(context.Background(), "p", textgen.Options{})
	assert.Error(t, err)
}
