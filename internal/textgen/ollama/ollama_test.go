package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/wardrobe/internal/textgen"
)

func TestOllamaGenerate(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":    got.Model,
			"response": "  A light linen shirt with chinos.\n",
		})
	}))
	defer server.Close()

	gen := NewOllamaGenerator(server.URL+"/", "qwen2.5:0.5b")
	text, err := gen.Generate(context.Background(), "Recommend an outfit", textgen.Options{MaxTokens: 150})

	require.NoError(t, err)
	assert.Equal(t, "A light linen shirt with chinos.", text)
	assert.Equal(t, "qwen2.5:0.5b", got.Model)
	assert.Equal(t, "Recommend an outfit", got.Prompt)
	assert.False(t, got.Stream)
	assert.Equal(t, 150, got.Options.NumPredict)
}

func TestOllamaGenerateDefaultTokens(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "ok"})
	}))
	defer server.Close()

	_, err := NewOllamaGenerator(server.URL, "m").Generate(context.Background(), "p", textgen.Options{})
	require.NoError(t, err)
	assert.Equal(t, textgen.DefaultMaxTokens, got.Options.NumPredict)
}

func TestOllamaGenerateEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "   "})
	}))
	defer server.Close()

	_, err := NewOllamaGenerator(server.URL, "m").Generate(context.Background(), "p", textgen.Options{})
	assert.ErrorIs(t, err, textgen.ErrEmptyResponse)
}

func TestOllamaGenerateStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewOllamaGenerator(server.URL, "m").Generate(context.Background(), "p", textgen.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllamaGenerateNetworkError(t *testing.T) {
	_, err := NewOllamaGenerator("http://localhost:99999", "m").Generate(context.Background(), "p", textgen.Options{})
	assert.Error(t, err)
}
