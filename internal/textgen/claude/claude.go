package claude

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/vbonduro/wardrobe/internal/textgen"
)

type ClaudeGenerator struct {
	client *anthropic.Client
	model  string
}

func NewClaudeGenerator(apiKey, model string, opts ...anthropic.ClientOption) *ClaudeGenerator {
	return &ClaudeGenerator{
		client: anthropic.NewClient(apiKey, opts...),
		model:  model,
	}
}

func (g *ClaudeGenerator) Generate(ctx context.Context, prompt string, opts textgen.Options) (string, error) {
	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(g.model),
		MaxTokens: opts.Tokens(),
		Messages:  []anthropic.Message{anthropic.NewUserTextMessage(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}

	text := strings.TrimSpace(resp.GetFirstContentText())
	if text == "" {
		return "", textgen.ErrEmptyResponse
	}
	return text, nil
}
