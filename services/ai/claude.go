package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeAdapter talks to the Anthropic messages API
type ClaudeAdapter struct {
	name   string
	models []string
	client anthropic.Client
}

// NewClaudeAdapter creates an adapter for a messages style provider
func NewClaudeAdapter(spec ProviderSpec, apiKey string) *ClaudeAdapter {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(newHTTPClient()),
		option.WithMaxRetries(0),
	}
	if spec.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(spec.BaseURL))
	}
	return &ClaudeAdapter{
		name:   spec.Name,
		models: spec.Models,
		client: anthropic.NewClient(opts...),
	}
}

func (a *ClaudeAdapter) Name() string     { return a.name }
func (a *ClaudeAdapter) Models() []string { return a.models }

// Generate sends the prompt and concatenates the text blocks of the reply
func (a *ClaudeAdapter) Generate(ctx context.Context, prompt Prompt, model string) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   defaultMaxTokens,
		Temperature: anthropic.Float(defaultTemperature),
		System:      []anthropic.TextBlockParam{{Text: prompt.System}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", a.name, model, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
