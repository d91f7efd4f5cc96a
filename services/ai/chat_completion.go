package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// ChatCompletionAdapter talks to any provider exposing the chat-completions API
// (OpenAI, Groq, Mistral), selected by base URL
type ChatCompletionAdapter struct {
	name   string
	models []string
	client openai.Client
}

// NewChatCompletionAdapter creates an adapter for a chat-completion style provider
func NewChatCompletionAdapter(spec ProviderSpec, apiKey string) *ChatCompletionAdapter {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(newHTTPClient()),
		option.WithMaxRetries(0),
	}
	if spec.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(spec.BaseURL))
	}
	return &ChatCompletionAdapter{
		name:   spec.Name,
		models: spec.Models,
		client: openai.NewClient(opts...),
	}
}

func (a *ChatCompletionAdapter) Name() string     { return a.name }
func (a *ChatCompletionAdapter) Models() []string { return a.models }

// Generate sends the system and user prompts and returns the first choice
func (a *ChatCompletionAdapter) Generate(ctx context.Context, prompt Prompt, model string) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
		Temperature: openai.Float(defaultTemperature),
		MaxTokens:   openai.Int(defaultMaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", a.name, model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(a.name + " " + model + ": response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
