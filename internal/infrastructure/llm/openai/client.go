package openai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/avoronov/risk-intel/internal/core/domain"
)

// Generator produces analyst summaries through the OpenAI chat completions
// API. It is selected over the Ollama generator when LLM_PROVIDER=openai.
type Generator struct {
	client openai.Client
	model  string
}

func NewGenerator(apiKey, baseURL, model string) *Generator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Generator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (g *Generator) GenerateFromPrompt(ctx context.Context, prompt string) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrModelUnavailable, "openai.generate", err)
	}
	if len(completion.Choices) == 0 {
		return "", domain.WrapError(domain.ErrModelUnavailable, "openai.generate", fmt.Errorf("no choices in completion"))
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}
