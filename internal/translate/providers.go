package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

var errEmptyReply = errors.New("empty response")

// DefaultModel is the model used when Options.Model is empty.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-5-mini"
	case ProviderAnthropic:
		return string(anthropic.ModelClaudeHaiku4_5)
	default:
		return "gemini-2.5-flash"
	}
}

// OpenAI Chat Completions
type openAICompleter struct {
	client openai.Client
	model  string
}

func (c *openAICompleter) complete(ctx context.Context, prompt string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", errEmptyReply
	}
	return completion.Choices[0].Message.Content, nil
}

// Anthropic Messages; text blocks are concatenated
type anthropicCompleter struct {
	client anthropic.Client
	model  anthropic.Model
}

func (c *anthropicCompleter) complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 8192,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}
	if message == nil {
		return "", errEmptyReply
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}

// Gemini GenerateContent; the first candidate with text wins
type geminiCompleter struct {
	client *genai.Client
	model  string
}

func (c *geminiCompleter) complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{genai.NewPartFromText(prompt)}, genai.RoleUser),
	}
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", err
	}
	if result == nil {
		return "", errEmptyReply
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return "", nil
}

func newCompleter(ctx context.Context, provider Provider, apiKey, model string) (completer, error) {
	switch provider {
	case ProviderOpenAI:
		return &openAICompleter{
			client: openai.NewClient(openaioption.WithAPIKey(apiKey)),
			model:  model,
		}, nil
	case ProviderAnthropic:
		return &anthropicCompleter{
			client: anthropic.NewClient(anthropicoption.WithAPIKey(apiKey)),
			model:  anthropic.Model(model),
		}, nil
	case ProviderGemini:
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return &geminiCompleter{client: client, model: model}, nil
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}
