package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/princekumar9234/DarkBot/internal/core"
)

// OpenAIConfig is passed explicitly into the constructor; the client never
// reads ambient environment state at request time.
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// OpenAIProvider talks to the OpenAI chat completions API. It takes a flat
// chronological message list with the system prompt prepended as the leading
// entry. Images are not forwarded.
type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *openai.Client
}

func NewOpenAI(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}
	return &OpenAIProvider{cfg: cfg, client: openai.NewClient(cfg.APIKey)}
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

func (p *OpenAIProvider) Generate(ctx context.Context, req *Request) (string, error) {
	if p.cfg.APIKey == "" || p.cfg.APIKey == "your_openai_api_key_here" {
		return "", core.ProviderUnavailable(ProviderOpenAI, "OpenAI API key is not configured. Please add your API key in settings.")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemPrompt,
	})
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    translateRole(openAIRoles, m.Role),
			Content: m.Content,
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.cfg.Model,
		Messages:    messages,
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", core.ErrProviderTimeout
		}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", core.NewProviderError(ProviderOpenAI, errors.New(apiErr.Message))
		}
		return "", core.NewProviderError(ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return "", core.NewProviderError(ProviderOpenAI, errors.New("empty completion"))
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

var _ Provider = (*OpenAIProvider)(nil)
