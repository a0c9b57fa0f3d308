package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/princekumar9234/DarkBot/internal/core"
)

// GeminiConfig is passed explicitly into the constructor.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// GeminiProvider talks to the Google Gemini API. History (all turns except
// the last) is supplied up front, the final turn goes through a separate send
// call, and the system prompt rides the dedicated instruction channel. This
// is the multimodal backend: images are attached inline to the final turn.
type GeminiProvider struct {
	cfg    GeminiConfig
	client *genai.Client
}

func NewGemini(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{cfg: cfg, client: cl}, nil
}

func (p *GeminiProvider) Name() string { return ProviderGemini }

func (p *GeminiProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req *Request) (string, error) {
	if p.cfg.APIKey == "" || p.cfg.APIKey == "your_gemini_api_key_here" {
		return "", core.ProviderUnavailable(ProviderGemini, "Gemini API key is not configured.")
	}
	if len(req.Messages) == 0 {
		return "", core.NewProviderError(ProviderGemini, errors.New("empty context window"))
	}

	m := p.client.GenerativeModel(p.cfg.Model)
	m.SetMaxOutputTokens(2048)
	m.SetTemperature(0.7)
	if req.SystemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}

	cs := m.StartChat()
	history := req.Messages[:len(req.Messages)-1]
	cs.History = make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		cs.History = append(cs.History, &genai.Content{
			Role:  translateRole(geminiRoles, msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	last := req.Messages[len(req.Messages)-1]
	parts := []genai.Part{genai.Text(last.Content)}
	for _, img := range req.Images {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	resp, err := cs.SendMessage(ctx, parts...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", core.ErrProviderTimeout
		}
		return "", core.NewProviderError(ProviderGemini, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", core.NewProviderError(ProviderGemini, errors.New("empty candidate"))
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

var _ Provider = (*GeminiProvider)(nil)
