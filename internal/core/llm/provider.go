// Package llm normalizes the two supported AI backends behind one
// request/response contract. Role labels are translated to each backend's own
// vocabulary at this boundary, and failures come back as typed errors the
// orchestrator can surface inline instead of aborting a conversation.
package llm

import (
	"context"

	"github.com/princekumar9234/DarkBot/internal/models"
)

// Supported provider identifiers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	// DefaultProvider is used when neither the request nor the user
	// preferences name one.
	DefaultProvider = ProviderGemini
)

// Message is one turn of the bounded context window sent to a backend.
type Message struct {
	Role    string
	Content string
}

// Image is an inline multimodal payload. Only the Gemini backend consumes
// images; OpenAI requests ignore them.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request is the normalized generation request shared by both backends.
type Request struct {
	SystemPrompt string
	// Messages is the chronological context window; the last entry is the
	// user turn being answered.
	Messages []Message
	Images   []Image
}

// Provider generates a reply for a normalized request. Implementations do not
// retry: a failure is returned to the caller, which records it as the
// assistant's reply.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req *Request) (string, error)
}

// Role translation tables, one per backend. The generic assistant role maps
// to each backend's own label for model-authored turns; Gemini has no system
// role in chat history, so system turns travel as user turns there.
var (
	openAIRoles = map[string]string{
		models.RoleUser:      "user",
		models.RoleAssistant: "assistant",
		models.RoleSystem:    "system",
	}
	geminiRoles = map[string]string{
		models.RoleUser:      "user",
		models.RoleAssistant: "model",
		models.RoleSystem:    "user",
	}
)

func translateRole(table map[string]string, role string) string {
	if mapped, ok := table[role]; ok {
		return mapped
	}
	return "user"
}

// Registry resolves a provider identifier to a configured backend.
type Registry struct {
	providers map[string]Provider
	def       Provider
}

// NewRegistry wires the configured backends. The default provider answers
// any identifier that is not explicitly registered.
func NewRegistry(def Provider, others ...Provider) *Registry {
	r := &Registry{providers: map[string]Provider{def.Name(): def}, def: def}
	for _, p := range others {
		r.providers[p.Name()] = p
	}
	return r
}

// Resolve returns the backend for the given identifier, falling back to the
// default for unknown or empty names.
func (r *Registry) Resolve(name string) Provider {
	if p, ok := r.providers[name]; ok {
		return p
	}
	return r.def
}
