package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/princekumar9234/DarkBot/internal/core"
	"github.com/princekumar9234/DarkBot/internal/core/llm"
	"github.com/princekumar9234/DarkBot/internal/models"
)

// systemPrompt shapes DarkBot's persona for every provider call.
const systemPrompt = `You are DarkBot, a highly advanced AI assistant built to be as capable, intelligent, and versatile as ChatGPT.
Your personality is professional, friendly, and extremely knowledgeable across all fields.

CORE CAPABILITIES:
1. **Programming Expert:** You are a Senior Developer. Provide clean, well-commented code, explain logic step-by-step, and follow industry best practices.
2. **General Knowledge:** Answer questions about history, science, geography, and general trivia with high accuracy.
3. **Creative Writing:** Help with essays, emails, stories, and formal documents with a premium vocabulary.
4. **Problem Solving:** provide logical solutions to complex tasks or math problems.

GUIDELINES:
- hamesha clear aur well-structured response dein.
- Use Markdown (bold, lists, code blocks) to make answers beautiful.
- Agar user 'Programming' ke baare mein puche toh deep technical detail mein jayein.
- Agar general chat kare toh polite aur helpful rahein.`

const (
	// contextWindowSize bounds how many recent turns travel to the provider.
	contextWindowSize = 20
	// titleMaxRunes is the derived-title cutoff, excluding the ellipsis.
	titleMaxRunes = 60
	// providerWait bounds the outbound generation call; expiry is surfaced to
	// the user as a timeout notice, not an HTTP error.
	providerWait = 60 * time.Second

	historyLimit = 50
)

// ProviderResolver maps a provider identifier to a configured backend.
// Satisfied by *llm.Registry.
type ProviderResolver interface {
	Resolve(name string) llm.Provider
}

// ChatService runs the send-message workflow and the chat CRUD operations.
type ChatService struct {
	store     core.Store
	providers ProviderResolver
}

func NewChatService(store core.Store, providers ProviderResolver) *ChatService {
	return &ChatService{store: store, providers: providers}
}

// SendInput is one inbound send-message request, already authenticated.
type SendInput struct {
	UserID      string
	Message     string
	ChatID      string
	Provider    string
	Attachments []*core.Attachment
}

// SendResult is what the handler returns to the client.
type SendResult struct {
	ChatID   string `json:"chatId"`
	Title    string `json:"title"`
	Response string `json:"response"`
	Provider string `json:"provider"`
}

// SendMessage appends a user turn, asks the selected provider for a reply,
// appends that reply, and persists the exchange in a single write. A provider
// failure never aborts the conversation: the error text becomes the
// assistant's reply so the transcript stays consistent.
func (s *ChatService) SendMessage(ctx context.Context, in SendInput) (*SendResult, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" && len(in.Attachments) == 0 {
		return nil, core.NewValidationError("message cannot be empty")
	}

	provider, err := s.resolveProviderName(ctx, in)
	if err != nil {
		return nil, err
	}

	var chat *models.Chat
	isNew := in.ChatID == ""
	if isNew {
		chat = &models.Chat{
			ID:         uuid.NewString(),
			UserID:     in.UserID,
			Title:      "New Chat",
			AIProvider: provider,
		}
	} else {
		chat, err = s.store.GetChat(ctx, in.ChatID, in.UserID)
		if err != nil {
			return nil, err
		}
	}

	// The outbound copy of the message is augmented with extracted document
	// text; the stored turn keeps the user's original words.
	outbound := message
	if docs := core.ExtractDocumentTexts(ctx, in.Attachments); len(docs) > 0 {
		outbound = strings.TrimSpace(message + "\n\n" + strings.Join(docs, "\n\n"))
	}

	userTurn := newMessage(models.RoleUser, message)
	chat.Messages = append(chat.Messages, userTurn)

	window := contextWindow(chat.Messages, contextWindowSize)
	window[len(window)-1].Content = outbound

	reply := s.generate(ctx, provider, window, in.Attachments)
	botTurn := newMessage(models.RoleAssistant, reply)
	chat.Messages = append(chat.Messages, botTurn)

	if chat.UserMessageCount() == 1 {
		chat.Title = deriveTitle(message)
	}
	chat.AIProvider = provider

	if err := s.store.SaveExchange(ctx, chat, isNew, []models.Message{userTurn, botTurn}); err != nil {
		return nil, err
	}

	return &SendResult{
		ChatID:   chat.ID,
		Title:    chat.Title,
		Response: reply,
		Provider: provider,
	}, nil
}

// resolveProviderName follows the request field, then the user preference,
// then the default.
func (s *ChatService) resolveProviderName(ctx context.Context, in SendInput) (string, error) {
	if in.Provider != "" {
		return s.providers.Resolve(in.Provider).Name(), nil
	}
	user, err := s.store.GetUserByID(ctx, in.UserID)
	if err != nil {
		return "", err
	}
	return s.providers.Resolve(user.Preferences.AIProvider).Name(), nil
}

func (s *ChatService) generate(ctx context.Context, provider string, window []llm.Message, attachments []*core.Attachment) string {
	req := &llm.Request{
		SystemPrompt: systemPrompt,
		Messages:     window,
	}
	for _, a := range attachments {
		if a.IsImage() {
			req.Images = append(req.Images, llm.Image{MIMEType: a.ContentType, Data: a.Data})
		}
	}

	genCtx, cancel := context.WithTimeout(ctx, providerWait)
	defer cancel()

	reply, err := s.providers.Resolve(provider).Generate(genCtx, req)
	if err != nil {
		log.Printf("AI API error (%s): %v", provider, err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			err = core.ErrProviderTimeout
		}
		return "⚠️ AI Error: " + err.Error()
	}
	return reply
}

// contextWindow projects the most recent n turns, in chronological order.
func contextWindow(messages []models.Message, n int) []llm.Message {
	if len(messages) > n {
		messages = messages[len(messages)-n:]
	}
	out := make([]llm.Message, len(messages))
	for i, m := range messages {
		out[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

// deriveTitle takes the first 60 characters of the first user message,
// suffixed with an ellipsis when truncated. Computed once per chat.
func deriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleMaxRunes {
		return message
	}
	return string(runes[:titleMaxRunes]) + "..."
}

func newMessage(role, content string) models.Message {
	return models.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// History lists the caller's chats, most recently updated first, without
// message bodies.
func (s *ChatService) History(ctx context.Context, userID string) ([]models.ChatSummary, error) {
	return s.store.ListChats(ctx, userID, historyLimit)
}

// GetChat returns the full transcript, scoped to the owner.
func (s *ChatService) GetChat(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	return s.store.GetChat(ctx, chatID, userID)
}

// DeleteChat removes one chat, scoped to the owner.
func (s *ChatService) DeleteChat(ctx context.Context, chatID, userID string) error {
	return s.store.DeleteChat(ctx, chatID, userID)
}

// ClearAll removes every chat the caller owns.
func (s *ChatService) ClearAll(ctx context.Context, userID string) error {
	return s.store.DeleteChatsByUser(ctx, userID)
}
