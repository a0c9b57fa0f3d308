package app

import (
	"context"
	"log"
	"time"

	"github.com/princekumar9234/DarkBot/internal/auth"
	"github.com/princekumar9234/DarkBot/internal/config"
	"github.com/princekumar9234/DarkBot/internal/core/database"
	"github.com/princekumar9234/DarkBot/internal/core/llm"
	"github.com/princekumar9234/DarkBot/internal/services"
)

type App struct {
	Store  *database.PostgresStore
	Gemini *llm.GeminiProvider
	Server *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	store, err := database.NewPostgresStore(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	gemini, err := llm.NewGemini(appCtx, llm.GeminiConfig{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	openAI := llm.NewOpenAI(llm.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
	})
	registry := llm.NewRegistry(gemini, openAI)

	tokens := auth.NewTokenManager([]byte(cfg.JWTSecret), auth.SessionTTL)
	chatSvc := services.NewChatService(store, registry)
	userSvc := services.NewUserService(store)

	server := NewServer(cfg, tokens, chatSvc, userSvc)

	return &App{Store: store, Gemini: gemini, Server: server}, nil
}

func (a *App) Close() {
	if a.Gemini != nil {
		_ = a.Gemini.Close()
	}
	if a.Store != nil {
		_ = a.Store.Close()
	}
}
