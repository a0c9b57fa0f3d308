package app

import (
	"context"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/princekumar9234/DarkBot/internal/api/handlers"
	appMiddleware "github.com/princekumar9234/DarkBot/internal/api/middlewares"
	"github.com/princekumar9234/DarkBot/internal/auth"
	"github.com/princekumar9234/DarkBot/internal/config"
	"github.com/princekumar9234/DarkBot/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewRouter builds and wires all routes. Split from NewServer so tests can
// drive the full stack through httptest.
func NewRouter(cfg *config.Config, tokens *auth.TokenManager, chatSvc *services.ChatService, userSvc *services.UserService) *chi.Mux {
	authHandler := handlers.NewAuthHandler(userSvc, tokens, cfg.Production())
	chatHandler := handlers.NewChatHandler(chatSvc)
	userHandler := handlers.NewUserHandler(userSvc)
	gate := appMiddleware.NewGate(tokens)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	// Must outlast the bounded provider wait inside the send workflow.
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Pages. The chat and settings pages are gated with the soft-redirect
	// policy; the landing page only attaches identity when present.
	page := func(name string) http.HandlerFunc {
		file := filepath.Join(cfg.WebDir, name)
		return func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, file)
		}
	}
	r.With(gate.LoadUser).Get("/", page("index.html"))
	r.With(gate.RedirectIfAuth).Get("/login", page("login.html"))
	r.With(gate.RedirectIfAuth).Get("/signup", page("signup.html"))
	r.With(gate.RequirePage).Get("/chat", page("chat.html"))
	r.With(gate.RequirePage).Get("/settings", page("settings.html"))
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.WebDir))))

	r.Route("/auth", func(api chi.Router) {
		api.Use(httprate.LimitByIP(20, time.Minute))
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)
		api.Post("/logout", authHandler.Logout)
	})

	r.Route("/chat", func(api chi.Router) {
		api.Use(gate.RequireAuth)
		api.With(httprate.LimitByIP(30, time.Minute)).Post("/send", chatHandler.Send)
		api.Get("/history", chatHandler.History)
		api.Delete("/clear/all", chatHandler.ClearAll)
		api.Get("/{chatID}", chatHandler.GetChat)
		api.Delete("/{chatID}", chatHandler.DeleteChat)
	})

	r.Route("/user", func(api chi.Router) {
		api.Use(gate.RequireAuth)
		api.Get("/profile", userHandler.GetProfile)
		api.Put("/profile", userHandler.UpdateProfile)
		api.Put("/password", userHandler.ChangePassword)
		api.Put("/preferences", userHandler.UpdatePreferences)
		api.Delete("/account", userHandler.DeleteAccount)
	})

	return r
}

// NewServer wraps the router in an http.Server.
func NewServer(cfg *config.Config, tokens *auth.TokenManager, chatSvc *services.ChatService, userSvc *services.UserService) *Server {
	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: NewRouter(cfg, tokens, chatSvc, userSvc),
	}
	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
