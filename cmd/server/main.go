package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatrelay-backend/internal/config"
	"chatrelay-backend/internal/handlers"
	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/provider"
	"chatrelay-backend/internal/router"
	"chatrelay-backend/internal/services"
	"chatrelay-backend/internal/store"
)

func main() {
	log.Println("🚀 Starting chat relay backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Stores ────
	users, history, closeStores, err := openStores(cfg)
	if err != nil {
		log.Fatalf("✗ Store initialization failed: %v", err)
	}
	defer closeStores()
	log.Printf("✓ Store backend ready (%s)", cfg.StoreBackend)

	// ──── Step 3: Initialize Completion Provider ────
	llm, err := openProvider(cfg)
	if err != nil {
		log.Fatalf("✗ Provider initialization failed: %v", err)
	}
	if gc, ok := llm.(*provider.GeminiClient); ok {
		defer gc.Close()
	}
	log.Printf("✓ Completion provider ready (%s)", cfg.Provider)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(users, jwtAuth)
	chatService := services.NewChatService(history, llm, cfg.SystemPrompt)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, cfg.StrictStatus)
	chatHandler := handlers.NewChatHandler(chatService, cfg.StrictStatus)
	historyHandler := handlers.NewHistoryHandler(chatService, cfg.StrictStatus)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(jwtAuth, authHandler, chatHandler, historyHandler, cfg.FrontendURL, cfg.StaticDir)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// The outbound provider call can take up to two minutes on a
		// cold local model; the write timeout must outlast it.
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Chat relay ready on http://localhost:%s", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

// openStores picks the persistence backend. The file backend is the
// default and needs nothing but a writable directory.
func openStores(cfg *config.Config) (store.UserStore, store.HistoryStore, func(), error) {
	switch cfg.StoreBackend {
	case "file":
		users, err := store.NewFileUserStore(cfg.DataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		history, err := store.NewFileHistoryStore(cfg.DataDir)
		if err != nil {
			return nil, nil, nil, err
		}
		return users, history, func() {}, nil

	case "redis":
		if cfg.RedisURL == "" {
			return nil, nil, nil, fmt.Errorf("STORE_BACKEND=redis requires REDIS_URL")
		}
		s, err := store.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, func() { s.Close() }, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, nil, fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
		s, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, func() { s.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// openProvider picks the completion provider adapter. Missing
// credentials fail here, before any request is served.
func openProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.Provider {
	case "openai":
		return provider.NewOpenAIClient(cfg.LLMBaseURL, cfg.OpenAIAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens)

	case "groq":
		baseURL := cfg.LLMBaseURL
		if baseURL == "" {
			baseURL = provider.GroqBaseURL
		}
		model := cfg.LLMModel
		if model == "" {
			model = provider.DefaultGroqModel
		}
		return provider.NewOpenAIClient(baseURL, cfg.GroqAPIKey, model, cfg.LLMTemperature, cfg.LLMMaxTokens)

	case "ollama":
		return provider.NewOllamaClient(cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens), nil

	case "gemini":
		return provider.NewGeminiClient(cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTemperature, cfg.LLMMaxTokens)

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
