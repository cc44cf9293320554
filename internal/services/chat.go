package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/provider"
	"chatrelay-backend/internal/store"
)

// HistoryWindow is how many turns (5 exchanges) of prior conversation
// are sent to the provider as context.
const HistoryWindow = 10

// ChatService relays a user message to the completion provider,
// framed by the system prompt and, for authenticated users, the
// recent history window.
type ChatService struct {
	history      store.HistoryStore
	provider     provider.Provider
	systemPrompt string
}

func NewChatService(history store.HistoryStore, p provider.Provider, systemPrompt string) *ChatService {
	return &ChatService{history: history, provider: p, systemPrompt: systemPrompt}
}

func (s *ChatService) Chat(ctx context.Context, identity middleware.Identity, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	messages := []models.Turn{{Role: models.RoleSystem, Content: s.systemPrompt}}

	if identity.Authenticated() {
		window, err := s.history.Recent(ctx, identity.Username, HistoryWindow)
		if err != nil {
			return "", fmt.Errorf("failed to load history window: %w", err)
		}
		messages = append(messages, window...)
	}

	messages = append(messages, models.Turn{Role: models.RoleUser, Content: message})

	reply, err := s.provider.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	// Only successful turns are recorded, and only for known users.
	if identity.Authenticated() {
		err := s.history.Append(ctx, identity.Username,
			models.Turn{Role: models.RoleUser, Content: message},
			models.Turn{Role: models.RoleAssistant, Content: reply},
		)
		if err != nil {
			// The reply is already in hand; losing one history write
			// is better than failing the whole request.
			log.Printf("failed to append history for %s: %v", identity.Username, err)
		}
	}

	return reply, nil
}

// History returns the recent window of the user's conversation.
func (s *ChatService) History(ctx context.Context, identity middleware.Identity) ([]models.Turn, error) {
	if !identity.Authenticated() {
		return []models.Turn{}, nil
	}
	return s.history.Recent(ctx, identity.Username, HistoryWindow)
}

// ClearHistory deletes the user's entire conversation. Idempotent.
func (s *ChatService) ClearHistory(ctx context.Context, identity middleware.Identity) error {
	if !identity.Authenticated() {
		return &UnauthorizedError{Message: "Login required"}
	}
	return s.history.Clear(ctx, identity.Username)
}
