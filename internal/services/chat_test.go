package services

import (
	"context"
	"errors"
	"testing"

	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/provider"
	"chatrelay-backend/internal/store"
)

type stubProvider struct {
	reply    string
	err      error
	lastSeen []models.Turn
}

func (p *stubProvider) Complete(ctx context.Context, messages []models.Turn) (string, error) {
	p.lastSeen = messages
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

func newTestChatService(t *testing.T, p provider.Provider) (*ChatService, store.HistoryStore) {
	t.Helper()
	history, err := store.NewFileHistoryStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileHistoryStore: %v", err)
	}
	return NewChatService(history, p, "be helpful"), history
}

func TestChat_AuthenticatedAppendsBothTurns(t *testing.T) {
	stub := &stubProvider{reply: "hi there"}
	svc, history := newTestChatService(t, stub)
	ctx := context.Background()
	alice := middleware.Identity{Username: "alice"}

	reply, err := svc.Chat(ctx, alice, "hello")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("Expected 'hi there', got %q", reply)
	}

	turns, err := history.Recent(ctx, "alice", HistoryWindow)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(turns))
	}
	if turns[0].Role != models.RoleUser || turns[0].Content != "hello" {
		t.Errorf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Role != models.RoleAssistant || turns[1].Content != "hi there" {
		t.Errorf("unexpected assistant turn: %+v", turns[1])
	}
}

func TestChat_TwoTurnsGiveFourEntries(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	svc, history := newTestChatService(t, stub)
	ctx := context.Background()
	alice := middleware.Identity{Username: "alice"}

	if _, err := svc.Chat(ctx, alice, "first"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := svc.Chat(ctx, alice, "second"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	turns, _ := history.Recent(ctx, "alice", HistoryWindow)
	if len(turns) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(turns))
	}
	wantRoles := []string{models.RoleUser, models.RoleAssistant, models.RoleUser, models.RoleAssistant}
	for i, role := range wantRoles {
		if turns[i].Role != role {
			t.Errorf("turn %d: expected %q, got %q", i, role, turns[i].Role)
		}
	}
}

func TestChat_MessageListOrdering(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	svc, _ := newTestChatService(t, stub)
	ctx := context.Background()
	alice := middleware.Identity{Username: "alice"}

	if _, err := svc.Chat(ctx, alice, "first"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := svc.Chat(ctx, alice, "second"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	// System prompt, then the stored window verbatim, then the new turn.
	msgs := stub.lastSeen
	if len(msgs) != 4 {
		t.Fatalf("Expected 4 messages (system + 2 history + new), got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleSystem || msgs[0].Content != "be helpful" {
		t.Errorf("Expected system prompt first, got %+v", msgs[0])
	}
	if msgs[1].Content != "first" || msgs[2].Content != "ok" {
		t.Errorf("history window not forwarded in order: %+v", msgs)
	}
	if msgs[3].Role != models.RoleUser || msgs[3].Content != "second" {
		t.Errorf("Expected new user turn last, got %+v", msgs[3])
	}
}

func TestChat_AnonymousGetsNoHistory(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	svc, history := newTestChatService(t, stub)
	ctx := context.Background()

	if _, err := svc.Chat(ctx, middleware.Anonymous, "hello"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	// Only system prompt and the new message go out.
	if len(stub.lastSeen) != 2 {
		t.Errorf("Expected 2 messages for anonymous chat, got %d", len(stub.lastSeen))
	}

	// Nothing is recorded for anonymous callers.
	turns, _ := history.Recent(ctx, "", HistoryWindow)
	if len(turns) != 0 {
		t.Errorf("Expected no stored turns, got %d", len(turns))
	}
}

func TestChat_ProviderFailureAppendsNothing(t *testing.T) {
	stub := &stubProvider{err: &provider.UnavailableError{Err: errors.New("connection refused")}}
	svc, history := newTestChatService(t, stub)
	ctx := context.Background()
	alice := middleware.Identity{Username: "alice"}

	_, err := svc.Chat(ctx, alice, "hello")
	var unavail *provider.UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("Expected UnavailableError, got %v", err)
	}

	turns, _ := history.Recent(ctx, "alice", HistoryWindow)
	if len(turns) != 0 {
		t.Errorf("failed turn must not be recorded, got %d entries", len(turns))
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	svc, _ := newTestChatService(t, stub)

	_, err := svc.Chat(context.Background(), middleware.Anonymous, "   ")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
}

func TestClearHistory(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	svc, history := newTestChatService(t, stub)
	ctx := context.Background()
	alice := middleware.Identity{Username: "alice"}

	if _, err := svc.Chat(ctx, alice, "hello"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if err := svc.ClearHistory(ctx, alice); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}

	turns, err := history.Recent(ctx, "alice", HistoryWindow)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("Expected empty history after clear, got %d", len(turns))
	}

	// Clearing again is a no-op success.
	if err := svc.ClearHistory(ctx, alice); err != nil {
		t.Errorf("second ClearHistory: %v", err)
	}

	// Anonymous callers cannot clear anything.
	err = svc.ClearHistory(ctx, middleware.Anonymous)
	var unauthorized *UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Errorf("Expected UnauthorizedError for anonymous, got %v", err)
	}
}

func TestHistory_AnonymousIsEmpty(t *testing.T) {
	stub := &stubProvider{reply: "ok"}
	svc, _ := newTestChatService(t, stub)

	turns, err := svc.History(context.Background(), middleware.Anonymous)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("Expected empty history for anonymous, got %d", len(turns))
	}
}
