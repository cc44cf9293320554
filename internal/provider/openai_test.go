package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chatrelay-backend/internal/models"
)

func TestNewOpenAIClient_MissingKey(t *testing.T) {
	_, err := NewOpenAIClient("", "", "", 0.7, 500)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected ConfigError, got %v", err)
	}
}

func TestOpenAIClient_Complete(t *testing.T) {
	var gotReq openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAIClient(srv.URL, "test-key", "gpt-4o-mini", 0.7, 500)
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}

	reply, err := c.Complete(context.Background(), []models.Turn{
		{Role: models.RoleSystem, Content: "be brief"},
		{Role: models.RoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("Expected 'hi there', got %q", reply)
	}

	if gotReq.Model != "gpt-4o-mini" {
		t.Errorf("Expected model gpt-4o-mini, got %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != models.RoleSystem {
		t.Errorf("messages not forwarded verbatim: %+v", gotReq.Messages)
	}
	if gotReq.MaxTokens != 500 {
		t.Errorf("Expected max_tokens 500, got %d", gotReq.MaxTokens)
	}
}

func TestOpenAIClient_ProviderErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer srv.Close()

	c, _ := NewOpenAIClient(srv.URL, "bad-key", "", 0.7, 500)
	_, err := c.Complete(context.Background(), []models.Turn{{Role: models.RoleUser, Content: "hi"}})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError, got %v", err)
	}
	if apiErr.Message != "Incorrect API key provided" {
		t.Errorf("Expected provider message, got %q", apiErr.Message)
	}
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, _ := NewOpenAIClient(srv.URL, "key", "", 0.7, 500)
	_, err := c.Complete(context.Background(), []models.Turn{{Role: models.RoleUser, Content: "hi"}})

	var respErr *ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("Expected ResponseError, got %v", err)
	}
}

func TestOpenAIClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c, _ := NewOpenAIClient(srv.URL, "key", "", 0.7, 500)
	_, err := c.Complete(context.Background(), []models.Turn{{Role: models.RoleUser, Content: "hi"}})

	var unavailErr *UnavailableError
	if !errors.As(err, &unavailErr) {
		t.Fatalf("Expected UnavailableError, got %v", err)
	}
}
