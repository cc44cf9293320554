package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"chatrelay-backend/internal/models"
)

const (
	OpenAIBaseURL = "https://api.openai.com/v1"
	GroqBaseURL   = "https://api.groq.com/openai/v1"

	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGroqModel   = "llama-3.1-8b-instant"
)

// OpenAIClient talks to any OpenAI-compatible chat-completions API.
// Groq uses the same wire format, so the Groq provider is this client
// pointed at the Groq base URL.
type OpenAIClient struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

func NewOpenAIClient(baseURL, apiKey, model string, temperature float64, maxTokens int) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, &ConfigError{Message: "missing API key for OpenAI-compatible provider"}
	}
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type openAIRequest struct {
	Model       string        `json:"model"`
	Messages    []models.Turn `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []models.Turn) (string, error) {
	body, err := json.Marshal(openAIRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	var parsed openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ResponseError{Message: fmt.Sprintf("failed to decode provider response: %v", err)}
	}

	if parsed.Error != nil {
		return "", &APIError{Message: parsed.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Message: fmt.Sprintf("provider returned status %d", resp.StatusCode)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", &ResponseError{Message: "provider response has no reply content"}
	}
	return parsed.Choices[0].Message.Content, nil
}
