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
	OllamaBaseURL      = "http://localhost:11434"
	DefaultOllamaModel = "llama3"
)

// OllamaClient talks to a local Ollama instance. Ollama nests the
// reply at message.content rather than choices[0].message.content and
// needs no API key.
type OllamaClient struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

func NewOllamaClient(baseURL, model string, temperature float64, maxTokens int) *OllamaClient {
	if baseURL == "" {
		baseURL = OllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaClient{
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []models.Turn `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error"`
}

func (c *OllamaClient) Complete(ctx context.Context, messages []models.Turn) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options:  ollamaOptions{Temperature: c.temperature, NumPredict: c.maxTokens},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &UnavailableError{Err: err}
	}
	defer resp.Body.Close()

	var parsed ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &ResponseError{Message: fmt.Sprintf("failed to decode Ollama response: %v", err)}
	}

	if parsed.Error != "" {
		return "", &APIError{Message: parsed.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Message: fmt.Sprintf("Ollama returned status %d", resp.StatusCode)}
	}
	if parsed.Message.Content == "" {
		return "", &ResponseError{Message: "Ollama response has no reply content"}
	}
	return parsed.Message.Content, nil
}
