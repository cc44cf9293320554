package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"chatrelay-backend/internal/models"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiClient adapts Google's Gemini SDK to the Provider contract.
type GeminiClient struct {
	client      *genai.Client
	modelName   string
	temperature float64
	maxTokens   int
}

func NewGeminiClient(apiKey, modelName string, temperature float64, maxTokens int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, &ConfigError{Message: "missing GEMINI_API_KEY"}
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
		maxTokens:   maxTokens,
	}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Complete(ctx context.Context, messages []models.Turn) (string, error) {
	if len(messages) == 0 {
		return "", &ResponseError{Message: "no messages to send"}
	}

	// Each call gets its own GenerativeModel: SystemInstruction is a
	// field on the model, and requests run concurrently.
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(float32(c.temperature))
	model.SetMaxOutputTokens(int32(c.maxTokens))

	// Gemini takes the system prompt out of band and wants history
	// separated from the message being sent.
	system, history := splitConversation(messages[:len(messages)-1])
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(messages[len(messages)-1].Content))
	if err != nil {
		return "", &APIError{Message: fmt.Sprintf("Gemini API error: %v", err)}
	}

	text := extractText(resp)
	if text == "" {
		return "", &ResponseError{Message: "Gemini response has no reply content"}
	}
	return text, nil
}

// splitConversation separates the system prompt from prior turns and
// maps roles onto Gemini's user/model convention.
func splitConversation(turns []models.Turn) (string, []*genai.Content) {
	var system string
	var history []*genai.Content
	for _, m := range turns {
		switch m.Role {
		case models.RoleSystem:
			system = m.Content
		case models.RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	return system, history
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
