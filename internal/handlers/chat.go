package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/provider"
	"chatrelay-backend/internal/services"
)

type ChatHandler struct {
	chatService  *services.ChatService
	strictStatus bool
}

func NewChatHandler(chatService *services.ChatService, strictStatus bool) *ChatHandler {
	return &ChatHandler{chatService: chatService, strictStatus: strictStatus}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.failure(w, http.StatusBadRequest, "❌ Invalid request body.")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	reply, err := h.chatService.Chat(r.Context(), identity, req.Message)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

// handleError keeps the legacy chat contract: every failure is still a
// {reply} payload with a "❌ "-prefixed message, HTTP 200 unless strict
// status codes are enabled.
func (h *ChatHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		h.failure(w, http.StatusBadRequest, "❌ "+e.Error())
	case *provider.ConfigError:
		h.failure(w, http.StatusInternalServerError, "❌ Provider is not configured: "+e.Message)
	case *provider.UnavailableError:
		h.failure(w, http.StatusBadGateway, "❌ Cannot reach the model provider.")
	case *provider.APIError:
		h.failure(w, http.StatusBadGateway, "❌ Provider error: "+e.Message)
	case *provider.ResponseError:
		h.failure(w, http.StatusBadGateway, "❌ Provider sent an unexpected response.")
	default:
		log.Printf("chat handler error [%s]: %v", r.Header.Get("X-Request-ID"), err)
		h.failure(w, http.StatusInternalServerError, "❌ Server error. Please try again.")
	}
}

func (h *ChatHandler) failure(w http.ResponseWriter, code int, reply string) {
	status := http.StatusOK
	if h.strictStatus {
		status = code
	}
	writeJSON(w, status, models.ChatResponse{Reply: reply})
}
