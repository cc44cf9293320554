package handlers

import (
	"net/http"

	"chatrelay-backend/internal/middleware"
	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/services"
)

type HistoryHandler struct {
	chatService  *services.ChatService
	strictStatus bool
}

func NewHistoryHandler(chatService *services.ChatService, strictStatus bool) *HistoryHandler {
	return &HistoryHandler{chatService: chatService, strictStatus: strictStatus}
}

// Get returns the caller's recent conversation window. Anonymous
// callers get an empty array rather than an authorization error.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	turns, err := h.chatService.History(r.Context(), identity)
	if err != nil {
		writeJSON(w, h.status(http.StatusInternalServerError), models.ErrorResponse{Error: "Failed to load history"})
		return
	}
	if turns == nil {
		turns = []models.Turn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

// Delete wipes the caller's conversation.
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	if !identity.Authenticated() {
		writeJSON(w, h.status(http.StatusUnauthorized), models.ErrorResponse{Error: "Login required"})
		return
	}

	if err := h.chatService.ClearHistory(r.Context(), identity); err != nil {
		writeJSON(w, h.status(http.StatusInternalServerError), models.ErrorResponse{Error: "Failed to clear history"})
		return
	}
	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *HistoryHandler) status(code int) int {
	if h.strictStatus {
		return code
	}
	return http.StatusOK
}
