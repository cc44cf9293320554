package handlers

import (
	"encoding/json"
	"net/http"

	"chatrelay-backend/internal/models"
	"chatrelay-backend/internal/services"
)

type AuthHandler struct {
	authService  *services.AuthService
	strictStatus bool
}

func NewAuthHandler(authService *services.AuthService, strictStatus bool) *AuthHandler {
	return &AuthHandler{authService: authService, strictStatus: strictStatus}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.status(http.StatusBadRequest), models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.authService.Register(r.Context(), req); err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse{Success: true})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, h.status(http.StatusBadRequest), models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleError maps service errors to the flat {error} shape. The
// legacy contract sends every failure as HTTP 200 and lets the body
// carry the message; strict mode restores real status codes.
func (h *AuthHandler) handleError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case *services.ValidationError:
		writeJSON(w, h.status(http.StatusBadRequest), models.ErrorResponse{Error: err.Error()})
	case *services.ConflictError:
		writeJSON(w, h.status(http.StatusConflict), models.ErrorResponse{Error: err.Error()})
	case *services.UnauthorizedError:
		writeJSON(w, h.status(http.StatusUnauthorized), models.ErrorResponse{Error: err.Error()})
	case *services.NotFoundError:
		writeJSON(w, h.status(http.StatusNotFound), models.ErrorResponse{Error: err.Error()})
	default:
		writeJSON(w, h.status(http.StatusInternalServerError), models.ErrorResponse{Error: "An unexpected error occurred"})
	}
}

func (h *AuthHandler) status(code int) int {
	if h.strictStatus {
		return code
	}
	return http.StatusOK
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
