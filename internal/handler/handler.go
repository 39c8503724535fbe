package handler

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/meronoumer/moodreads/internal/service"
)

type Handler struct {
	service  *service.Service
	sessions *Sessions
}

func NewHandler(svc *service.Service, sessions *Sessions) *Handler {
	return &Handler{service: svc, sessions: sessions}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}
