package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/warelabs/warelay/internal/chat"
	"github.com/warelabs/warelay/internal/twilio"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	chat   chat.Client
	sender twilio.Sender
	number string // configured WhatsApp sender, whatsapp:+E164
	logger zerolog.Logger
}

// NewHandler creates a new Handler with the given outbound clients.
func NewHandler(chatClient chat.Client, sender twilio.Sender, number string, logger zerolog.Logger) *Handler {
	return &Handler{
		chat:   chatClient,
		sender: sender,
		number: number,
		logger: logger,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}
