// Package chat exposes the send endpoint and the transcript snapshot the
// chat page polls after navigation.
package chat

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eduterium/chatbot-web/internal/session"
	"github.com/eduterium/chatbot-web/internal/transcript"
	"github.com/eduterium/chatbot-web/pkg/utils"
)

// ErrorResponseText is the synthetic bot line shown when a send fails.
const ErrorResponseText = "Error: Could not fetch response"

// Sender delivers one user turn to the backend and returns the bot reply.
// Satisfied by upstream.Client.
type Sender interface {
	Send(ctx context.Context, username, role, message string) (string, error)
}

// Handler serves the chat endpoints.
type Handler struct {
	transcripts *transcript.Service
	sender      Sender
}

// New creates the chat handler.
func New(transcripts *transcript.Service, sender Sender) *Handler {
	return &Handler{transcripts: transcripts, sender: sender}
}

// RegisterRoutes registers the chat routes. Callers mount these behind the
// identity guard.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/send", h.handleSend)
	r.Get("/chat/transcript", h.handleTranscript)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	identity := session.FromRequest(r)

	var payload struct {
		Role    string `json:"role"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role := strings.TrimSpace(payload.Role)
	message := strings.TrimSpace(payload.Message)
	if message == "" {
		// Whitespace-only input: no transcript mutation, no network call.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx := r.Context()
	h.transcripts.AppendChatMessage(ctx, identity.Username, role, message, false)

	reply, err := h.sender.Send(ctx, identity.Username, role, message)
	if err != nil {
		log.Printf("[chat] send failed for %s: %v", identity.Username, err)
		h.transcripts.AppendChatMessage(ctx, identity.Username, "Bot", ErrorResponseText, true)
		utils.RespondError(w, http.StatusBadGateway, ErrorResponseText)
		return
	}

	pending := h.transcripts.AppendBotPending(ctx, identity.Username, reply)
	// The just-sent question files under Today by this frontend's clock; a
	// later replay re-buckets it from the stored timestamp.
	h.transcripts.AppendPreviousQuestion(ctx, identity.Username, message, time.Now())

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"entryId":  pending.ID,
		"response": reply,
	})
}

func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	identity := session.FromRequest(r)
	view := h.transcripts.Snapshot(r.Context(), identity.Username)
	utils.RespondJSON(w, http.StatusOK, view)
}
