// Package stream delivers the typewriter reveal of a bot reply over
// Server-Sent Events.
package stream

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eduterium/chatbot-web/internal/session"
	"github.com/eduterium/chatbot-web/internal/transcript"
	"github.com/eduterium/chatbot-web/internal/typewriter"
	"github.com/eduterium/chatbot-web/pkg/utils"
)

// Handler streams reveal chunks for pending bot entries.
type Handler struct {
	transcripts *transcript.Service
	delay       time.Duration
}

// New creates the stream handler with the per-character reveal delay.
func New(transcripts *transcript.Service, delay time.Duration) *Handler {
	return &Handler{transcripts: transcripts, delay: delay}
}

// RegisterRoutes registers the reveal stream route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/stream/{entryID}", h.handleReveal)
}

// revealChunk is one SSE frame of the reveal.
type revealChunk struct {
	Event    string `json:"event"`
	EntryID  string `json:"entryId,omitempty"`
	Content  string `json:"content,omitempty"`
	Finished bool   `json:"finished,omitempty"`
}

func (h *Handler) handleReveal(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	identity := session.FromRequest(r)
	entryID := chi.URLParam(r, "entryID")

	entry, found := h.transcripts.Entry(identity.Username, entryID)
	if !found {
		utils.RespondError(w, http.StatusNotFound, "entry not found")
		return
	}
	if !entry.Bot {
		utils.RespondError(w, http.StatusBadRequest, "only bot entries are revealed")
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEChunk(w, flusher, revealChunk{Event: "start", EntryID: entry.ID})

	task := typewriter.New(entry.Message, h.delay)
	h.transcripts.BeginReveal(identity.Username, task)

	finished := task.Run(r.Context(), func(ch string) {
		utils.SendSSEChunk(w, flusher, revealChunk{Event: "chunk", Content: ch})
	})

	if finished {
		h.transcripts.MarkRevealed(identity.Username, entry.ID)
		utils.SendSSEChunk(w, flusher, revealChunk{Event: "done", EntryID: entry.ID, Finished: true})
	}
}
