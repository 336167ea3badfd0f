// Package live carries the chat send/reveal loop over a websocket, for
// clients that keep one connection instead of pairing POST with SSE.
package live

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chathandler "github.com/eduterium/chatbot-web/internal/handler/chat"
	"github.com/eduterium/chatbot-web/internal/session"
	"github.com/eduterium/chatbot-web/internal/transcript"
	"github.com/eduterium/chatbot-web/internal/typewriter"
)

// Handler upgrades chat connections and runs the send pipeline per inbound
// message.
type Handler struct {
	transcripts *transcript.Service
	sender      chathandler.Sender
	delay       time.Duration
	upgrader    websocket.Upgrader
}

// New creates the live channel handler.
func New(transcripts *transcript.Service, sender chathandler.Sender, delay time.Duration) *Handler {
	return &Handler{
		transcripts: transcripts,
		sender:      sender,
		delay:       delay,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/live", h.handleLive)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

type sendRequest struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	EntryID   string `json:"entryId,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	identity := session.FromRequest(r)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[live] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[live] read error for %s: %v", identity.Username, err)
			}
			return
		}

		switch inbound.Type {
		case "send":
			var req sendRequest
			if err := json.Unmarshal(inbound.Data, &req); err != nil {
				h.write(conn, outgoingMessage{Type: "error", Content: "invalid send payload"})
				continue
			}
			h.handleSend(r, conn, identity.Username, req)
		default:
			h.write(conn, outgoingMessage{Type: "error", Content: "unknown message type"})
		}
	}
}

func (h *Handler) handleSend(r *http.Request, conn *websocket.Conn, username string, req sendRequest) {
	role := strings.TrimSpace(req.Role)
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return
	}

	ctx := r.Context()
	h.transcripts.AppendChatMessage(ctx, username, role, message, false)

	reply, err := h.sender.Send(ctx, username, role, message)
	if err != nil {
		log.Printf("[live] send failed for %s: %v", username, err)
		h.transcripts.AppendChatMessage(ctx, username, "Bot", chathandler.ErrorResponseText, true)
		h.write(conn, outgoingMessage{Type: "error", Content: chathandler.ErrorResponseText})
		return
	}

	pending := h.transcripts.AppendBotPending(ctx, username, reply)
	h.transcripts.AppendPreviousQuestion(ctx, username, message, time.Now())

	h.write(conn, outgoingMessage{Type: "start", EntryID: pending.ID})

	task := typewriter.New(reply, h.delay)
	h.transcripts.BeginReveal(username, task)

	finished := task.Run(ctx, func(ch string) {
		h.write(conn, outgoingMessage{Type: "chunk", Content: ch})
	})

	if finished {
		h.transcripts.MarkRevealed(username, pending.ID)
		h.write(conn, outgoingMessage{Type: "done", EntryID: pending.ID})
	}
}

func (h *Handler) write(conn *websocket.Conn, msg outgoingMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[live] write error: %v", err)
	}
}
