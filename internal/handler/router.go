package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/eduterium/chatbot-web/internal/handler/chat"
	livehandler "github.com/eduterium/chatbot-web/internal/handler/live"
	pagehandler "github.com/eduterium/chatbot-web/internal/handler/page"
	streamhandler "github.com/eduterium/chatbot-web/internal/handler/stream"
	middlewarePkg "github.com/eduterium/chatbot-web/internal/middleware"
)

// NewRouter wires HTTP routes to the page, chat, stream and live handlers.
// Everything under the chat surface sits behind the identity guard.
func NewRouter(pages *pagehandler.Handler, chat *chathandler.Handler, stream *streamhandler.Handler, live *livehandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	pages.RegisterRoutes(r)

	r.Group(func(g chi.Router) {
		g.Use(middlewarePkg.RequireIdentity)

		pages.RegisterChatRoutes(g)
		chat.RegisterRoutes(g)
		stream.RegisterRoutes(g)
		live.RegisterRoutes(g)
	})

	return r
}
