// Package page renders the login and chat pages.
package page

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/eduterium/chatbot-web/internal/session"
	"github.com/eduterium/chatbot-web/internal/transcript"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// TokenFetcher obtains an anti-forgery token from the backend. Satisfied by
// upstream.Client.
type TokenFetcher interface {
	CSRFToken(ctx context.Context) (string, error)
}

// Handler renders pages and processes the login form.
type Handler struct {
	tokens      TokenFetcher
	transcripts *transcript.Service
	botLogoURL  string
	login       *template.Template
	home        *template.Template
}

// New parses the page templates and returns the handler. A missing or broken
// template fails construction rather than the first request.
func New(tokens TokenFetcher, transcripts *transcript.Service, botLogoURL string) (*Handler, error) {
	login, err := template.ParseFS(templateFS, "templates/login.html")
	if err != nil {
		return nil, fmt.Errorf("parse login template: %w", err)
	}
	home, err := template.ParseFS(templateFS, "templates/home.html")
	if err != nil {
		return nil, fmt.Errorf("parse home template: %w", err)
	}

	return &Handler{
		tokens:      tokens,
		transcripts: transcripts,
		botLogoURL:  botLogoURL,
		login:       login,
		home:        home,
	}, nil
}

// RegisterRoutes registers the public page routes and static assets.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.handleLoginPage)
	r.Post("/login", h.handleLogin)

	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The subtree is embedded at build time; a miss here is a packaging bug.
		log.Printf("[page] static assets unavailable: %v", err)
		return
	}
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assets))))
}

// RegisterChatRoutes registers the routes that require a session identity.
func (h *Handler) RegisterChatRoutes(r chi.Router) {
	r.Get("/chat", h.handleHome)
	r.Post("/logout", h.handleLogout)
}

type loginPageData struct {
	CSRFToken string
	Error     string
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, "")
}

// renderLogin fetches a CSRF token and injects it as a hidden form field. A
// failed fetch is logged and the page renders without the field.
func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	data := loginPageData{Error: errMsg}

	token, err := h.tokens.CSRFToken(r.Context())
	if err != nil {
		log.Printf("[page] error fetching csrf token: %v", err)
	} else {
		data.CSRFToken = token
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.login.Execute(w, data); err != nil {
		log.Printf("[page] render login: %v", err)
	}
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := strings.TrimSpace(r.PostFormValue("password"))

	// Presence checks only; credential validation is the backend's concern.
	if username == "" {
		h.renderLogin(w, r, http.StatusBadRequest, "Username is required.")
		return
	}
	if password == "" {
		h.renderLogin(w, r, http.StatusBadRequest, "Password is required.")
		return
	}

	session.Write(w, username)
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

type homePageData struct {
	Username   string
	BotLogoURL string
	View       transcript.View
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	identity := session.FromRequest(r)
	view := h.transcripts.Snapshot(r.Context(), identity.Username)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.home.Execute(w, homePageData{
		Username:   identity.Username,
		BotLogoURL: h.botLogoURL,
		View:       view,
	}); err != nil {
		log.Printf("[page] render home: %v", err)
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	session.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
