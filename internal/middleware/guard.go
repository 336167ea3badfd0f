package middleware

import (
	"net/http"

	"github.com/eduterium/chatbot-web/internal/session"
)

// RequireIdentity redirects to the site root when no session identity is
// present. It runs before any chat handler, mirroring the page-load guard.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromRequest(r).Present() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
