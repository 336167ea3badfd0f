// Package session holds the client-side identity for the chat frontend as
// session-scoped cookies, one per stored value.
package session

import (
	"net/http"
	"net/url"
)

const (
	usernameCookie = "chatBotUsername"
	loggedInCookie = "chatBotLoggedIn"
)

// Identity is the username identifying whose chat history to show. Its
// presence is the sole gate for chat page access.
type Identity struct {
	Username string
	LoggedIn bool
}

// Present reports whether a usable identity was found.
func (id Identity) Present() bool {
	return id.Username != ""
}

// FromRequest reads the identity cookies off the request. Absent or
// undecodable cookies yield a zero Identity.
func FromRequest(r *http.Request) Identity {
	var id Identity

	if c, err := r.Cookie(usernameCookie); err == nil {
		if name, err := url.QueryUnescape(c.Value); err == nil {
			id.Username = name
		}
	}
	if c, err := r.Cookie(loggedInCookie); err == nil {
		id.LoggedIn = c.Value == "true"
	}
	return id
}

// Write stores the identity as session-scoped cookies (no Max-Age, so they
// live for the browser session, like the original tab-scoped storage).
func Write(w http.ResponseWriter, username string) {
	http.SetCookie(w, &http.Cookie{
		Name:     usernameCookie,
		Value:    url.QueryEscape(username),
		Path:     "/",
		HttpOnly: true,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     loggedInCookie,
		Value:    "true",
		Path:     "/",
		HttpOnly: true,
	})
}

// Clear expires every session cookie.
func Clear(w http.ResponseWriter) {
	for _, name := range []string{usernameCookie, loggedInCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}
