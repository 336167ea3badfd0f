package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteThenFromRequest(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, "alice smith")

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}

	id := FromRequest(req)
	if !id.Present() {
		t.Fatal("expected identity to be present")
	}
	if id.Username != "alice smith" {
		t.Fatalf("unexpected username: %q", id.Username)
	}
	if !id.LoggedIn {
		t.Fatal("expected LoggedIn to be true")
	}
}

func TestFromRequestWithoutCookies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)

	if id := FromRequest(req); id.Present() {
		t.Fatalf("expected no identity, got %+v", id)
	}
}

func TestClearExpiresAllCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	Clear(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("expected 2 expired cookies, got %d", len(cookies))
	}
	for _, c := range cookies {
		if c.MaxAge != -1 {
			t.Errorf("cookie %s not expired (MaxAge=%d)", c.Name, c.MaxAge)
		}
	}
}
