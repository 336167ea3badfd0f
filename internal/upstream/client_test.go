package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second)
}

func TestSendPostsWithTokenAndIdentity(t *testing.T) {
	var gotToken, gotUser, gotRole, gotMessage string

	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/csrf-token":
			json.NewEncoder(w).Encode(map[string]string{"csrfToken": "tok-123"})
		case "/chat/add":
			gotToken = r.Header.Get("X-CSRF-Token")
			gotUser = r.URL.Query().Get("username")
			var body struct {
				ChatRole string `json:"chatRole"`
				Message  string `json:"message"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			gotRole, gotMessage = body.ChatRole, body.Message
			json.NewEncoder(w).Encode(map[string]string{"response": "Hello!"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	reply, err := client.Send(context.Background(), "alice", "Student", "Hi")
	if err != nil {
		t.Fatalf("Send err: %v", err)
	}
	if reply != "Hello!" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if gotToken != "tok-123" {
		t.Errorf("expected csrf token header, got %q", gotToken)
	}
	if gotUser != "alice" {
		t.Errorf("expected username query param, got %q", gotUser)
	}
	if gotRole != "Student" || gotMessage != "Hi" {
		t.Errorf("unexpected body: role=%q message=%q", gotRole, gotMessage)
	}
}

func TestSendWithoutIdentityFailsBeforeNetwork(t *testing.T) {
	called := false
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := client.Send(context.Background(), "", "Student", "Hi")
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
	if called {
		t.Fatal("expected no network call without identity")
	}
}

func TestSendCSRFFailureSkipsPost(t *testing.T) {
	posted := false
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/csrf-token":
			w.WriteHeader(http.StatusInternalServerError)
		case "/chat/add":
			posted = true
		}
	})

	if _, err := client.Send(context.Background(), "alice", "Student", "Hi"); err == nil {
		t.Fatal("expected error when csrf fetch fails")
	}
	if posted {
		t.Fatal("expected no post after csrf failure")
	}
}

func TestHistoryReturnsEntriesInOrder(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chats/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("username"); got != "alice" {
			t.Errorf("unexpected username %q", got)
		}
		w.Write([]byte(`[
			{"chatRole":"Student","message":"Hi","response":"Hello!","submittedAt":"2024-05-10T09:00:00Z"},
			{"chatRole":"Student","message":"Bye","response":"See you!","submittedAt":"2024-05-10T10:00:00Z"}
		]`))
	})

	entries, err := client.History(context.Background(), "alice")
	if err != nil {
		t.Fatalf("History err: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "Hi" || entries[1].Message != "Bye" {
		t.Fatalf("entries out of order: %+v", entries)
	}
}

func TestHistoryPropagatesFailure(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.History(context.Background(), "alice"); err == nil {
		t.Fatal("expected error on backend failure")
	}
}
