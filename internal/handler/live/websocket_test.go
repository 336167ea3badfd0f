package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatmodel "github.com/eduterium/chatbot-web/internal/model/chat"
	"github.com/eduterium/chatbot-web/internal/session"
	"github.com/eduterium/chatbot-web/internal/transcript"
)

type emptyHistory struct{}

func (emptyHistory) History(context.Context, string) ([]chatmodel.Entry, error) { return nil, nil }

type fakeSender struct {
	reply string
	calls int
}

func (f *fakeSender) Send(_ context.Context, _, _, _ string) (string, error) {
	f.calls++
	return f.reply, nil
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/live"
	header := http.Header{}

	rec := httptest.NewRecorder()
	session.Write(rec, "alice")
	var cookies []string
	for _, c := range rec.Result().Cookies() {
		cookies = append(cookies, c.Name+"="+c.Value)
	}
	header.Set("Cookie", strings.Join(cookies, "; "))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestLiveSendStreamsReveal(t *testing.T) {
	sender := &fakeSender{reply: "Hi!"}
	transcripts := transcript.NewService(emptyHistory{})
	handler := New(transcripts, sender, time.Millisecond)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dial(t, srv)

	// A whitespace-only send is dropped without any reply or upstream call.
	if err := conn.WriteJSON(map[string]any{
		"type": "send",
		"data": map[string]string{"role": "Student", "message": "   "},
	}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	if err := conn.WriteJSON(map[string]any{
		"type": "send",
		"data": map[string]string{"role": "Student", "message": "Hello"},
	}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var (
		revealed strings.Builder
		entryID  string
		done     bool
	)
	for !done {
		var msg outgoingMessage
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read err: %v", err)
		}

		switch msg.Type {
		case "start":
			entryID = msg.EntryID
		case "chunk":
			revealed.WriteString(msg.Content)
		case "done":
			done = true
		default:
			t.Fatalf("unexpected message: %+v", msg)
		}
	}

	if revealed.String() != "Hi!" {
		t.Fatalf("reveal mismatch: %q", revealed.String())
	}
	if sender.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", sender.calls)
	}

	entry, ok := transcripts.Entry("alice", entryID)
	if !ok || !entry.Revealed {
		t.Fatalf("bot entry not revealed: %+v ok=%v", entry, ok)
	}

	view := transcripts.Snapshot(context.Background(), "alice")
	if len(view.Entries) != 2 {
		t.Fatalf("expected user + bot entries, got %d", len(view.Entries))
	}
	if len(view.Categories) != 1 || view.Categories[0].Questions[0] != "Hello" {
		t.Fatalf("question not filed: %+v", view.Categories)
	}
}

func TestLiveRejectsUnknownMessageType(t *testing.T) {
	transcripts := transcript.NewService(emptyHistory{})
	handler := New(transcripts, &fakeSender{}, time.Millisecond)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dial(t, srv)
	if err := conn.WriteJSON(map[string]any{"type": "bogus"}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	var msg outgoingMessage
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read err: %v", err)
	}
	if msg.Type != "error" {
		t.Fatalf("expected error message, got %+v", msg)
	}
}
