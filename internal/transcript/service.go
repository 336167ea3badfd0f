package transcript

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/eduterium/chatbot-web/internal/model/chat"
	"github.com/eduterium/chatbot-web/internal/typewriter"
)

// HistoryFetcher reads all stored chat turns for a user. Satisfied by
// upstream.Client.
type HistoryFetcher interface {
	History(ctx context.Context, username string) ([]chat.Entry, error)
}

// Service manages one transcript per logged-in user. History replay runs
// exactly once per user and every caller is gated behind its completion, so a
// send can never land before prior history has.
type Service struct {
	mu      sync.RWMutex
	users   map[string]*userState
	fetcher HistoryFetcher
}

type userState struct {
	mu         sync.Mutex
	replayOnce sync.Once
	transcript *Transcript
	reveal     *typewriter.Task
}

// NewService bootstraps the in-memory transcript service.
func NewService(fetcher HistoryFetcher) *Service {
	return &Service{
		users:   make(map[string]*userState),
		fetcher: fetcher,
	}
}

func (s *Service) state(username string) *userState {
	s.mu.RLock()
	st, ok := s.users[username]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.users[username]; ok {
		return st
	}
	st = &userState{transcript: newTranscript()}
	s.users[username] = st
	return st
}

// ensure replays stored history into the transcript on first use. Concurrent
// callers block until the replay resolves. A failed fetch is logged and
// leaves the transcript empty; it is never surfaced as a user error.
func (s *Service) ensure(ctx context.Context, st *userState, username string) {
	st.replayOnce.Do(func() {
		entries, err := s.fetcher.History(ctx, username)
		if err != nil {
			log.Printf("[transcript] error fetching chats for %s: %v", username, err)
			return
		}

		st.mu.Lock()
		defer st.mu.Unlock()
		for _, e := range entries {
			st.transcript.appendPreviousQuestion(e.Message, e.SubmittedAt)
			st.transcript.appendChatMessage(e.ChatRole, e.Message, false, true)
			st.transcript.appendChatMessage("Bot", e.Response, true, true)
		}
	})
}

// Snapshot returns a copied view of the user's transcript, replaying history
// first if this is the user's first visit.
func (s *Service) Snapshot(ctx context.Context, username string) View {
	st := s.state(username)
	s.ensure(ctx, st, username)

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.transcript.snapshot()
}

// AppendChatMessage inserts a fully revealed entry at the end of the
// transcript and returns it.
func (s *Service) AppendChatMessage(ctx context.Context, username, role, message string, isBotResponse bool) Entry {
	st := s.state(username)
	s.ensure(ctx, st, username)

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.transcript.appendChatMessage(role, message, isBotResponse, true)
}

// AppendBotPending inserts a bot entry that starts empty on the page and is
// filled in by a reveal stream.
func (s *Service) AppendBotPending(ctx context.Context, username, message string) Entry {
	st := s.state(username)
	s.ensure(ctx, st, username)

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.transcript.appendChatMessage("", message, true, false)
}

// AppendPreviousQuestion records a question in the sidebar bucket matching
// its submission date.
func (s *Service) AppendPreviousQuestion(ctx context.Context, username, question string, submittedAt time.Time) {
	st := s.state(username)
	s.ensure(ctx, st, username)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.transcript.appendPreviousQuestion(question, submittedAt)
}

// Entry looks up a transcript entry by id.
func (s *Service) Entry(username, id string) (Entry, bool) {
	st := s.state(username)

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.transcript.find(id)
}

// MarkRevealed flags a bot entry as fully shown.
func (s *Service) MarkRevealed(username, id string) {
	st := s.state(username)

	st.mu.Lock()
	defer st.mu.Unlock()
	st.transcript.markRevealed(id)
}

// BeginReveal registers the active reveal task for a user, stopping any
// unfinished one so reveals never interleave on a transcript.
func (s *Service) BeginReveal(username string, task *typewriter.Task) {
	st := s.state(username)

	st.mu.Lock()
	prev := st.reveal
	st.reveal = task
	st.mu.Unlock()

	if prev != nil {
		prev.Stop()
	}
}
