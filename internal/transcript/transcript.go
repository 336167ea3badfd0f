// Package transcript keeps the per-user chat transcript and the categorized
// list of previous questions that the chat page renders.
package transcript

import (
	"time"

	"github.com/google/uuid"

	"github.com/eduterium/chatbot-web/internal/model/chat"
)

// now is swapped in tests that pin the current date.
var now = time.Now

// Entry is one rendered transcript line. User entries carry the role label;
// bot entries carry only the message and render with the avatar.
type Entry struct {
	ID       string `json:"id"`
	Role     string `json:"role,omitempty"`
	Message  string `json:"message"`
	Bot      bool   `json:"bot"`
	Revealed bool   `json:"revealed"`
}

// Category is one labeled recency section of the previous-questions sidebar.
type Category struct {
	Label     chat.CategoryLabel `json:"label"`
	Questions []string           `json:"questions"`
}

// View is a copied snapshot safe to render outside the lock.
type View struct {
	Entries    []Entry    `json:"entries"`
	Categories []Category `json:"categories"`
	Visible    bool       `json:"visible"`
}

// Transcript owns the chat log and sidebar for a single user. All mutating
// methods are called under the owning Service's per-transcript lock.
type Transcript struct {
	entries    []Entry
	categories []*Category
	byLabel    map[chat.CategoryLabel]*Category
}

func newTranscript() *Transcript {
	return &Transcript{
		byLabel: make(map[chat.CategoryLabel]*Category),
	}
}

// appendChatMessage inserts a new entry at the end of the transcript and
// returns it. It cannot fail.
func (t *Transcript) appendChatMessage(role, message string, isBotResponse, revealed bool) Entry {
	entry := Entry{
		ID:       uuid.NewString(),
		Message:  message,
		Bot:      isBotResponse,
		Revealed: revealed,
	}
	if !isBotResponse {
		entry.Role = role
	}
	t.entries = append(t.entries, entry)
	return entry
}

// appendPreviousQuestion buckets the question by recency. The section for a
// label is created on first use and appended after existing sections, so
// section order is first-seen, not calendar order. Sections are never
// destroyed or merged.
func (t *Transcript) appendPreviousQuestion(question string, submittedAt time.Time) {
	label := chat.LabelForDays(chat.DaysBetween(now(), submittedAt))

	category, ok := t.byLabel[label]
	if !ok {
		category = &Category{Label: label}
		t.byLabel[label] = category
		t.categories = append(t.categories, category)
	}
	category.Questions = append(category.Questions, question)
}

// visible reports whether the transcript container should render. Hidden only
// while the transcript is empty.
func (t *Transcript) visible() bool {
	return len(t.entries) > 0
}

func (t *Transcript) snapshot() View {
	view := View{
		Entries:    append([]Entry(nil), t.entries...),
		Categories: make([]Category, 0, len(t.categories)),
		Visible:    t.visible(),
	}
	for _, c := range t.categories {
		view.Categories = append(view.Categories, Category{
			Label:     c.Label,
			Questions: append([]string(nil), c.Questions...),
		})
	}
	return view
}

func (t *Transcript) find(id string) (Entry, bool) {
	for _, e := range t.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (t *Transcript) markRevealed(id string) {
	for i := range t.entries {
		if t.entries[i].ID == id {
			t.entries[i].Revealed = true
			return
		}
	}
}
