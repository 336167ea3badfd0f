package chat

import "time"

// Entry is one stored chat turn in the wire shape the backend returns.
type Entry struct {
	ChatRole    string    `json:"chatRole"`
	Message     string    `json:"message"`
	Response    string    `json:"response"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// PendingMessage carries a user turn from form input until the backend
// acknowledges it with a response.
type PendingMessage struct {
	ChatRole string `json:"chatRole"`
	Message  string `json:"message"`
}
