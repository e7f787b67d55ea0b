package core

import "time"

// Conversation summarises an ended session for the chat history list.
type Conversation struct {
	SessionID    string    `json:"session_id"`
	Title        string    `json:"title"`
	Model        string    `json:"model,omitempty"`
	MessageCount int       `json:"message_count"`
	JobCount     int       `json:"job_count"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	// Transcript holds the concatenated message contents used for search.
	Transcript string `json:"-"`
}

// HistoryStore archives ended conversations. List returns newest first;
// Search matches the query case-insensitively against title and transcript.
type HistoryStore interface {
	Archive(c Conversation) error
	Get(sessionID string) (Conversation, error)
	List(limit int) ([]Conversation, error)
	Search(query string, limit int) ([]Conversation, error)
	Delete(sessionID string) error
}
