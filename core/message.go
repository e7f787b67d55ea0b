package core

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the producer of a Message.
type Role string

const (
	// RoleUser marks input typed or submitted by the user.
	RoleUser Role = "user"
	// RoleAssistant marks replies of the default responder and synchronous
	// dispatcher notices (validation failures, busy slots).
	RoleAssistant Role = "assistant"
	// RoleToolResult marks the outcome of a terminal tool job.
	RoleToolResult Role = "tool-result"
)

// Message is a single entry of a session's conversation log. After it has
// been appended it must be treated as immutable; Seq defines its position in
// the total order of the log and is assigned by the log itself.
//
// RelatedJobID is only ever set for messages that report the outcome of a
// job which already reached a terminal status.
type Message struct {
	ID           string    `json:"id" toml:"id"`
	Seq          uint64    `json:"seq" toml:"seq"`
	Role         Role      `json:"role" toml:"role"`
	Content      string    `json:"content" toml:"content"`
	CreatedAt    time.Time `json:"created_at" toml:"created_at"`
	RelatedJobID string    `json:"related_job_id,omitempty" toml:"related_job_id,omitempty"`
	ArtifactID   string    `json:"artifact_id,omitempty" toml:"artifact_id,omitempty"`
	IsError      bool      `json:"is_error,omitempty" toml:"is_error,omitempty"`
}

// NewMessage creates a bare message with a fresh ID and UTC timestamp. Seq is
// left zero until the message is appended to a log.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        NewID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// NewUserMessage creates a user-authored text message.
func NewUserMessage(content string) Message { return NewMessage(RoleUser, content) }

// NewAssistantMessage creates a reply of the default responder.
func NewAssistantMessage(content string) Message { return NewMessage(RoleAssistant, content) }

// NewNoticeMessage creates an assistant message reporting a synchronous
// dispatch error (validation failure, busy tool slot). No job is referenced.
func NewNoticeMessage(err error) Message {
	m := NewMessage(RoleAssistant, err.Error())
	m.IsError = true
	return m
}

// NewToolResultMessage records the successful outcome of a job.
func NewToolResultMessage(jobID, content, artifactID string) Message {
	m := NewMessage(RoleToolResult, content)
	m.RelatedJobID = jobID
	m.ArtifactID = artifactID
	return m
}

// NewJobErrorMessage records a failed or timed out job.
func NewJobErrorMessage(jobID, content string) Message {
	m := NewMessage(RoleToolResult, content)
	m.RelatedJobID = jobID
	m.IsError = true
	return m
}

// NewID generates a new unique identifier for messages, jobs and sessions.
func NewID() string { return uuid.NewString() }
