package model

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Role of a chat turn handed to a provider.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one plain text chat turn.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Request is a provider neutral completion request.
type Request struct {
	Instructions string    `json:"instructions"` // system prompt
	Messages     []Message `json:"messages"`
}

// TokenUsage reports provider token accounting when available.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the final text of a completion.
type Response struct {
	ID           string      `json:"id"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"`
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info describes a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Model generates a completion for a request. Implementations must honour
// ctx cancellation; the scheduler relies on it to stop timed out jobs.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Info() Info
}

// ErrNoMessages is returned for requests without any message.
var ErrNoMessages = errors.New("no messages provided")

// LastUserText returns the text of the last user message of req.
func LastUserText(req Request) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == RoleUser {
			return req.Messages[i].Text
		}
	}
	return ""
}

// MockModel is a canned model for tests. Responses are looked up by the last
// user message; unknown prompts get an echo reply.
type MockModel struct {
	info Info

	mu        sync.Mutex
	responses map[string]string
	requests  []Request
	err       error
}

// NewMockModel creates a mock with the given identity.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// AddResponse registers the reply for prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// FailWith makes every following Generate call return err.
func (m *MockModel) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Requests returns the requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return Response{}, m.err
	}
	if len(req.Messages) == 0 {
		return Response{}, ErrNoMessages
	}
	prompt := LastUserText(req)
	text, ok := m.responses[prompt]
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", prompt)
	}
	return Response{Text: text, FinishReason: "stop"}, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
