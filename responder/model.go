package responder

import (
	"context"
	"fmt"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/model"
)

// DefaultInstructions is the system prompt of a ModelResponder.
const DefaultInstructions = "You are a helpful assistant inside a chat that also offers file " +
	"conversion (/convert), text extraction from images (/ocr) and code generation (/code). " +
	"Answer concisely."

// ModelOptions configure a ModelResponder.
type ModelOptions struct {
	Instructions string
	// HistoryLimit caps the number of trailing messages sent to the model.
	HistoryLimit int
}

// ModelResponder answers with a language model. Tool results are passed as
// assistant turns; error notices are skipped.
type ModelResponder struct {
	model model.Model
	opts  ModelOptions
}

// NewModelResponder creates a responder backed by m.
func NewModelResponder(m model.Model, optFns ...func(o *ModelOptions)) *ModelResponder {
	opts := ModelOptions{Instructions: DefaultInstructions, HistoryLimit: 20}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ModelResponder{model: m, opts: opts}
}

// Respond implements core.Responder.
func (r *ModelResponder) Respond(ctx context.Context, conv core.ConversationContext) (string, error) {
	msgs := conv.Messages
	if r.opts.HistoryLimit > 0 && len(msgs) > r.opts.HistoryLimit {
		msgs = msgs[len(msgs)-r.opts.HistoryLimit:]
	}
	req := model.Request{Instructions: r.opts.Instructions}
	for _, m := range msgs {
		if m.IsError || m.Content == "" {
			continue
		}
		role := model.RoleAssistant
		if m.Role == core.RoleUser {
			role = model.RoleUser
		}
		req.Messages = append(req.Messages, model.Message{Role: role, Text: m.Content})
	}
	resp, err := r.model.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%s responder: %w", r.model.Info().Provider, err)
	}
	return resp.Text, nil
}
