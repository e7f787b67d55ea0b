package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/toolmesh/core"
)

// Route is the classification of one input.
type Route string

const (
	// RouteDefault sends the input to the default responder.
	RouteDefault Route = "default"
	// RouteTool validates the input for a tool and starts a job.
	RouteTool Route = "tool"
	// RouteCancel cancels the active job of a tool.
	RouteCancel Route = "cancel"
)

// Outcome reports what Handle did with an input.
type Outcome struct {
	Route Route
	// Tool is the selected tool for RouteTool and RouteCancel.
	Tool core.ToolID
	// UserSeq is the Seq of the appended user message.
	UserSeq uint64
	// ReplySeq is the Seq of the synchronous reply (responder answer or
	// error notice), 0 when none was appended.
	ReplySeq uint64
	// Job is the created (RouteTool) or cancelled (RouteCancel) job.
	Job *core.Job
	// Err is the synchronous failure, also returned by Handle.
	Err error
}

// Handle processes one user input for a session:
//
//  1. the user message is appended unconditionally
//  2. the input is classified: explicit tool selector, slash command,
//     keyword trigger of a tool that has what it needs, or default
//  3. tool input is validated; a validation failure appends an error
//     notice and creates no job
//  4. valid input claims the tool slot and the job is handed to the
//     scheduler; a busy slot appends an error notice and leaves the
//     existing job alone
//  5. default input is answered by the responder, called without holding
//     the session lock
//
// Synchronous failures (*core.ValidationError, *core.SlotBusyError, unknown
// tools) are returned and recorded in Outcome.Err. Job results arrive later
// as messages appended by the scheduler.
func (e *Engine) Handle(ctx context.Context, sessionID string, in core.Input) (Outcome, error) {
	s, err := e.session(sessionID)
	if err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: %s", core.ErrSessionClosed, sessionID)
	}
	if e.sched.isClosed() {
		s.mu.Unlock()
		return Outcome{}, ErrEngineClosed
	}

	userSeq, err := e.appendLocked(s, core.NewUserMessage(describeInput(in)))
	if err != nil {
		s.mu.Unlock()
		return Outcome{Err: err}, err
	}

	route, in := e.classify(in)
	out := Outcome{Route: route, Tool: in.ToolID, UserSeq: userSeq}
	e.logger.Debug("dispatch.route", "session_id", sessionID, "route", route, "tool", in.ToolID)

	switch route {
	case RouteTool:
		out = e.dispatchToolLocked(s, in, out)
		s.mu.Unlock()
		return out, out.Err
	case RouteCancel:
		out = e.dispatchCancelLocked(s, in.ToolID, out)
		s.mu.Unlock()
		return out, out.Err
	}

	conv := core.ConversationContext{SessionID: s.id, Model: s.model, Messages: s.log.Snapshot()}
	s.mu.Unlock()

	return e.respond(ctx, s, conv, out)
}

func (e *Engine) classify(in core.Input) (Route, core.Input) {
	if in.ToolID != "" {
		return RouteTool, in
	}
	if cmd, ok := ParseCommand(in.Text); ok {
		if cmd.Cancel {
			in.ToolID = cmd.Tool
			return RouteCancel, in
		}
		return RouteTool, cmd.apply(in)
	}
	if id, ok := e.registry.Match(in); ok {
		in.ToolID = id
		return RouteTool, in
	}
	return RouteDefault, in
}

func (e *Engine) dispatchToolLocked(s *session, in core.Input, out Outcome) Outcome {
	validated, err := e.registry.Validate(in)
	if err != nil {
		return e.noticeLocked(s, out, err)
	}

	j, err := e.jobs.Create(s.id, in.ToolID, validated)
	if err != nil {
		return e.noticeLocked(s, out, err)
	}
	out.Job = &j

	if err := e.sched.submit(j); err != nil {
		if _, cerr := e.commitLocked(s, j, core.StatusCancelled, nil, core.ErrCancelled); cerr != nil {
			e.logger.Warn("job.cancel_failed", "job_id", j.ID, "error", cerr.Error())
		}
		out.Err = err
		return out
	}
	e.logger.Info("job.created", "session_id", s.id, "job_id", j.ID, "tool", j.ToolID)
	return out
}

func (e *Engine) dispatchCancelLocked(s *session, id core.ToolID, out Outcome) Outcome {
	if !id.Valid() {
		return e.noticeLocked(s, out, fmt.Errorf("%w: %q", core.ErrUnknownTool, id))
	}
	j, ok := e.jobs.Active(s.id, id)
	if !ok {
		return e.noticeLocked(s, out, fmt.Errorf("%w: no active %s job", core.ErrJobNotFound, id))
	}
	if err := e.cancelLocked(s, j.ID); err != nil {
		return e.noticeLocked(s, out, err)
	}
	if cur, err := e.jobs.Get(j.ID); err == nil {
		j = cur
	}
	out.Job = &j
	seq, err := e.appendLocked(s, core.NewAssistantMessage(fmt.Sprintf("Cancelling the %s job.", id)))
	if err != nil {
		out.Err = err
		return out
	}
	out.ReplySeq = seq
	return out
}

// noticeLocked appends err as an assistant error notice.
func (e *Engine) noticeLocked(s *session, out Outcome, err error) Outcome {
	out.Err = err
	seq, aerr := e.appendLocked(s, core.NewNoticeMessage(err))
	if aerr != nil {
		out.Err = errors.Join(err, aerr)
		return out
	}
	out.ReplySeq = seq
	return out
}

func (e *Engine) respond(ctx context.Context, s *session, conv core.ConversationContext, out Outcome) (Outcome, error) {
	reply, rerr := e.responder.Respond(ctx, conv)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		out.Err = fmt.Errorf("%w: %s", core.ErrSessionClosed, s.id)
		return out, out.Err
	}
	if rerr != nil {
		e.logger.Warn("responder.failed", "session_id", s.id, "error", rerr.Error())
		out = e.noticeLocked(s, out, rerr)
		return out, out.Err
	}
	seq, err := e.appendLocked(s, core.NewAssistantMessage(reply))
	if err != nil {
		out.Err = err
		return out, err
	}
	out.ReplySeq = seq
	return out, nil
}

// describeInput renders the user message for an input. Inputs built from a
// tool menu may carry no text.
func describeInput(in core.Input) string {
	if strings.TrimSpace(in.Text) != "" {
		return in.Text
	}
	parts := []string{}
	if in.ToolID != "" {
		parts = append(parts, "["+string(in.ToolID)+"]")
	}
	if in.Language != "" {
		parts = append(parts, in.Language)
	}
	if in.File != nil {
		parts = append(parts, in.File.Name)
	}
	if in.TargetFormat != "" {
		parts = append(parts, "to "+in.TargetFormat)
	}
	return strings.Join(parts, " ")
}
