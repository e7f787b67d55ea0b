package engine

import (
	"fmt"
	"strings"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/logging"
	"github.com/hupe1980/toolmesh/tool"
)

// appendLocked appends msg to the session log and runs the message hooks. A
// failing append closes the session. The caller holds s.mu.
func (e *Engine) appendLocked(s *session, msg core.Message) (uint64, error) {
	seq, err := s.log.Append(msg)
	if err != nil {
		s.closed = true
		e.logger.Error("session.closed", "session_id", s.id, "error", err.Error())
		return 0, fmt.Errorf("append message: %w", err)
	}
	msg.Seq = seq
	e.hooks.run(HookContext{Type: HookMessageAppended, SessionID: s.id, Message: &msg}, e.logger)
	return seq, nil
}

// commitLocked is the result sink. It moves j to a terminal status, appends
// the result message and releases the tool slot, in that order, so that no
// message refers to a non-terminal job and no free slot is visible before its
// result. Cancelled jobs produce no message. The caller holds s.mu; s is nil
// once the session is gone, in which case only the job record is updated.
//
// Exactly one terminal commit per job succeeds; later ones fail with
// core.ErrInvalidTransition and change nothing.
func (e *Engine) commitLocked(s *session, j core.Job, status core.JobStatus, result *core.Artifact, cause error) (core.Job, error) {
	done, err := e.jobs.Transition(j.ID, status, result, cause)
	if err != nil {
		return done, err
	}

	if s != nil && !s.closed {
		if msg, ok := e.resultMessage(done); ok {
			if _, err := e.appendLocked(s, msg); err != nil {
				e.logger.Error("job.result_lost", "job_id", done.ID, "error", err.Error())
			}
		}
	}

	if _, err := e.jobs.Release(done.ID); err != nil {
		e.logger.Error("job.release_failed", "job_id", done.ID, "error", err.Error())
	}

	logging.LogJob(e.logger, done.ID, string(done.ToolID), string(done.Status), done.Duration(e.clock()), cause)
	e.hooks.run(HookContext{Type: HookJobFinished, SessionID: done.SessionID, Job: &done}, e.logger)
	return done, nil
}

// resultMessage renders the message reporting a terminal job. Successful
// results are saved to the artifact store first so the message can reference
// them.
func (e *Engine) resultMessage(j core.Job) (core.Message, bool) {
	switch j.Status {
	case core.StatusSucceeded:
		artifactID := ""
		if j.Result != nil {
			if err := e.artifacts.Save(j.SessionID, j.ID, j.Result.Data); err != nil {
				e.logger.Warn("artifact.save_failed", "job_id", j.ID, "error", err.Error())
			} else {
				artifactID = j.ID
			}
		}
		return core.NewToolResultMessage(j.ID, formatResult(j), artifactID), true
	case core.StatusFailed:
		return core.NewJobErrorMessage(j.ID, fmt.Sprintf("The %s job failed: %v", j.ToolID, j.Err)), true
	case core.StatusTimedOut:
		return core.NewJobErrorMessage(j.ID, fmt.Sprintf("The %s job timed out after %s.", j.ToolID, e.config.Timeout(j.ToolID))), true
	default:
		return core.Message{}, false
	}
}

func formatResult(j core.Job) string {
	a := j.Result
	if a == nil {
		return fmt.Sprintf("The %s job finished without output.", j.ToolID)
	}
	switch j.ToolID {
	case core.ToolCode:
		return fmt.Sprintf("Here is your %s code (%s):\n\n```%s\n%s```", j.Input.Language, a.Name, j.Input.Language, a.Text)
	case core.ToolConvert:
		return fmt.Sprintf("Converted %s to %s (%d bytes).", j.Input.File.Name, a.Name, len(a.Data))
	case core.ToolOCR:
		return fmt.Sprintf("Extracted text from %s (confidence %.1f%%):\n\n%s", j.Input.File.Name, a.Confidence*100, a.Text)
	default:
		return a.Name
	}
}

// artifactName names the artifact produced for in.
func artifactName(in core.ValidatedInput) string {
	switch in.Tool {
	case core.ToolCode:
		return "code." + tool.LanguageExtension(in.Language)
	default:
		base := in.File.Name
		if i := strings.LastIndexByte(base, '.'); i > 0 {
			base = base[:i]
		}
		if base == "" {
			base = "converted"
		}
		return base + "." + in.TargetFormat
	}
}
