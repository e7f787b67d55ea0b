package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/toolmesh/core"
)

// run is the scheduler's handle on one admitted job.
type run struct {
	cancel          context.CancelFunc
	cancelRequested atomic.Bool
}

type result struct {
	artifact *core.Artifact
	err      error
}

// scheduler runs each job on its own goroutine. Admission is bounded by a
// weighted semaphore; jobs waiting for a permit stay Queued. Deadlines are
// enforced by a scheduler timer, independent of whether the backend honours
// its context.
type scheduler struct {
	e   *Engine
	sem *semaphore.Weighted // nil means unlimited

	base context.Context
	stop context.CancelFunc

	mu     sync.Mutex
	runs   map[string]*run
	closed bool
	active int
	idle   chan struct{} // closed while active == 0
}

func newScheduler(e *Engine, maxConcurrent int) *scheduler {
	base, stop := context.WithCancel(context.Background())
	s := &scheduler{
		e:    e,
		base: base,
		stop: stop,
		runs: make(map[string]*run),
		idle: make(chan struct{}),
	}
	close(s.idle)
	if maxConcurrent > 0 {
		s.sem = semaphore.NewWeighted(int64(maxConcurrent))
	}
	return s
}

func (s *scheduler) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// track and untrack count live scheduler goroutines. The caller of track
// holds s.mu.
func (s *scheduler) track() {
	if s.active == 0 {
		s.idle = make(chan struct{})
	}
	s.active++
}

func (s *scheduler) untrack() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active--
	if s.active == 0 {
		close(s.idle)
	}
}

func (s *scheduler) waitIdle(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// submit starts the goroutine driving j. The caller holds the session lock,
// so the job cannot be cancelled before its run is registered.
func (s *scheduler) submit(j core.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrEngineClosed
	}

	ctx, cancel := context.WithCancel(s.base)
	r := &run{cancel: cancel}
	s.runs[j.ID] = r
	s.track()

	go func() {
		defer s.untrack()
		defer s.forget(j.ID)
		defer cancel()
		s.execute(ctx, r, j)
	}()
	return nil
}

func (s *scheduler) forget(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, jobID)
}

// signal marks a job as cancelled by the user and cancels its context. It
// reports whether the job had a live run.
func (s *scheduler) signal(jobID string) bool {
	s.mu.Lock()
	r, ok := s.runs[jobID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	r.cancelRequested.Store(true)
	r.cancel()
	return true
}

func (s *scheduler) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, r := range s.runs {
		r.cancelRequested.Store(true)
		r.cancel()
	}
	s.stop()
}

func (s *scheduler) execute(ctx context.Context, r *run, j core.Job) {
	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.e.finish(j, core.StatusCancelled, nil, core.ErrCancelled)
			return
		}
		defer s.sem.Release(1)
	}

	j, ok := s.e.start(j)
	if !ok {
		return
	}

	timeout := s.e.config.Timeout(j.ToolID)
	jobCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results := make(chan result, 1)
	s.mu.Lock()
	s.track()
	s.mu.Unlock()
	go func() {
		defer s.untrack()
		defer func() {
			if p := recover(); p != nil {
				results <- result{err: fmt.Errorf("backend panic: %v", p)}
			}
		}()
		a, err := s.e.invoke(jobCtx, j.Input.Clone())
		results <- result{artifact: a, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-results:
		status, cause := classifyResult(j.ToolID, res.err, r.cancelRequested.Load())
		s.e.finish(j, status, res.artifact, cause)
	case <-timer.C:
		cancel()
		if r.cancelRequested.Load() {
			s.e.finish(j, core.StatusCancelled, nil, core.ErrCancelled)
			return
		}
		s.e.finish(j, core.StatusTimedOut, nil, core.ErrTimedOut)
	}
}

// classifyResult maps a backend return to a terminal status. A result that
// arrives after a cancel request still wins; only a context error is taken
// as the backend honouring the cancellation.
func classifyResult(id core.ToolID, err error, cancelRequested bool) (core.JobStatus, error) {
	switch {
	case err == nil:
		return core.StatusSucceeded, nil
	case cancelRequested && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return core.StatusCancelled, core.ErrCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return core.StatusTimedOut, core.ErrTimedOut
	default:
		return core.StatusFailed, core.NewBackendError(id, err)
	}
}

// start moves j to Running under the session lock. It fails when the job was
// cancelled while it waited for a permit.
func (e *Engine) start(j core.Job) (core.Job, bool) {
	s := e.lookup(j.SessionID)
	if s != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	running, err := e.jobs.Transition(j.ID, core.StatusRunning, nil, nil)
	if err != nil {
		return running, false
	}
	e.hooks.run(HookContext{Type: HookJobStarted, SessionID: j.SessionID, Job: &running}, e.logger)
	return running, true
}

// finish commits a terminal status from a scheduler goroutine.
func (e *Engine) finish(j core.Job, status core.JobStatus, a *core.Artifact, cause error) {
	s := e.lookup(j.SessionID)
	if s != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	if _, err := e.commitLocked(s, j, status, a, cause); err != nil {
		e.logger.Debug("job.commit_skipped", "job_id", j.ID, "status", status, "error", err.Error())
	}
}

// invoke calls the backend of in.Tool and builds the job artifact.
func (e *Engine) invoke(ctx context.Context, in core.ValidatedInput) (*core.Artifact, error) {
	name := artifactName(in)
	switch in.Tool {
	case core.ToolCode:
		out, err := e.codegen.Generate(ctx, in.Prompt, in.Language)
		if err != nil {
			return nil, err
		}
		return &core.Artifact{Name: name, Format: in.Language, Text: out.Source, Data: []byte(out.Source)}, nil
	case core.ToolConvert:
		data, err := e.converter.Convert(ctx, in.File.Data, in.SourceFormat, in.TargetFormat)
		if err != nil {
			return nil, err
		}
		return &core.Artifact{Name: name, Format: in.TargetFormat, Data: data}, nil
	case core.ToolOCR:
		out, err := e.extractor.Extract(ctx, in.File.Data)
		if err != nil {
			return nil, err
		}
		return &core.Artifact{Name: name, Format: "txt", Text: out.Text, Data: []byte(out.Text), Confidence: out.Confidence}, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownTool, in.Tool)
	}
}

// Cancel cancels a job. A queued job becomes Cancelled immediately and its
// backend is never invoked. A running job is asked to stop; it ends Cancelled
// unless its backend already produced a result. Cancelling a terminal job
// fails with core.ErrInvalidTransition.
func (e *Engine) Cancel(jobID string) error {
	j, err := e.jobs.Get(jobID)
	if err != nil {
		return err
	}
	s := e.lookup(j.SessionID)
	if s != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return e.cancelLocked(s, jobID)
}

// CancelTool cancels the job holding the tool slot of a session.
func (e *Engine) CancelTool(sessionID string, id core.ToolID) (core.Job, error) {
	if !id.Valid() {
		return core.Job{}, fmt.Errorf("%w: %q", core.ErrUnknownTool, id)
	}
	s, err := e.session(sessionID)
	if err != nil {
		return core.Job{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := e.jobs.Active(sessionID, id)
	if !ok {
		return core.Job{}, fmt.Errorf("%w: no active %s job", core.ErrJobNotFound, id)
	}
	if err := e.cancelLocked(s, j.ID); err != nil {
		return j, err
	}
	return e.jobs.Get(j.ID)
}

func (e *Engine) cancelLocked(s *session, jobID string) error {
	j, err := e.jobs.Get(jobID)
	if err != nil {
		return err
	}
	switch j.Status {
	case core.StatusQueued:
		if _, err := e.commitLocked(s, j, core.StatusCancelled, nil, core.ErrCancelled); err != nil {
			return err
		}
		e.sched.signal(jobID)
		return nil
	case core.StatusRunning:
		if !e.sched.signal(jobID) {
			return fmt.Errorf("%w: job %s has no live run", core.ErrInvalidTransition, jobID)
		}
		e.logger.Info("job.cancel_requested", "job_id", jobID, "tool", j.ToolID)
		return nil
	default:
		return fmt.Errorf("%w: job %s already %s", core.ErrInvalidTransition, jobID, j.Status)
	}
}
