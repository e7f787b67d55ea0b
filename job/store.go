// Package job implements the job store: one lifecycle record per tool
// invocation plus the per (session, tool) slot that admits at most one
// non-terminal job at a time.
package job

import (
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/logging"
)

// Options configures a Store.
type Options struct {
	Clock  func() time.Time
	Logger logging.Logger
}

type slotKey struct {
	sessionID string
	toolID    core.ToolID
}

// Store holds jobs and tool slots. Jobs are never deleted; terminal jobs are
// retained for history. All returned jobs are deep copies.
//
// The store serialises its own state, but composite operations (transition
// then append then release) are linearised by the caller's per-session lock.
type Store struct {
	mu       sync.RWMutex
	jobs     map[string]*core.Job
	sessions map[string][]string // sessionID -> job ids in creation order
	slots    map[slotKey]string  // held by a non-terminal or not yet released job
	opts     Options
}

// NewStore creates an empty job store.
func NewStore(optFns ...func(o *Options)) *Store {
	opts := Options{Clock: time.Now, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Store{
		jobs:     make(map[string]*core.Job),
		sessions: make(map[string][]string),
		slots:    make(map[slotKey]string),
		opts:     opts,
	}
}

// Create claims the (sessionID, toolID) slot for a new queued job. It fails
// with *core.SlotBusyError while the slot is held by another job.
func (s *Store) Create(sessionID string, toolID core.ToolID, in core.ValidatedInput) (core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := slotKey{sessionID, toolID}
	if holder, busy := s.slots[key]; busy {
		return core.Job{}, &core.SlotBusyError{Tool: toolID, JobID: holder}
	}

	j := &core.Job{
		ID:        core.NewID(),
		ToolID:    toolID,
		SessionID: sessionID,
		Status:    core.StatusQueued,
		Input:     in.Clone(),
		CreatedAt: s.opts.Clock().UTC(),
	}
	s.jobs[j.ID] = j
	s.sessions[sessionID] = append(s.sessions[sessionID], j.ID)
	s.slots[key] = j.ID

	s.opts.Logger.Debug("job.created", "job_id", j.ID, "tool", toolID, "session_id", sessionID)
	return j.Clone(), nil
}

// Transition moves a job to status to. Entering StatusRunning stamps
// StartedAt; entering a terminal status stamps CompletedAt and records result
// and cause. Transitions not allowed by the state machine, including every
// change of a terminal job, fail with core.ErrInvalidTransition and leave the
// job untouched.
func (s *Store) Transition(jobID string, to core.JobStatus, result *core.Artifact, cause error) (core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return core.Job{}, fmt.Errorf("%w: %s", core.ErrJobNotFound, jobID)
	}
	if !j.Status.CanTransitionTo(to) {
		return j.Clone(), fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, j.Status, to)
	}

	now := s.opts.Clock().UTC()
	from := j.Status
	j.Status = to
	switch {
	case to == core.StatusRunning:
		j.StartedAt = &now
	case to.IsTerminal():
		j.CompletedAt = &now
		j.Result = result.Clone()
		j.Err = cause
	}

	s.opts.Logger.Debug("job.transition", "job_id", jobID, "from", from, "to", to)
	return j.Clone(), nil
}

// Release frees the slot held by a terminal job. It reports whether the slot
// was freed by this call; releasing twice is a no-op. Releasing a
// non-terminal job fails with core.ErrInvalidTransition.
func (s *Store) Release(jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return false, fmt.Errorf("%w: %s", core.ErrJobNotFound, jobID)
	}
	if !j.Status.IsTerminal() {
		return false, fmt.Errorf("%w: release of %s job", core.ErrInvalidTransition, j.Status)
	}
	key := slotKey{j.SessionID, j.ToolID}
	if s.slots[key] != jobID {
		return false, nil
	}
	delete(s.slots, key)
	return true, nil
}

// Get returns a copy of the job.
func (s *Store) Get(jobID string) (core.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return core.Job{}, fmt.Errorf("%w: %s", core.ErrJobNotFound, jobID)
	}
	return j.Clone(), nil
}

// List returns copies of the session's jobs in creation order.
func (s *Store) List(sessionID string) []core.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.sessions[sessionID]
	out := make([]core.Job, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.jobs[id].Clone())
	}
	return out
}

// Active returns the job holding the (sessionID, toolID) slot.
func (s *Store) Active(sessionID string, toolID core.ToolID) (core.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.slots[slotKey{sessionID, toolID}]
	if !ok {
		return core.Job{}, false
	}
	return s.jobs[id].Clone(), true
}

// Pending returns copies of the session's non-terminal jobs.
func (s *Store) Pending(sessionID string) []core.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Job
	for _, id := range s.sessions[sessionID] {
		if j := s.jobs[id]; !j.Status.IsTerminal() {
			out = append(out, j.Clone())
		}
	}
	return out
}
