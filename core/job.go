package core

import "time"

// JobStatus enumerates the lifecycle states of a Job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusSucceeded JobStatus = "succeeded"
	StatusFailed    JobStatus = "failed"
	StatusTimedOut  JobStatus = "timed_out"
	StatusCancelled JobStatus = "cancelled"
)

// transitions encodes the job state machine. Terminal states have no entry.
var transitions = map[JobStatus][]JobStatus{
	StatusQueued:  {StatusRunning, StatusCancelled},
	StatusRunning: {StatusSucceeded, StatusFailed, StatusTimedOut, StatusCancelled},
}

// IsTerminal reports whether no further transition is possible from s.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusTimedOut, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s JobStatus) String() string { return string(s) }

// Job is the lifecycle record of one tool invocation. Jobs are created in
// StatusQueued, mutated only by the scheduler and retained after reaching a
// terminal status.
type Job struct {
	ID          string         `json:"id"`
	ToolID      ToolID         `json:"tool_id"`
	SessionID   string         `json:"session_id"`
	Status      JobStatus      `json:"status"`
	Input       ValidatedInput `json:"input"`
	Result      *Artifact      `json:"result,omitempty"`
	Err         error          `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// Clone returns a deep copy of the job safe for independent mutation.
func (j Job) Clone() Job {
	j.Input = j.Input.Clone()
	j.Result = j.Result.Clone()
	if j.StartedAt != nil {
		t := *j.StartedAt
		j.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		j.CompletedAt = &t
	}
	return j
}

// Duration returns the running time of a started job. For jobs still running
// it is measured against now.
func (j Job) Duration(now time.Time) time.Duration {
	if j.StartedAt == nil {
		return 0
	}
	if j.CompletedAt != nil {
		return j.CompletedAt.Sub(*j.StartedAt)
	}
	return now.Sub(*j.StartedAt)
}
