package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to JobStatus
		allowed  bool
	}{
		{StatusQueued, StatusRunning, true},
		{StatusQueued, StatusCancelled, true},
		{StatusQueued, StatusSucceeded, false},
		{StatusQueued, StatusTimedOut, false},
		{StatusRunning, StatusSucceeded, true},
		{StatusRunning, StatusFailed, true},
		{StatusRunning, StatusTimedOut, true},
		{StatusRunning, StatusCancelled, true},
		{StatusRunning, StatusQueued, false},
		{StatusSucceeded, StatusFailed, false},
		{StatusCancelled, StatusRunning, false},
		{StatusTimedOut, StatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestJobStatus_TerminalStatesAreFinal(t *testing.T) {
	all := []JobStatus{StatusQueued, StatusRunning, StatusSucceeded, StatusFailed, StatusTimedOut, StatusCancelled}
	for _, s := range all {
		if !s.IsTerminal() {
			continue
		}
		for _, next := range all {
			assert.Falsef(t, s.CanTransitionTo(next), "%s must not transition to %s", s, next)
		}
	}
	assert.False(t, StatusQueued.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
}

func TestJob_CloneIsolation(t *testing.T) {
	started := time.Now()
	j := Job{
		ID:        "j1",
		Input:     ValidatedInput{File: File{Name: "a.png", Data: []byte("img")}},
		Result:    &Artifact{Name: "out", Data: []byte("xyz")},
		StartedAt: &started,
	}
	c := j.Clone()
	c.Input.File.Data[0] = 'X'
	c.Result.Data[0] = 'Q'
	*c.StartedAt = started.Add(time.Hour)

	assert.Equal(t, "img", string(j.Input.File.Data))
	assert.Equal(t, "xyz", string(j.Result.Data))
	assert.Equal(t, started, *j.StartedAt)
}

func TestJob_Duration(t *testing.T) {
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)
	j := Job{}
	assert.Zero(t, j.Duration(end))
	j.StartedAt = &start
	assert.Equal(t, 5*time.Second, j.Duration(start.Add(5*time.Second)))
	j.CompletedAt = &end
	assert.Equal(t, 3*time.Second, j.Duration(start.Add(time.Minute)))
}
