package job

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/toolmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func input(tool core.ToolID) core.ValidatedInput {
	return core.ValidatedInput{Tool: tool, Prompt: "p", Language: "python"}
}

func TestStore_CreateStartsQueued(t *testing.T) {
	s := NewStore()
	j, err := s.Create("s1", core.ToolCode, input(core.ToolCode))
	require.NoError(t, err)
	assert.Equal(t, core.StatusQueued, j.Status)
	assert.NotEmpty(t, j.ID)
	assert.Nil(t, j.StartedAt)

	active, ok := s.Active("s1", core.ToolCode)
	require.True(t, ok)
	assert.Equal(t, j.ID, active.ID)
}

func TestStore_SlotBusy(t *testing.T) {
	s := NewStore()
	first, err := s.Create("s1", core.ToolConvert, input(core.ToolConvert))
	require.NoError(t, err)

	_, err = s.Create("s1", core.ToolConvert, input(core.ToolConvert))
	require.ErrorIs(t, err, core.ErrSlotBusy)
	var busy *core.SlotBusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, first.ID, busy.JobID)

	// other tools and other sessions are independent slots
	_, err = s.Create("s1", core.ToolOCR, input(core.ToolOCR))
	require.NoError(t, err)
	_, err = s.Create("s2", core.ToolConvert, input(core.ToolConvert))
	require.NoError(t, err)

	got, err := s.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusQueued, got.Status)
}

func TestStore_ConcurrentCreateExactlyOneWins(t *testing.T) {
	for round := 0; round < 20; round++ {
		s := NewStore()
		var (
			wins, busy atomic.Int32
			g          errgroup.Group
		)
		for i := 0; i < 16; i++ {
			g.Go(func() error {
				_, err := s.Create("s1", core.ToolOCR, input(core.ToolOCR))
				switch {
				case err == nil:
					wins.Add(1)
				case errors.Is(err, core.ErrSlotBusy):
					busy.Add(1)
				default:
					return err
				}
				return nil
			})
		}
		require.NoError(t, g.Wait())
		assert.Equal(t, int32(1), wins.Load())
		assert.Equal(t, int32(15), busy.Load())
	}
}

func TestStore_LifecycleAndRelease(t *testing.T) {
	now := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	s := NewStore(func(o *Options) { o.Clock = func() time.Time { return now } })

	j, err := s.Create("s1", core.ToolCode, input(core.ToolCode))
	require.NoError(t, err)

	_, err = s.Release(j.ID)
	require.ErrorIs(t, err, core.ErrInvalidTransition, "non-terminal jobs keep their slot")

	running, err := s.Transition(j.ID, core.StatusRunning, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, running.StartedAt)

	done, err := s.Transition(j.ID, core.StatusSucceeded, &core.Artifact{Name: "main.py", Text: "print(1)"}, nil)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, "print(1)", done.Result.Text)

	freed, err := s.Release(j.ID)
	require.NoError(t, err)
	assert.True(t, freed)
	freed, err = s.Release(j.ID)
	require.NoError(t, err)
	assert.False(t, freed, "slot is freed exactly once")

	_, ok := s.Active("s1", core.ToolCode)
	assert.False(t, ok)

	next, err := s.Create("s1", core.ToolCode, input(core.ToolCode))
	require.NoError(t, err)
	assert.NotEqual(t, j.ID, next.ID)
}

func TestStore_TerminalIsFinal(t *testing.T) {
	s := NewStore()
	j, err := s.Create("s1", core.ToolOCR, input(core.ToolOCR))
	require.NoError(t, err)
	_, err = s.Transition(j.ID, core.StatusRunning, nil, nil)
	require.NoError(t, err)
	_, err = s.Transition(j.ID, core.StatusTimedOut, nil, core.ErrTimedOut)
	require.NoError(t, err)

	for _, to := range []core.JobStatus{core.StatusSucceeded, core.StatusFailed, core.StatusCancelled, core.StatusRunning} {
		_, err := s.Transition(j.ID, to, &core.Artifact{Text: "late"}, nil)
		assert.ErrorIs(t, err, core.ErrInvalidTransition)
	}
	got, err := s.Get(j.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusTimedOut, got.Status)
	assert.Nil(t, got.Result)
	assert.ErrorIs(t, got.Err, core.ErrTimedOut)
}

func TestStore_QueuedToCancelledSkipsRunning(t *testing.T) {
	s := NewStore()
	j, err := s.Create("s1", core.ToolConvert, input(core.ToolConvert))
	require.NoError(t, err)
	got, err := s.Transition(j.ID, core.StatusCancelled, nil, core.ErrCancelled)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCancelled, got.Status)
	assert.Nil(t, got.StartedAt)

	_, err = s.Transition(j.ID, core.StatusRunning, nil, nil)
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
}

func TestStore_ListPendingAndCopies(t *testing.T) {
	s := NewStore()
	a, _ := s.Create("s1", core.ToolCode, input(core.ToolCode))
	b, _ := s.Create("s1", core.ToolOCR, input(core.ToolOCR))
	_, _ = s.Create("s2", core.ToolCode, input(core.ToolCode))

	_, err := s.Transition(b.ID, core.StatusCancelled, nil, nil)
	require.NoError(t, err)

	list := s.List("s1")
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Equal(t, b.ID, list[1].ID)

	pending := s.Pending("s1")
	require.Len(t, pending, 1)
	assert.Equal(t, a.ID, pending[0].ID)

	list[0].Input.Prompt = "changed"
	got, _ := s.Get(a.ID)
	assert.Equal(t, "p", got.Input.Prompt)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, core.ErrJobNotFound)
}
