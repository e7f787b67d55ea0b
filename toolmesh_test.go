package toolmesh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/toolmesh/core"
	"github.com/hupe1980/toolmesh/internal/testutil"
)

func newMesh(t *testing.T, optFns ...func(o *Options)) *ToolMesh {
	t.Helper()
	m := New(optFns...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, m.Close(ctx))
	})
	return m
}

func TestRun(t *testing.T) {
	m := newMesh(t)
	id, err := m.StartSession()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	j, err := m.Run(ctx, id, testutil.CodeInput("javascript", "greet the user"))
	require.NoError(t, err)
	assert.Equal(t, core.StatusSucceeded, j.Status)
	assert.Equal(t, "code.js", j.Result.Name)

	_, err = m.Run(ctx, id, core.Input{Text: "just chatting"})
	assert.ErrorIs(t, err, ErrNoJob)
}

func TestAwait_ContextDone(t *testing.T) {
	gate := testutil.NewGate()
	m := newMesh(t, func(o *Options) { o.Extractor = gate.Extractor("x") })
	id, err := m.StartSession()
	require.NoError(t, err)

	out, err := m.engine.Handle(context.Background(), id, testutil.OCRInput("a.png"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	j, err := m.Await(ctx, out.Job.ID)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, j.Status.IsTerminal())

	gate.Release()
	j, err = m.Await(context.Background(), out.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusSucceeded, j.Status)

	m.mu.Lock()
	assert.Empty(t, m.watchers)
	m.mu.Unlock()
}

func TestSendFileAndOnMessage(t *testing.T) {
	rec := &testutil.Recorder{}
	m := newMesh(t, func(o *Options) { o.EngineConfig.Greeting = "" })
	m.OnMessage(rec.Record)

	id, err := m.StartSession()
	require.NoError(t, err)

	out, err := m.SendFile(context.Background(), id, "convert this to json", core.File{Name: "table.csv", Data: []byte("x\n1\n")})
	require.NoError(t, err)
	require.NotNil(t, out.Job)

	j, err := m.Await(context.Background(), out.Job.ID)
	require.NoError(t, err)
	require.Equal(t, core.StatusSucceeded, j.Status)

	msgs := rec.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, core.RoleToolResult, msgs[1].Role)
	assert.Equal(t, j.ID, msgs[1].ArtifactID)

	conv, err := m.EndSession(id)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.MessageCount)
}
